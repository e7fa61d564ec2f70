package commands

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/fivetwenty-io/pagedrest/internal/constants"
	"github.com/fivetwenty-io/pagedrest/pkg/pagedrest"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewGetCommand creates the get command.
func NewGetCommand() *cobra.Command {
	var (
		queryFlags []string
		singlePage bool
	)

	cmd := &cobra.Command{
		Use:   "get PATH",
		Short: "Fetch a resource",
		Long:  "Fetch PATH and follow nextPage locators, merging list fields from every page",
		Example: `  pagedrest get /items
  pagedrest get /items --query status=open --query limit=50
  pagedrest get /items --single-page -o table`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := parseQuery(queryFlags)
			if err != nil {
				return err
			}

			return runRequest(cmd, func(client pagedrest.Client) (pagedrest.Response, error) {
				if singlePage {
					return client.GetPage(cmd.Context(), args[0], query)
				}

				return client.Get(cmd.Context(), args[0], query)
			})
		},
	}

	cmd.Flags().StringArrayVarP(&queryFlags, "query", "q", nil, "query parameter as key=value (repeatable)")
	cmd.Flags().BoolVar(&singlePage, "single-page", false, "fetch only the first page")

	return cmd
}

// NewPutCommand creates the put command.
func NewPutCommand() *cobra.Command {
	return newBodyCommand("put", "Replace a resource", func(client pagedrest.Client, cmd *cobra.Command, path string, body interface{}) (pagedrest.Response, error) {
		return client.Put(cmd.Context(), path, body)
	})
}

// NewPostCommand creates the post command.
func NewPostCommand() *cobra.Command {
	return newBodyCommand("post", "Create a resource", func(client pagedrest.Client, cmd *cobra.Command, path string, body interface{}) (pagedrest.Response, error) {
		return client.Post(cmd.Context(), path, body)
	})
}

type bodyFunc func(client pagedrest.Client, cmd *cobra.Command, path string, body interface{}) (pagedrest.Response, error)

func newBodyCommand(use, short string, send bodyFunc) *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   use + " PATH",
		Short: short,
		Long:  short + " with a JSON body given inline or as @file",
		Example: fmt.Sprintf(`  pagedrest %s /items/42 --data '{"name":"renamed"}'
  pagedrest %s /items/42 --data @item.json`, use, use),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := parseBody(data)
			if err != nil {
				return err
			}

			return runRequest(cmd, func(client pagedrest.Client) (pagedrest.Response, error) {
				return send(client, cmd, args[0], body)
			})
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON request body, or @file to read it from a file")

	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand() *cobra.Command {
	var queryFlags []string

	cmd := &cobra.Command{
		Use:   "delete PATH",
		Short: "Delete a resource",
		Long:  "Delete PATH, optionally qualified by query parameters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := parseQuery(queryFlags)
			if err != nil {
				return err
			}

			return runRequest(cmd, func(client pagedrest.Client) (pagedrest.Response, error) {
				return client.Delete(cmd.Context(), args[0], query)
			})
		},
	}

	cmd.Flags().StringArrayVarP(&queryFlags, "query", "q", nil, "query parameter as key=value (repeatable)")

	return cmd
}

func runRequest(cmd *cobra.Command, call func(pagedrest.Client) (pagedrest.Response, error)) error {
	client, err := createClient(cmd)
	if err != nil {
		return err
	}

	defer func() { _ = client.Close(cmd.Context()) }()

	resp, err := call(client)
	if err != nil {
		return err
	}

	return renderResponse(cmd.OutOrStdout(), viper.GetString("output"), resp)
}

// parseQuery turns repeated key=value flags into query values. No flags
// yields nil.
func parseQuery(pairs []string) (url.Values, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	query := url.Values{}

	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidQueryParam, pair)
		}

		query.Add(key, value)
	}

	return query, nil
}

// parseBody decodes inline JSON or the JSON file named by @path. An empty
// argument means no body.
func parseBody(data string) (interface{}, error) {
	if data == "" {
		return nil, nil
	}

	raw := []byte(data)

	if path, ok := strings.CutPrefix(data, "@"); ok {
		content, err := os.ReadFile(path) // #nosec G304 -- user-supplied body file
		if err != nil {
			return nil, fmt.Errorf("failed to read body file: %w", err)
		}

		raw = content
	}

	var body interface{}

	err := json.Unmarshal(raw, &body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", constants.ErrInvalidBody, err)
	}

	return body, nil
}
