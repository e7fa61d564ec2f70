package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/fivetwenty-io/pagedrest/internal/constants"
	"github.com/fivetwenty-io/pagedrest/pkg/pagedrest"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

const defaultJSONIndent = "  "

// renderStructured writes value as JSON or YAML, or calls table for the
// table format.
func renderStructured(w io.Writer, format string, value interface{}, table func(io.Writer) error) error {
	switch format {
	case constants.FormatJSON, "":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", defaultJSONIndent)

		return encoder.Encode(value)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(w)
		defer func() { _ = encoder.Close() }()

		return encoder.Encode(value)
	case constants.FormatTable:
		return table(w)
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownOutput, format)
	}
}

// renderResponse writes an API response in the requested format.
func renderResponse(w io.Writer, format string, resp pagedrest.Response) error {
	return renderStructured(w, format, resp, func(w io.Writer) error {
		return renderResponseTable(w, resp)
	})
}

// renderResponseTable prints scalar fields as key/value rows followed by one
// table per array of objects.
func renderResponseTable(w io.Writer, resp pagedrest.Response) error {
	keys := make([]string, 0, len(resp))
	for key := range resp {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	summary := tablewriter.NewWriter(w)
	summary.Header("Field", "Value")

	var lists []string

	for _, key := range keys {
		if rows, ok := objectRows(resp[key]); ok && len(rows) > 0 {
			lists = append(lists, key)
			_ = summary.Append(key, fmt.Sprintf("%d items", len(rows)))

			continue
		}

		_ = summary.Append(key, formatCell(resp[key]))
	}

	if err := summary.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	for _, key := range lists {
		rows, _ := objectRows(resp[key])

		if _, err := fmt.Fprintf(w, "\n%s:\n", key); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}

		if err := renderObjectTable(w, rows); err != nil {
			return err
		}
	}

	return nil
}

func renderObjectTable(w io.Writer, rows []map[string]interface{}) error {
	columnSet := make(map[string]struct{})

	for _, row := range rows {
		for column := range row {
			columnSet[column] = struct{}{}
		}
	}

	columns := make([]string, 0, len(columnSet))
	for column := range columnSet {
		columns = append(columns, column)
	}

	sort.Strings(columns)

	header := make([]any, len(columns))
	for i, column := range columns {
		header[i] = column
	}

	table := tablewriter.NewWriter(w)
	table.Header(header...)

	for _, row := range rows {
		cells := make([]string, len(columns))

		for i, column := range columns {
			value, ok := row[column]
			if !ok {
				cells[i] = constants.NotAvailable

				continue
			}

			cells[i] = formatCell(value)
		}

		_ = table.Append(cells)
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// objectRows reports whether value is an array whose elements are all
// objects.
func objectRows(value interface{}) ([]map[string]interface{}, bool) {
	items, ok := value.([]interface{})
	if !ok {
		return nil, false
	}

	rows := make([]map[string]interface{}, 0, len(items))

	for _, item := range items {
		row, ok := item.(map[string]interface{})
		if !ok {
			return nil, false
		}

		rows = append(rows, row)
	}

	return rows, true
}

func formatCell(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return constants.NotAvailable
	case string:
		return v
	case map[string]interface{}, []interface{}:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}

		return string(encoded)
	default:
		return fmt.Sprint(v)
	}
}
