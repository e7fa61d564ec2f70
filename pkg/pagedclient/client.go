package pagedclient

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/pagedrest/internal/client"
	"github.com/fivetwenty-io/pagedrest/internal/constants"
	"github.com/fivetwenty-io/pagedrest/pkg/pagedrest"
)

// New creates a new API client. The configuration is validated before any
// network or cache connection is made.
func New(config *pagedrest.Config) (pagedrest.Client, error) {
	if config == nil {
		return nil, pagedrest.ErrConfigRequired
	}

	if config.User == "" {
		return nil, pagedrest.ErrUserRequired
	}

	if config.Password == "" {
		return nil, pagedrest.ErrPasswordRequired
	}

	baseURL, err := ResolveBaseURL(config)
	if err != nil {
		return nil, err
	}

	// Use the internal client implementation
	c, err := client.New(config, baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// ResolveBaseURL returns the base URL a client built from config talks to:
// the URL override when set, otherwise the production or sandbox API.
func ResolveBaseURL(config *pagedrest.Config) (string, error) {
	if config.URL == "" {
		if config.Production {
			return constants.ProductionURL, nil
		}

		return constants.SandboxURL, nil
	}

	// Normalize the override
	endpoint := strings.TrimSuffix(strings.TrimSpace(config.URL), "/")
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("%w: %w", pagedrest.ErrInvalidURL, err)
	}

	if parsed.Host == "" {
		return "", fmt.Errorf("%w: %q has no host", pagedrest.ErrInvalidURL, config.URL)
	}

	return endpoint, nil
}

// NewWithPassword creates a sandbox client with basic-auth credentials.
func NewWithPassword(user, password string) (pagedrest.Client, error) {
	return New(&pagedrest.Config{
		User:     user,
		Password: password,
	})
}

// NewWithEndpoint creates a client for a custom base URL.
func NewWithEndpoint(endpoint, user, password string) (pagedrest.Client, error) {
	return New(&pagedrest.Config{
		URL:      endpoint,
		User:     user,
		Password: password,
	})
}
