package client

import (
	"context"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/pagedrest/internal/constants"
	"github.com/fivetwenty-io/pagedrest/pkg/pagedrest"
)

// Get implements pagedrest.Dispatcher.Get.
//
// Each page is fetched through GetPage with the original query. Array fields
// present on both a page and the merged remainder are concatenated; every
// other field keeps the first page's value, "nextPage" included.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (pagedrest.Response, error) {
	return c.getAll(ctx, path, query, make(map[string]struct{}))
}

func (c *Client) getAll(ctx context.Context, path string, query url.Values, visited map[string]struct{}) (pagedrest.Response, error) {
	visited[path] = struct{}{}

	page, err := c.GetPage(ctx, path, query)
	if err != nil {
		return nil, err
	}

	nextPath, ok := nextPagePath(page)
	if !ok {
		return page, nil
	}

	if _, seen := visited[nextPath]; seen {
		c.logger.Warn("pagination cycle detected", map[string]interface{}{
			"path": path,
			"next": nextPath,
		})

		return page, nil
	}

	rest, err := c.getAll(ctx, nextPath, query, visited)
	if err != nil {
		c.logger.Warn("fetching next page failed, returning partial result", map[string]interface{}{
			"path":  path,
			"next":  nextPath,
			"error": err.Error(),
		})

		return page, nil
	}

	return mergePages(page, rest), nil
}

// nextPagePath returns the resource path of the page's continuation locator:
// whatever follows the first occurrence of the API prefix.
func nextPagePath(page pagedrest.Response) (string, bool) {
	locator, ok := page[constants.NextPageField].(string)
	if !ok {
		return "", false
	}

	_, nextPath, found := strings.Cut(locator, constants.APIPrefix)

	return nextPath, found
}

// mergePages returns a shallow copy of first with every array field that is
// also an array in next extended by next's elements. Neither input is
// modified.
func mergePages(first, next pagedrest.Response) pagedrest.Response {
	merged := make(pagedrest.Response, len(first))

	for key, value := range first {
		merged[key] = value

		head, ok := value.([]interface{})
		if !ok {
			continue
		}

		tail, ok := next[key].([]interface{})
		if !ok {
			continue
		}

		combined := make([]interface{}, 0, len(head)+len(tail))
		combined = append(combined, head...)
		combined = append(combined, tail...)
		merged[key] = combined
	}

	return merged
}
