// Package pagedrest provides types, interfaces, and cache backends for
// working with a paginated REST API.
//
// # Overview
//
// The pagedrest package defines the Client and Dispatcher interfaces, the
// decoded Response type, configuration, errors, and the response cache. A
// concrete client is provided by the pagedclient package, which wires
// configuration, transport, and caching together.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/pagedrest/pkg/pagedclient"
//	  "github.com/fivetwenty-io/pagedrest/pkg/pagedrest"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := pagedclient.New(&pagedrest.Config{User: "me", Password: "secret"})
//	  if err != nil { log.Fatal(err) }
//	  defer cli.Close(ctx)
//
//	  // Fetch every page of /items, merged into one response
//	  items, err := cli.Get(ctx, "/items", nil)
//	  if err != nil { log.Fatal(err) }
//	  _ = items
//	}
//
// # Pagination
//
// Get follows the "nextPage" locator of each page and concatenates fields
// that are arrays on both pages. Fields that are not arrays keep the value
// from the first page. If a later page cannot be fetched, the pages fetched
// so far are returned without an error. GetPage fetches exactly one page.
//
// # Caching
//
// GET responses are cached for one hour under their full request path. PUT,
// POST, and DELETE invalidate the entry for the path they target whether or
// not the request succeeded. Backends are selected with CacheConfig:
//
//	cfg := &pagedrest.Config{
//	  User:     "me",
//	  Password: "secret",
//	  Cache: pagedrest.NewCacheBuilder().
//	    WithType(pagedrest.CacheTypeRedis).
//	    WithRedisConfig(&pagedrest.RedisCacheConfig{Addr: "localhost:6379"}).
//	    Config(),
//	}
//
// # Errors
//
// Non-2xx responses are returned as *HTTPError. Helpers such as IsNotFound,
// IsUnauthorized, and IsForbidden make it easy to branch on common cases.
// Configuration problems match ErrInvalidConfig.
package pagedrest
