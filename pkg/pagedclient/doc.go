// Package pagedclient provides the primary entry point for constructing a
// client that implements the pagedrest.Client interface.
//
// It layers configuration validation, base URL selection, HTTP transport and
// the response cache on top of the interfaces and types defined in the
// pagedrest package.
//
// Quick start
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
//
//	  // Sandbox API with basic-auth credentials.
//	  cli, err := pagedclient.NewWithPassword("me", "secret")
//	  if err != nil { log.Fatal(err) }
//	  defer cli.Close(ctx)
//
//	  // Production API, shared Redis cache.
//	  cli, err = pagedclient.New(&pagedrest.Config{
//	    User:       "me",
//	    Password:   "secret",
//	    Production: true,
//	    Cache: &pagedrest.CacheConfig{
//	      Type:  pagedrest.CacheTypeRedis,
//	      Redis: &pagedrest.RedisCacheConfig{Addr: "localhost:6379"},
//	    },
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  everything, err := cli.Get(ctx, "/items", nil)
//	  if err != nil { log.Fatal(err) }
//	  _ = everything
//	}
//
// Missing credentials or an unparsable URL fail with an error matching
// pagedrest.ErrInvalidConfig.
package pagedclient
