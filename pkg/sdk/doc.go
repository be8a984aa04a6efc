// Package crudex embeds the crudex record store in a Go program without
// running the HTTP service.
//
// Records are schemaless JSON objects grouped into collections. Listing
// takes the same filter and sort expressions the service accepts:
//
//	client, _ := crudex.New(ctx, crudex.WithFilesystem("./data"))
//	defer client.Close()
//
//	users := client.Records("users")
//	_, _ = users.Create(ctx, map[string]any{"name": "ada", "age": 36})
//	page, _ := users.List(ctx, crudex.ListOptions{
//	    Filter:   "age >= 30 AND name ~ a",
//	    Sort:     "age DESC; name",
//	    PageSize: 20,
//	})
//
// Without a storage option the client keeps records in memory.
package crudex
