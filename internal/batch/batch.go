// Package batch fans a list of queries out over the search server in
// parallel, preserving input order in the results.
package batch

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/Text-Search-Server/internal/search"
)

// ProcessQueries runs every query concurrently (bounded by GOMAXPROCS)
// and returns one result slice per query, in input order. The first
// failing query aborts the batch.
func ProcessQueries(ctx context.Context, srv *search.Server, queries []string) ([][]search.Document, error) {
	results := make([][]search.Document, len(queries))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, rawQuery := range queries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			docs, err := srv.FindTop(rawQuery)
			if err != nil {
				return fmt.Errorf("query %q: %w", rawQuery, err)
			}
			results[i] = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ProcessQueriesJoined flattens ProcessQueries into a single list, query
// order preserved.
func ProcessQueriesJoined(ctx context.Context, srv *search.Server, queries []string) ([]search.Document, error) {
	perQuery, err := ProcessQueries(ctx, srv, queries)
	if err != nil {
		return nil, err
	}
	var joined []search.Document
	for _, docs := range perQuery {
		joined = append(joined, docs...)
	}
	return joined, nil
}
