// Copyright 2026 The Ledgerline Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"iter"
)

// PageFunc fetches one page of a collection. Implementations close
// over the client, auth context, and per-page size.
type PageFunc[T any] func(ctx context.Context, pageNumber int) ([]T, PageMeta, error)

// Drain yields every record of a paginated collection, requesting
// page after page until the envelope's total_pages is satisfied.
//
// There is no server-side aggregation endpoint, so whole-collection
// consumers (settled volume, user stats) intentionally pay one
// request per page. Do not replace this with a single oversized page
// request — the page size cap is the backend's, not ours.
//
// The sequence is lazy and restartable: each range-over starts again
// from page one. A fetch error is yielded as the final element's err;
// context cancellation between pages stops the walk with ctx.Err().
func Drain[T any](ctx context.Context, fetch PageFunc[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		for pageNumber := 1; ; pageNumber++ {
			if err := ctx.Err(); err != nil {
				yield(zero, err)
				return
			}

			data, meta, err := fetch(ctx, pageNumber)
			if err != nil {
				yield(zero, err)
				return
			}

			for _, record := range data {
				if !yield(record, nil) {
					return
				}
			}

			// total_pages of zero means the backend sent no meta; a
			// single page is all there is. An empty page is a second
			// stop condition so a miscounting server cannot loop us.
			if meta.TotalPages <= pageNumber || len(data) == 0 {
				return
			}
		}
	}
}

// DrainAll collects a drained sequence into a slice, stopping at the
// first error.
func DrainAll[T any](ctx context.Context, fetch PageFunc[T]) ([]T, error) {
	var records []T
	for record, err := range Drain(ctx, fetch) {
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
