// Package paginate slices result sequences into fixed-size pages.
package paginate

import (
	"fmt"

	pkgerrors "github.com/Adithya-Monish-Kumar-K/Text-Search-Server/pkg/errors"
)

// Pages splits items into consecutive pages of pageSize elements; the last
// page may be shorter. The returned pages are subslices of items, not
// copies. An empty input yields no pages.
func Pages[T any](items []T, pageSize int) ([][]T, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("page size %d must be positive: %w", pageSize, pkgerrors.ErrInvalidArgument)
	}
	if len(items) == 0 {
		return nil, nil
	}
	pages := make([][]T, 0, (len(items)+pageSize-1)/pageSize)
	for start := 0; start < len(items); start += pageSize {
		end := start + pageSize
		if end > len(items) {
			end = len(items)
		}
		pages = append(pages, items[start:end])
	}
	return pages, nil
}

// Page returns the zero-based page at index, or an empty slice when the
// index is past the end.
func Page[T any](items []T, pageSize, index int) ([]T, error) {
	pages, err := Pages(items, pageSize)
	if err != nil {
		return nil, err
	}
	if index < 0 {
		return nil, fmt.Errorf("page index %d must be non-negative: %w", index, pkgerrors.ErrInvalidArgument)
	}
	if index >= len(pages) {
		return []T{}, nil
	}
	return pages[index], nil
}
