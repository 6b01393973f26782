package projection

import (
	"sort"
	"time"
)

// Metadata captures persistence timestamps shared by projections.
type Metadata struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Projection represents an aggregate view plus persistence metadata.
type Projection[T any] struct {
	Entity   T
	Metadata Metadata
}

// New wraps entity with the given timestamps.
func New[T any](entity T, createdAt, updatedAt time.Time) *Projection[T] {
	return &Projection[T]{Entity: entity, Metadata: Metadata{CreatedAt: createdAt, UpdatedAt: updatedAt}}
}

// SortNewestFirst orders items by creation time, most recent first. Ties keep
// their relative order.
func SortNewestFirst[T any](items []T, metadata func(T) Metadata) {
	sort.SliceStable(items, func(i, j int) bool {
		return metadata(items[i]).CreatedAt.After(metadata(items[j]).CreatedAt)
	})
}
