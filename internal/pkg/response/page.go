package response

import "github.com/nekogravitycat/hotel-booking-backend/internal/pkg/pagination"

// PageResponse is the standard wrapper for list endpoints.
type PageResponse[T any] struct {
	Items      []T             `json:"items"`
	Pagination pagination.Info `json:"pagination"`
}

// NewPageResponse is a helper to quickly create a response
func NewPageResponse[T any](items []T, info pagination.Info) PageResponse[T] {
	// Handle empty slice to avoid JSON outputting null
	if items == nil {
		items = make([]T, 0)
	}

	return PageResponse[T]{
		Items:      items,
		Pagination: info,
	}
}
