package request

import "github.com/nekogravitycat/hotel-booking-backend/internal/pkg/pagination"

// ByIDRequest is a common struct for endpoints that require an ID path parameter.
type ByIDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// ListParams holds the common pagination query parameters.
// The page bound matches pagination.MaxPage.
type ListParams struct {
	Page  int `form:"page" binding:"omitempty,min=1,max=100000"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// Pagination converts the query parameters into normalized pagination params.
func (p ListParams) Pagination() pagination.Params {
	return pagination.Params{Page: p.Page, Limit: p.Limit}.Normalize()
}
