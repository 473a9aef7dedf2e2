package model

import "strconv"

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// PaginationParams holds the per-request listing window
type PaginationParams struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// PaginationInfo is the pagination block returned alongside listed items
type PaginationInfo struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// PaginatedUsers is the listing response shape
type PaginatedUsers struct {
	Items      []UserResponse `json:"items"`
	Pagination PaginationInfo `json:"pagination"`
}

// NewPaginationParams parses raw query values into bounded pagination
// parameters. Invalid or out-of-range values fall back to the defaults;
// limit is capped at MaxLimit.
func NewPaginationParams(limitStr, offsetStr string) PaginationParams {
	p := PaginationParams{Limit: DefaultLimit, Offset: 0}

	if limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit >= 1 {
			if limit > MaxLimit {
				limit = MaxLimit
			}
			p.Limit = limit
		}
	}
	if offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			p.Offset = offset
		}
	}
	return p
}
