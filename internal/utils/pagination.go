package utils

import (
	pkgutils "github.com/stagiu-portal/document-management-api/pkg/utils"
)

// PaginationParams holds pagination parameters
type PaginationParams struct {
	Limit  int
	Offset int
}

// NewPaginationParams creates a new pagination params with defaults
func NewPaginationParams(limit, offset int) *PaginationParams {
	return &PaginationParams{
		Limit:  pkgutils.ValidateLimit(limit),
		Offset: pkgutils.ValidateOffset(offset),
	}
}

// PaginationMetadata holds pagination metadata for responses
type PaginationMetadata struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

// CalculatePaginationMetadata calculates pagination metadata
func CalculatePaginationMetadata(total, limit, offset int) *PaginationMetadata {
	return &PaginationMetadata{
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: (offset + limit) < total,
	}
}
