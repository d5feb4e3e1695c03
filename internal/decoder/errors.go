package decoder

import (
	"fmt"

	"titledb/internal/services"
)

var (
	// ErrIntegrityMismatch means a descriptor describes a different title or
	// version than the one requested.
	ErrIntegrityMismatch = fmt.Errorf("descriptor integrity mismatch: %w", services.ErrIntegrity)
	// ErrTruncated means a blob ended before a declared field.
	ErrTruncated = fmt.Errorf("blob truncated: %w", services.ErrMalformed)
	// ErrMalformedVersionList means the version list header or entry table is
	// not well formed.
	ErrMalformedVersionList = fmt.Errorf("malformed version list: %w", services.ErrCorrupt)
)
