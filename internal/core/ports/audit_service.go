package ports

import (
	"context"

	"github.com/secureid/identity-api/internal/core/domain"
)

// AuditPage is one page of audit query results.
type AuditPage struct {
	Entries    []*domain.AuditEntry
	Total      int64
	Page       int
	PageSize   int
	TotalPages int
}

// AuditService is the admin query surface over the audit trail.
type AuditService interface {
	AuditRecorder
	Query(ctx context.Context, filter AuditFilter, page, pageSize int) (*AuditPage, error)
}
