package ports

import (
	"context"
	"time"

	"github.com/secureid/identity-api/internal/core/domain"
)

// AuditFilter narrows an audit query. Zero-valued fields are ignored; set
// fields combine with AND semantics.
type AuditFilter struct {
	Actor  string
	Action string
	From   time.Time
	To     time.Time
}

// AuditRepository persists and queries the append-only audit trail.
type AuditRepository interface {
	Insert(ctx context.Context, entry *domain.AuditEntry) error
	// Query returns one page of entries sorted by timestamp descending plus
	// the total number of matches. page is 1-based.
	Query(ctx context.Context, filter AuditFilter, page, pageSize int) ([]*domain.AuditEntry, int64, error)
}

// AuditRecorder is the write side consumed by services and middleware.
// Record is best-effort and must never block or fail the action it audits.
type AuditRecorder interface {
	Record(actor, action, detail, originAddress string)
}
