package service

import (
	"context"

	"github.com/secureid/identity-api/internal/core/ports"
)

// AuditService pairs the best-effort write path (a non-blocking recorder
// backed by the dispatcher) with the admin query surface.
type AuditService struct {
	repo     ports.AuditRepository
	recorder ports.AuditRecorder
}

func NewAuditService(repo ports.AuditRepository, recorder ports.AuditRecorder) *AuditService {
	return &AuditService{repo: repo, recorder: recorder}
}

// Record hands the entry to the recorder and returns immediately. Sink
// failures never reach callers.
func (s *AuditService) Record(actor, action, detail, originAddress string) {
	s.recorder.Record(actor, action, detail, originAddress)
}

// Query returns one page of matching entries, newest first. page and pageSize
// are clamped to at least 1; an out-of-range page yields an empty slice with
// the correct totals, not an error.
func (s *AuditService) Query(ctx context.Context, filter ports.AuditFilter, page, pageSize int) (*ports.AuditPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}

	entries, total, err := s.repo.Query(ctx, filter, page, pageSize)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &ports.AuditPage{
		Entries:    entries,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}
