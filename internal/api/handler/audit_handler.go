package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/secureid/identity-api/internal/core/domain"
	"github.com/secureid/identity-api/internal/core/ports"
)

const (
	defaultAuditPage     = 1
	defaultAuditPageSize = 10
	maxAuditPageSize     = 100
)

// AuditHandler exposes the admin query surface over the audit trail.
type AuditHandler struct {
	auditService ports.AuditService
}

func NewAuditHandler(auditService ports.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

type auditPagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

type auditLogsResponse struct {
	Logs       []*domain.AuditEntry `json:"logs"`
	Pagination auditPagination      `json:"pagination"`
}

// Query returns audit entries matching the provided filters, newest first.
//
// @Summary      Query audit logs
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        user       query  string  false  "Filter by actor"
// @Param        action     query  string  false  "Filter by action tag"
// @Param        startDate  query  string  false  "RFC 3339 range start"
// @Param        endDate    query  string  false  "RFC 3339 range end"
// @Param        page       query  int     false  "Page number (1-based)"
// @Param        limit      query  int     false  "Entries per page"
// @Success      200  {object}  auditLogsResponse
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /audit [get]
func (h *AuditHandler) Query(c echo.Context) error {
	filter := ports.AuditFilter{
		Actor:  c.QueryParam("user"),
		Action: c.QueryParam("action"),
	}

	if raw := c.QueryParam("startDate"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "startDate must be RFC 3339")
		}
		filter.From = from
	}
	if raw := c.QueryParam("endDate"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "endDate must be RFC 3339")
		}
		filter.To = to
	}

	page := queryInt(c, "page", defaultAuditPage)
	limit := queryInt(c, "limit", defaultAuditPageSize)
	if limit > maxAuditPageSize {
		limit = maxAuditPageSize
	}

	result, err := h.auditService.Query(c.Request().Context(), filter, page, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, auditLogsResponse{
		Logs: result.Entries,
		Pagination: auditPagination{
			Total:      result.Total,
			Page:       result.Page,
			Limit:      result.PageSize,
			TotalPages: result.TotalPages,
		},
	})
}

func queryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
