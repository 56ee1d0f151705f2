// Package api defines the wire-level request and response envelopes and
// the HTTP router that serves them. Field names, kind discriminants and
// status values are part of the external contract; renaming any of them
// is a versioned migration, not a refactor.
package api

import (
	"net/url"
	"strconv"

	"botFleet/internal/constraint"
	"botFleet/internal/domain"
	"botFleet/internal/ports"
	"botFleet/internal/schema"
)

// Stable error codes surfaced to API consumers. Internal error text never
// leaks through these.
const (
	CodeValidationFailed  = "validation_failed"
	CodeNotFound          = "not_found"
	CodeConflict          = "conflict"
	CodeInvalidTransition = "invalid_transition"
	CodeAlreadyExists     = "already_exists"
	CodeBadRequest        = "bad_request"
	CodeInternal          = "internal_error"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ErrorBody is the structured error shape: a stable code, a
// human-readable message and the field-level violation list where one
// applies.
type ErrorBody struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Violations []constraint.Violation `json:"violations,omitempty"`
}

// Response is the envelope wrapping every payload: exactly one of Data
// or Error is set.
type Response struct {
	Data  any        `json:"data,omitempty"`
	Error *ErrorBody `json:"error,omitempty"`
}

// ListMeta accompanies every list response, even an empty page.
type ListMeta struct {
	TotalCount int     `json:"totalCount"`
	NextCursor *string `json:"nextCursor"`
}

// BotPage is one page of bot entities.
type BotPage struct {
	Items []*domain.BotEntity `json:"items"`
	Meta  ListMeta            `json:"meta"`
}

// TradePage is one page of a bot's trade history.
type TradePage struct {
	Items []*domain.TradeEvent `json:"items"`
	Meta  ListMeta             `json:"meta"`
}

// UpdateBotRequest carries a partial configuration patch plus the version
// the caller last read. A stale version is rejected with CodeConflict.
type UpdateBotRequest struct {
	Version int64          `json:"version"`
	Patch   map[string]any `json:"patch"`
}

// StatusRequest asks for a lifecycle transition.
type StatusRequest struct {
	Status string `json:"status"`
}

// ParseListQuery validates pagination and sorting parameters. The limit
// is capped at 100 items per page and the sort field must come from the
// allow-list; everything else is a violation, reported all at once.
func ParseListQuery(values url.Values) (ports.ListQuery, *schema.ValidationError) {
	verr := &schema.ValidationError{}
	query := ports.ListQuery{Limit: defaultPageLimit, SortField: ports.SortByCreatedAt}

	if cursor := values.Get("cursor"); cursor != "" {
		offset, err := strconv.Atoi(cursor)
		if err != nil || offset < 0 {
			verr.Violations = append(verr.Violations, *constraint.NewViolation(
				"cursor", constraint.RulePattern, cursor, "must be a non-negative integer cursor"))
		} else {
			query.Offset = offset
		}
	}

	if limitStr := values.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		switch {
		case err != nil:
			verr.Violations = append(verr.Violations, *constraint.NewViolation(
				"limit", constraint.RulePattern, limitStr, "must be an integer"))
		case limit < 1 || limit > maxPageLimit:
			verr.Violations = append(verr.Violations, *constraint.NewViolation(
				"limit", constraint.RuleRange, limitStr,
				"must be between 1 and "+strconv.Itoa(maxPageLimit)))
		default:
			query.Limit = limit
		}
	}

	if sortField := values.Get("sort"); sortField != "" {
		if !ports.ValidSortField(sortField) {
			verr.Violations = append(verr.Violations, *constraint.NewViolation(
				"sort", constraint.RulePattern, sortField,
				"must be one of name, kind, created_at, updated_at"))
		} else {
			query.SortField = sortField
		}
	}

	switch order := values.Get("order"); order {
	case "", "asc":
	case "desc":
		query.SortDesc = true
	default:
		verr.Violations = append(verr.Violations, *constraint.NewViolation(
			"order", constraint.RulePattern, order, "must be asc or desc"))
	}

	if len(verr.Violations) > 0 {
		return ports.ListQuery{}, verr
	}
	return query, nil
}

// pageMeta builds list metadata; NextCursor is nil on the final page.
func pageMeta(offset, pageLen, total int) ListMeta {
	meta := ListMeta{TotalCount: total}
	if next := offset + pageLen; next < total {
		cursor := strconv.Itoa(next)
		meta.NextCursor = &cursor
	}
	return meta
}
