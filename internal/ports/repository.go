package ports

import (
	"context"

	"botFleet/internal/domain"
)

// ListQuery narrows and orders a bot listing. SortField must be one of
// the allow-listed wire fields; the API layer validates it before the
// query reaches an adapter.
type ListQuery struct {
	Offset    int
	Limit     int
	SortField string
	SortDesc  bool
}

// Allow-listed sort fields for bot listings.
const (
	SortByName      = "name"
	SortByKind      = "kind"
	SortByCreatedAt = "created_at"
	SortByUpdatedAt = "updated_at"
)

// ValidSortField reports whether f is in the sort allow-list.
func ValidSortField(f string) bool {
	switch f {
	case SortByName, SortByKind, SortByCreatedAt, SortByUpdatedAt:
		return true
	}
	return false
}

// BotRepository defines the interface for storing and retrieving bot
// entities. Implementations must serialize updates per id: Update only
// succeeds when expectedVersion matches the stored version, otherwise it
// fails with ErrConflict.
type BotRepository interface {
	// Create persists a new entity. Fails with ErrDuplicateEntry when the
	// id already exists.
	Create(ctx context.Context, ent *domain.BotEntity) error
	// FindByID retrieves an entity by id, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*domain.BotEntity, error)
	// FindAll retrieves a page of entities plus the total count across
	// all pages.
	FindAll(ctx context.Context, query ListQuery) ([]*domain.BotEntity, int, error)
	// Update replaces the stored entity if expectedVersion matches,
	// bumping the stored version by one.
	Update(ctx context.Context, ent *domain.BotEntity, expectedVersion int64) error
	// Delete physically removes the entity. Archival is a status change,
	// not a delete; this is the separate explicit operation.
	Delete(ctx context.Context, id string) error
}

// TradeEventRepository defines the append-only store for trade events.
// Events reference bots by id but are retained independently of the
// configuration's lifecycle.
type TradeEventRepository interface {
	// Append stores a new immutable event.
	Append(ctx context.Context, event *domain.TradeEvent) error
	// FindByBot retrieves events for a bot ordered by timestamp
	// ascending, skipping offset events and returning up to limit
	// (0 means no limit).
	FindByBot(ctx context.Context, botID string, offset, limit int) ([]*domain.TradeEvent, error)
	// CountByBot reports the total number of events recorded for a bot.
	CountByBot(ctx context.Context, botID string) (int, error)
}
