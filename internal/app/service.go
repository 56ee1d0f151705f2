package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"botFleet/internal/analytics"
	"botFleet/internal/domain"
	"botFleet/internal/entity"
	"botFleet/internal/ports"
	"botFleet/internal/schema"
)

// BotService orchestrates the validated data flows: untrusted input is
// run through the schema validators, wrapped into entities and handed to
// the repositories. All state lives behind the ports; the service itself
// is safe for concurrent use.
type BotService struct {
	logger ports.Logger
	bots   ports.BotRepository
	trades ports.TradeEventRepository
	now    func() time.Time
}

// NewBotService creates a new application service instance.
func NewBotService(logger ports.Logger, bots ports.BotRepository, trades ports.TradeEventRepository) (*BotService, error) {
	// Validate dependencies
	if logger == nil || bots == nil || trades == nil {
		return nil, fmt.Errorf("missing required dependencies for BotService")
	}
	return &BotService{
		logger: logger,
		bots:   bots,
		trades: trades,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// WithNow injects a deterministic clock for tests.
func (s *BotService) WithNow(now func() time.Time) *BotService {
	s.now = now
	return s
}

// CreateBot validates an untrusted configuration document and persists it
// as a fresh Active entity. The complete violation list is returned as a
// *schema.ValidationError when the document is malformed.
func (s *BotService) CreateBot(ctx context.Context, raw map[string]any) (*domain.BotEntity, error) {
	cfg, verr := schema.ValidateBotConfig(raw)
	if verr != nil {
		s.logger.Debug(ctx, "Bot config rejected", map[string]interface{}{"violations": len(verr.Violations)})
		return nil, verr
	}

	ent := entity.FromConfig(cfg, s.now())
	if err := s.bots.Create(ctx, ent); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "Bot created", map[string]interface{}{
		"botID": ent.ID(), "kind": ent.Config.Base().Kind, "name": ent.Config.Base().Name,
	})
	return ent, nil
}

// GetBot retrieves a bot entity by id.
func (s *BotService) GetBot(ctx context.Context, id string) (*domain.BotEntity, error) {
	return s.bots.FindByID(ctx, id)
}

// ListBots retrieves a page of bots plus the total count.
func (s *BotService) ListBots(ctx context.Context, query ports.ListQuery) ([]*domain.BotEntity, int, error) {
	return s.bots.FindAll(ctx, query)
}

// UpdateBot merges a partial patch into the stored configuration,
// re-validates the whole and writes it back under optimistic versioning.
// A stale expectedVersion surfaces as ports.ErrConflict.
func (s *BotService) UpdateBot(ctx context.Context, id string, expectedVersion int64, patch map[string]any) (*domain.BotEntity, error) {
	current, err := s.bots.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := entity.ApplyUpdate(current, patch, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.bots.Update(ctx, updated, expectedVersion); err != nil {
		return nil, err
	}
	updated.Version = expectedVersion + 1
	s.logger.Info(ctx, "Bot updated", map[string]interface{}{"botID": id, "version": updated.Version})
	return updated, nil
}

// ChangeStatus applies a lifecycle transition (Archived is terminal).
func (s *BotService) ChangeStatus(ctx context.Context, id string, target domain.BotStatus) (*domain.BotEntity, error) {
	current, err := s.bots.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changed, err := entity.ChangeStatus(current, target, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.bots.Update(ctx, changed, current.Version); err != nil {
		return nil, err
	}
	changed.Version = current.Version + 1
	s.logger.Info(ctx, "Bot status changed", map[string]interface{}{
		"botID": id, "from": current.Status, "to": target,
	})
	return changed, nil
}

// DeleteBot physically removes a bot configuration. The trade-event
// history is deliberately retained: events reference the bot, they do not
// belong to it.
func (s *BotService) DeleteBot(ctx context.Context, id string) error {
	if err := s.bots.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "Bot deleted", map[string]interface{}{"botID": id})
	return nil
}

// RecordTrade validates an untrusted trade record, checks its botId
// resolves to a known bot and appends it to the event history. The botId
// resolution is the integration-boundary check the pure validator leaves
// to its caller.
func (s *BotService) RecordTrade(ctx context.Context, raw map[string]any) (*domain.TradeEvent, error) {
	event, verr := schema.ValidateTradeEvent(raw, s.now())
	if verr != nil {
		return nil, verr
	}

	if _, err := s.bots.FindByID(ctx, event.BotID); err != nil {
		return nil, err
	}

	if err := s.trades.Append(ctx, event); err != nil {
		return nil, err
	}
	s.logger.Debug(ctx, "Trade recorded", map[string]interface{}{"eventID": event.ID, "botID": event.BotID})
	return event, nil
}

// ListTrades retrieves a page of a bot's trade history plus the total
// event count across all pages.
func (s *BotService) ListTrades(ctx context.Context, botID string, offset, limit int) ([]*domain.TradeEvent, int, error) {
	events, err := s.trades.FindByBot(ctx, botID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.trades.CountByBot(ctx, botID)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// GetMetrics recomputes performance metrics from the full event history.
// Metrics of archived (or even deleted) bots remain computable for as
// long as their events are retained.
func (s *BotService) GetMetrics(ctx context.Context, botID string) (domain.PerformanceMetrics, error) {
	events, err := s.trades.FindByBot(ctx, botID, 0, 0)
	if err != nil {
		return domain.PerformanceMetrics{}, err
	}
	return analytics.ComputeMetrics(events), nil
}

// Seed creates bots from pre-loaded configuration documents (e.g. a YAML
// seed file), skipping ids that already exist. Every document is
// validated before the first create runs; a single bad document fails
// the whole seed with nothing persisted, so a typo cannot half-provision
// a fleet.
func (s *BotService) Seed(ctx context.Context, docs []map[string]any) (int, error) {
	for i, doc := range docs {
		if _, verr := schema.ValidateBotConfig(doc); verr != nil {
			return 0, fmt.Errorf("seed document %d invalid: %w", i, verr)
		}
	}

	created := 0
	for i, doc := range docs {
		_, err := s.CreateBot(ctx, doc)
		if err != nil {
			if errors.Is(err, ports.ErrDuplicateEntry) {
				s.logger.Debug(ctx, "Seed document already provisioned", map[string]interface{}{"index": i})
				continue
			}
			return created, err
		}
		created++
	}
	return created, nil
}
