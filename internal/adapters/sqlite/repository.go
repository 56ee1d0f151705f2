package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"botFleet/internal/domain"
	"botFleet/internal/ports"
)

// Repository implements ports.BotRepository and ports.TradeEventRepository
// using SQLite. Bot configurations are stored as their JSON wire form next
// to the lifecycle columns; monetary values inside events are stored as
// decimal strings, never as REAL.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/botfleet.db" // Default path
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000") // WAL mode for better concurrency
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// SQLite handles concurrency internally, but the Go driver benefits
	// from limiting connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	repo := &Repository{db: db, logger: cfg.Logger}
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "SQLite database ready", map[string]interface{}{"path": dbPath})

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS bots (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		name TEXT NOT NULL,
		enabled INTEGER NOT NULL DEFAULT 0,
		config TEXT NOT NULL,
		status TEXT NOT NULL,
		version INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS trade_events (
		id TEXT PRIMARY KEY,
		bot_id TEXT NOT NULL,
		timestamp TIMESTAMP NOT NULL,
		side TEXT NOT NULL,
		amount TEXT NOT NULL,
		price_at_execution TEXT NOT NULL,
		profit_loss TEXT NOT NULL,
		tx_reference TEXT NOT NULL
	);
	-- No foreign key on bot_id: events are retained after their bot is
	-- archived or deleted.
	CREATE INDEX IF NOT EXISTS idx_bots_status ON bots (status);
	CREATE INDEX IF NOT EXISTS idx_trade_events_bot_ts ON trade_events (bot_id, timestamp);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// --- BotRepository implementation ---

// Create persists a new bot entity.
func (r *Repository) Create(ctx context.Context, ent *domain.BotEntity) error {
	configJSON, err := json.Marshal(ent.Config)
	if err != nil {
		return fmt.Errorf("failed to encode config for bot %s: %w", ent.ID(), err)
	}

	const query = `
	INSERT INTO bots (id, kind, name, enabled, config, status, version, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	base := ent.Config.Base()
	_, err = r.db.ExecContext(ctx, query,
		base.ID, string(base.Kind), base.Name, boolToInt(base.Enabled), string(configJSON),
		string(ent.Status), ent.Version, ent.CreatedAt, ent.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("bot %s already exists: %w", base.ID, ports.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to insert bot %s: %w", base.ID, err)
	}
	r.logger.Debug(ctx, "Bot created", map[string]interface{}{"botID": base.ID, "kind": base.Kind})
	return nil
}

// FindByID retrieves a bot entity by its id.
func (r *Repository) FindByID(ctx context.Context, id string) (*domain.BotEntity, error) {
	const query = `
	SELECT config, status, version, created_at, updated_at
	FROM bots WHERE id = ?`

	ent, err := scanBot(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("bot %s: %w", id, ports.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query bot %s: %w", id, err)
	}
	return ent, nil
}

// sortColumns maps allow-listed sort fields onto real columns. The allow
// list is enforced upstream; anything else falls back to created_at.
var sortColumns = map[string]string{
	ports.SortByName:      "name",
	ports.SortByKind:      "kind",
	ports.SortByCreatedAt: "created_at",
	ports.SortByUpdatedAt: "updated_at",
}

// FindAll retrieves a page of bots plus the total count.
func (r *Repository) FindAll(ctx context.Context, query ports.ListQuery) ([]*domain.BotEntity, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bots`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count bots: %w", err)
	}

	column, ok := sortColumns[query.SortField]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if query.SortDesc {
		direction = "DESC"
	}
	limit := query.Limit
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	stmt := fmt.Sprintf(`
	SELECT config, status, version, created_at, updated_at
	FROM bots ORDER BY %s %s, id ASC LIMIT ? OFFSET ?`, column, direction)

	rows, err := r.db.QueryContext(ctx, stmt, limit, query.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query bots: %w", err)
	}
	defer rows.Close()

	entities := make([]*domain.BotEntity, 0)
	for rows.Next() {
		ent, err := scanBot(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan bot during FindAll: %w", err)
		}
		entities = append(entities, ent)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating bot rows: %w", err)
	}
	return entities, total, nil
}

// Update replaces the stored entity when expectedVersion still matches,
// bumping the version by one. A mismatch means a concurrent writer got
// there first and the caller receives ErrConflict instead of a silent
// last-writer-wins overwrite.
func (r *Repository) Update(ctx context.Context, ent *domain.BotEntity, expectedVersion int64) error {
	configJSON, err := json.Marshal(ent.Config)
	if err != nil {
		return fmt.Errorf("failed to encode config for bot %s: %w", ent.ID(), err)
	}

	const query = `
	UPDATE bots
	SET kind = ?, name = ?, enabled = ?, config = ?, status = ?, version = version + 1, updated_at = ?
	WHERE id = ? AND version = ?`

	base := ent.Config.Base()
	result, err := r.db.ExecContext(ctx, query,
		string(base.Kind), base.Name, boolToInt(base.Enabled), string(configJSON),
		string(ent.Status), ent.UpdatedAt, base.ID, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to update bot %s: %w", base.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for bot %s: %w", base.ID, err)
	}
	if rowsAffected == 0 {
		// Either the bot is gone or the version is stale; distinguish so
		// the caller gets the right error.
		var exists int
		if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bots WHERE id = ?`, base.ID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check bot %s after stale update: %w", base.ID, err)
		}
		if exists == 0 {
			return fmt.Errorf("bot %s not found for update: %w", base.ID, ports.ErrNotFound)
		}
		return fmt.Errorf("bot %s version %d is stale: %w", base.ID, expectedVersion, ports.ErrConflict)
	}
	r.logger.Debug(ctx, "Bot updated", map[string]interface{}{"botID": base.ID, "version": expectedVersion + 1})
	return nil
}

// Delete physically removes a bot. Its trade events are retained.
func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM bots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bot %s: %v: %w", id, err, ports.ErrDeleteFailed)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for delete of bot %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("bot %s not found for delete: %w", id, ports.ErrNotFound)
	}
	r.logger.Debug(ctx, "Bot deleted", map[string]interface{}{"botID": id})
	return nil
}

// --- TradeEventRepository implementation ---

// Append stores a new immutable trade event.
func (r *Repository) Append(ctx context.Context, event *domain.TradeEvent) error {
	const query = `
	INSERT INTO trade_events (id, bot_id, timestamp, side, amount, price_at_execution, profit_loss, tx_reference)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.BotID, event.Timestamp, string(event.Side),
		event.Amount.String(), event.PriceAtExecution.String(), event.ProfitLoss.String(),
		event.TxReference)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("trade event %s already exists: %w", event.ID, ports.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to insert trade event for bot %s: %w", event.BotID, err)
	}
	r.logger.Debug(ctx, "Trade event appended", map[string]interface{}{"eventID": event.ID, "botID": event.BotID})
	return nil
}

// FindByBot retrieves a bot's trade events ordered by timestamp ascending.
func (r *Repository) FindByBot(ctx context.Context, botID string, offset, limit int) ([]*domain.TradeEvent, error) {
	if limit <= 0 {
		limit = -1
	}
	const query = `
	SELECT id, bot_id, timestamp, side, amount, price_at_execution, profit_loss, tx_reference
	FROM trade_events
	WHERE bot_id = ? ORDER BY timestamp ASC, id ASC LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, botID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query trade events for bot %s: %w", botID, err)
	}
	defer rows.Close()

	events := make([]*domain.TradeEvent, 0)
	for rows.Next() {
		event, err := scanTradeEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade event during FindByBot: %w", err)
		}
		events = append(events, event)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade event rows: %w", err)
	}
	return events, nil
}

// CountByBot reports the total number of events recorded for a bot.
func (r *Repository) CountByBot(ctx context.Context, botID string) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trade_events WHERE bot_id = ?`, botID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count trade events for bot %s: %w", botID, err)
	}
	return total, nil
}

// --- scanning helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBot(row rowScanner) (*domain.BotEntity, error) {
	var (
		configJSON string
		status     string
		version    int64
		createdAt  time.Time
		updatedAt  time.Time
	)
	if err := row.Scan(&configJSON, &status, &version, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	cfg, err := domain.UnmarshalBotConfig([]byte(configJSON))
	if err != nil {
		return nil, fmt.Errorf("stored config is corrupt: %w", err)
	}
	return &domain.BotEntity{
		Config:    cfg,
		Status:    domain.BotStatus(status),
		Version:   version,
		CreatedAt: createdAt.UTC(),
		UpdatedAt: updatedAt.UTC(),
	}, nil
}

func scanTradeEvent(row rowScanner) (*domain.TradeEvent, error) {
	var (
		event     domain.TradeEvent
		side      string
		amount    string
		price     string
		pnl       string
		timestamp time.Time
	)
	if err := row.Scan(&event.ID, &event.BotID, &timestamp, &side, &amount, &price, &pnl, &event.TxReference); err != nil {
		return nil, err
	}
	event.Timestamp = timestamp.UTC()
	event.Side = domain.TradeSide(side)

	var err error
	if event.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("stored amount is corrupt: %w", err)
	}
	if event.PriceAtExecution, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("stored price is corrupt: %w", err)
	}
	if event.ProfitLoss, err = decimal.NewFromString(pnl); err != nil {
		return nil, fmt.Errorf("stored profit/loss is corrupt: %w", err)
	}
	return &event, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
