// Package entity builds and evolves the durable form of a bot
// configuration: creation stamps, full re-validation on updates and the
// lifecycle status rules.
package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"botFleet/internal/constraint"
	"botFleet/internal/domain"
	"botFleet/internal/schema"
)

// FromConfig wraps a validated configuration into a fresh entity: status
// Active, version 1, both audit timestamps set to now. A missing id is
// assigned here, once, and never reassigned afterwards.
func FromConfig(cfg domain.BotConfig, now time.Time) *domain.BotEntity {
	cfg = domain.CloneConfig(cfg)
	base := cfg.Base()
	if base.ID == "" {
		base.ID = uuid.NewString()
	}
	now = now.UTC()
	base.CreatedAt = now
	base.UpdatedAt = now

	return &domain.BotEntity{
		Config:    cfg,
		Status:    domain.StatusActive,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// immutable fields may never be changed through a patch.
var immutableFields = map[string]bool{
	"id":        true,
	"kind":      true,
	"createdAt": true,
	"updatedAt": true,
}

// ApplyUpdate merges a partial patch into the entity's configuration and
// re-validates the merged result as a whole: a patch that looks fine in
// isolation but produces an invalid full record is rejected. On success
// the returned entity carries the new configuration with updatedAt bumped
// to now; the input entity is never mutated. The optimistic version check
// against concurrent writers happens at the repository, not here.
func ApplyUpdate(ent *domain.BotEntity, patch map[string]any, now time.Time) (*domain.BotEntity, error) {
	verr := &schema.ValidationError{}
	for field := range patch {
		if immutableFields[field] {
			verr.Violations = append(verr.Violations, *constraint.NewViolation(
				field, constraint.RuleImmutable, patch[field], "field cannot be changed after creation"))
		}
	}
	if len(verr.Violations) > 0 {
		return nil, verr
	}

	merged, err := configToMap(ent.Config)
	if err != nil {
		return nil, err
	}
	for field, value := range patch {
		merged[field] = value
	}

	cfg, validationErr := schema.ValidateBotConfig(merged)
	if validationErr != nil {
		return nil, validationErr
	}

	now = now.UTC()
	cfg.Base().UpdatedAt = now

	return &domain.BotEntity{
		Config:    cfg,
		Status:    ent.Status,
		Version:   ent.Version,
		CreatedAt: ent.CreatedAt,
		UpdatedAt: now,
	}, nil
}

// ChangeStatus applies a lifecycle transition, enforcing that Archived is
// terminal. The returned entity is a copy with updatedAt bumped.
func ChangeStatus(ent *domain.BotEntity, target domain.BotStatus, now time.Time) (*domain.BotEntity, error) {
	if err := ent.Status.Transition(target); err != nil {
		return nil, err
	}
	return &domain.BotEntity{
		Config:    domain.CloneConfig(ent.Config),
		Status:    target,
		Version:   ent.Version,
		CreatedAt: ent.CreatedAt,
		UpdatedAt: now.UTC(),
	}, nil
}

// configToMap round-trips a typed configuration through JSON into a
// generic document. Numbers stay as json.Number (and decimals as strings)
// so merging and re-validation cannot lose precision to binary floats.
func configToMap(cfg domain.BotConfig) (map[string]any, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode bot config: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode bot config document: %w", err)
	}
	return m, nil
}
