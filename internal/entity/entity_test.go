package entity

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botFleet/internal/constraint"
	"botFleet/internal/domain"
	"botFleet/internal/schema"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func validMEVConfig(t *testing.T) domain.BotConfig {
	t.Helper()
	cfg, verr := schema.ValidateBotConfig(map[string]any{
		"kind":                     "MEV",
		"name":                     "s1",
		"maxPositionSize":          "10.5",
		"slippageTolerancePercent": "2",
		"targetGasPremium":         "1.2",
		"sandwichWindowMs":         500,
	})
	require.Nil(t, verr)
	return cfg
}

func TestFromConfig(t *testing.T) {
	cfg := validMEVConfig(t)

	ent := FromConfig(cfg, testNow)

	assert.Equal(t, domain.StatusActive, ent.Status)
	assert.Equal(t, int64(1), ent.Version)
	assert.Equal(t, testNow, ent.CreatedAt)
	assert.Equal(t, testNow, ent.UpdatedAt)
	assert.NotEmpty(t, ent.ID())
	assert.Equal(t, testNow, ent.Config.Base().CreatedAt)
	assert.Equal(t, testNow, ent.Config.Base().UpdatedAt)
	// The source config is not mutated.
	assert.Empty(t, cfg.Base().ID)
}

func TestFromConfig_RoundTripPreservesConfig(t *testing.T) {
	cfg := validMEVConfig(t)

	ent := FromConfig(cfg, testNow)

	embedded, ok := ent.Config.(*domain.MEVConfig)
	require.True(t, ok)
	want := cfg.(*domain.MEVConfig)
	assert.Equal(t, want.Name, embedded.Name)
	assert.Equal(t, want.Kind, embedded.Kind)
	assert.True(t, want.MaxPositionSize.Equal(embedded.MaxPositionSize))
	assert.True(t, want.TargetGasPremium.Equal(embedded.TargetGasPremium))
	assert.Equal(t, want.SandwichWindowMs, embedded.SandwichWindowMs)
}

func TestApplyUpdate_ValidPatch(t *testing.T) {
	ent := FromConfig(validMEVConfig(t), testNow)
	later := testNow.Add(time.Hour)

	updated, err := ApplyUpdate(ent, map[string]any{"name": "s2", "sandwichWindowMs": 750}, later)
	require.NoError(t, err)

	mev := updated.Config.(*domain.MEVConfig)
	assert.Equal(t, "s2", mev.Name)
	assert.Equal(t, 750, mev.SandwichWindowMs)
	assert.Equal(t, later, updated.UpdatedAt)
	assert.Equal(t, ent.CreatedAt, updated.CreatedAt)
	// Untouched fields survive the merge.
	assert.Equal(t, "10.5", mev.MaxPositionSize.String())

	// The original entity is unchanged.
	assert.Equal(t, "s1", ent.Config.Base().Name)
}

func TestApplyUpdate_InvalidMergedWholeRejected(t *testing.T) {
	ent := FromConfig(validMEVConfig(t), testNow)

	// 6% passes the generic percentage bound but makes the merged MEV
	// config invalid.
	_, err := ApplyUpdate(ent, map[string]any{"slippageTolerancePercent": 6}, testNow.Add(time.Hour))
	require.Error(t, err)

	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.HasField("slippageTolerancePercent"))
}

func TestApplyUpdate_ImmutableFields(t *testing.T) {
	ent := FromConfig(validMEVConfig(t), testNow)

	for _, field := range []string{"id", "kind", "createdAt"} {
		_, err := ApplyUpdate(ent, map[string]any{field: "something"}, testNow)
		require.Error(t, err, "patching %s must fail", field)

		var verr *schema.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Len(t, verr.Violations, 1)
		assert.Equal(t, field, verr.Violations[0].Field)
		assert.Equal(t, constraint.RuleImmutable, verr.Violations[0].Rule)
	}
}

func TestApplyUpdate_CrossVariantFieldRejected(t *testing.T) {
	ent := FromConfig(validMEVConfig(t), testNow)

	_, err := ApplyUpdate(ent, map[string]any{"copyRatio": "0.5"}, testNow)
	require.Error(t, err)

	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.HasField("copyRatio"))
}

func TestChangeStatus(t *testing.T) {
	ent := FromConfig(validMEVConfig(t), testNow)

	paused, err := ChangeStatus(ent, domain.StatusPaused, testNow.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaused, paused.Status)

	active, err := ChangeStatus(paused, domain.StatusActive, testNow.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, active.Status)

	archived, err := ChangeStatus(active, domain.StatusArchived, testNow.Add(3*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusArchived, archived.Status)

	_, err = ChangeStatus(archived, domain.StatusActive, testNow.Add(4*time.Minute))
	require.Error(t, err)
	var invalid *domain.InvalidTransitionError
	assert.True(t, errors.As(err, &invalid))
}
