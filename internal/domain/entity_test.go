package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBotStatus_Transition(t *testing.T) {
	tests := []struct {
		name    string
		from    BotStatus
		to      BotStatus
		wantErr bool
	}{
		{name: "active to paused", from: StatusActive, to: StatusPaused},
		{name: "paused to active", from: StatusPaused, to: StatusActive},
		{name: "active to archived", from: StatusActive, to: StatusArchived},
		{name: "paused to archived", from: StatusPaused, to: StatusArchived},
		{name: "archived to active", from: StatusArchived, to: StatusActive, wantErr: true},
		{name: "archived to paused", from: StatusArchived, to: StatusPaused, wantErr: true},
		{name: "archived stays archived", from: StatusArchived, to: StatusArchived},
		{name: "unknown target", from: StatusActive, to: BotStatus("Running"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.from.Transition(tt.to)
			if tt.wantErr {
				require.Error(t, err)
				var invalid *InvalidTransitionError
				require.ErrorAs(t, err, &invalid)
				assert.Equal(t, tt.from, invalid.From)
				assert.Equal(t, tt.to, invalid.To)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUnmarshalBotConfig_DispatchesOnKind(t *testing.T) {
	raw := []byte(`{"id":"b-1","name":"sandwicher","kind":"MEV","enabled":true,
		"maxPositionSize":"10.5","slippageTolerancePercent":"2",
		"targetGasPremium":"1.2","sandwichWindowMs":500,
		"createdAt":"2024-03-01T00:00:00Z","updatedAt":"2024-03-01T00:00:00Z"}`)

	cfg, err := UnmarshalBotConfig(raw)
	require.NoError(t, err)

	mev, ok := cfg.(*MEVConfig)
	require.True(t, ok, "expected MEV variant, got %T", cfg)
	assert.Equal(t, KindMEV, mev.Kind)
	assert.Equal(t, 500, mev.SandwichWindowMs)
	assert.Equal(t, "10.5", mev.MaxPositionSize.String())
}

func TestUnmarshalBotConfig_UnknownKind(t *testing.T) {
	_, err := UnmarshalBotConfig([]byte(`{"kind":"Sniper","name":"x"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Sniper")
}

func TestCloneConfig_IsDeep(t *testing.T) {
	orig := &ArbitrageConfig{
		BaseBotConfig: BaseBotConfig{ID: "b-1", Name: "arb", Kind: KindArbitrage},
		ExchangePairs: []string{"ETH/USDT"},
	}
	dup := CloneConfig(orig).(*ArbitrageConfig)
	dup.ExchangePairs[0] = "BTC/USDT"
	dup.Name = "other"

	assert.Equal(t, "ETH/USDT", orig.ExchangePairs[0])
	assert.Equal(t, "arb", orig.Name)
}
