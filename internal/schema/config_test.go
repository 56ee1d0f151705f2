package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botFleet/internal/constraint"
	"botFleet/internal/domain"
)

func validArbitrageRaw() map[string]any {
	return map[string]any{
		"kind":                     "Arbitrage",
		"name":                     "eth-usdt-arb",
		"enabled":                  true,
		"maxPositionSize":          "2500.00",
		"slippageTolerancePercent": "0.5",
		"minProfitThreshold":       "1.25",
		"exchangePairs":            []any{"ETH/USDT", "BTC/USDT"},
	}
}

func validCopyTradingRaw() map[string]any {
	return map[string]any{
		"kind":                     "CopyTrading",
		"name":                     "whale-mirror",
		"maxPositionSize":          "500",
		"slippageTolerancePercent": 1,
		"sourceWallet":             "0x52908400098527886E0F7030069857D2E4169EE7",
		"copyRatio":                "0.35",
	}
}

func validMEVRaw() map[string]any {
	return map[string]any{
		"kind":                     "MEV",
		"name":                     "s1",
		"maxPositionSize":          "10.5",
		"slippageTolerancePercent": 2,
		"targetGasPremium":         "1.2",
		"sandwichWindowMs":         500,
	}
}

func TestValidateBotConfig_KindMatchesVariant(t *testing.T) {
	tests := []struct {
		name     string
		raw      map[string]any
		wantKind domain.BotKind
		wantType any
	}{
		{name: "arbitrage", raw: validArbitrageRaw(), wantKind: domain.KindArbitrage, wantType: &domain.ArbitrageConfig{}},
		{name: "copy trading", raw: validCopyTradingRaw(), wantKind: domain.KindCopyTrading, wantType: &domain.CopyTradingConfig{}},
		{name: "mev", raw: validMEVRaw(), wantKind: domain.KindMEV, wantType: &domain.MEVConfig{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, verr := ValidateBotConfig(tt.raw)
			require.Nil(t, verr)
			require.NotNil(t, cfg)
			assert.Equal(t, tt.wantKind, cfg.Base().Kind)
			assert.IsType(t, tt.wantType, cfg)
		})
	}
}

func TestValidateBotConfig_UnknownKindFailsFast(t *testing.T) {
	raw := validMEVRaw()
	raw["kind"] = "Sniper"

	cfg, verr := ValidateBotConfig(raw)
	require.Nil(t, cfg)
	require.NotNil(t, verr)
	// A single violation: variant fields are not judged against an
	// unknown shape.
	require.Len(t, verr.Violations, 1)
	assert.Equal(t, "kind", verr.Violations[0].Field)
	assert.Equal(t, constraint.RuleUnknownKind, verr.Violations[0].Rule)
}

func TestValidateBotConfig_MissingKind(t *testing.T) {
	raw := validMEVRaw()
	delete(raw, "kind")

	_, verr := ValidateBotConfig(raw)
	require.NotNil(t, verr)
	require.Len(t, verr.Violations, 1)
	assert.Equal(t, constraint.RuleRequired, verr.Violations[0].Rule)
}

func TestValidateBotConfig_CrossVariantFieldRejected(t *testing.T) {
	raw := validArbitrageRaw()
	// Valid for CopyTrading, but this is an Arbitrage config.
	raw["copyRatio"] = "0.5"

	_, verr := ValidateBotConfig(raw)
	require.NotNil(t, verr)
	assert.True(t, verr.HasField("copyRatio"))
	for _, v := range verr.Violations {
		if v.Field == "copyRatio" {
			assert.Equal(t, constraint.RuleUnknownField, v.Rule)
		}
	}
}

func TestValidateBotConfig_CollectsAllViolations(t *testing.T) {
	raw := map[string]any{
		"kind":                     "Arbitrage",
		"name":                     "",
		"maxPositionSize":          "-5",
		"slippageTolerancePercent": 120,
		"exchangePairs":            []any{},
	}

	_, verr := ValidateBotConfig(raw)
	require.NotNil(t, verr)
	assert.True(t, verr.HasField("name"))
	assert.True(t, verr.HasField("maxPositionSize"))
	assert.True(t, verr.HasField("slippageTolerancePercent"))
	assert.True(t, verr.HasField("exchangePairs"))
	assert.True(t, verr.HasField("minProfitThreshold"))
	assert.GreaterOrEqual(t, len(verr.Violations), 5)
}

func TestValidateBotConfig_SlippageOutOfGenericBound(t *testing.T) {
	for _, bad := range []any{-1, 101, "250"} {
		raw := validArbitrageRaw()
		raw["slippageTolerancePercent"] = bad

		_, verr := ValidateBotConfig(raw)
		require.NotNil(t, verr, "value %v should fail", bad)
		assert.True(t, verr.HasField("slippageTolerancePercent"))
	}
}

func TestValidateBotConfig_MEVSlippageCeiling(t *testing.T) {
	// 6 is inside the generic 0-100 bound but above the MEV ceiling.
	raw := map[string]any{
		"kind":                     "MEV",
		"name":                     "s1",
		"maxPositionSize":          "10.5",
		"slippageTolerancePercent": 6,
		"targetGasPremium":         "1.2",
		"sandwichWindowMs":         500,
	}

	cfg, verr := ValidateBotConfig(raw)
	require.Nil(t, cfg)
	require.NotNil(t, verr)
	assert.True(t, verr.HasField("slippageTolerancePercent"))

	// The same slippage is fine for a non-MEV kind.
	arb := validArbitrageRaw()
	arb["slippageTolerancePercent"] = 6
	_, verr = ValidateBotConfig(arb)
	assert.Nil(t, verr)
}

func TestValidateBotConfig_MEVFieldBounds(t *testing.T) {
	raw := validMEVRaw()
	raw["targetGasPremium"] = "0"
	raw["sandwichWindowMs"] = -5

	_, verr := ValidateBotConfig(raw)
	require.NotNil(t, verr)
	assert.True(t, verr.HasField("targetGasPremium"))
	assert.True(t, verr.HasField("sandwichWindowMs"))
}

func TestValidateBotConfig_CopyTradingBounds(t *testing.T) {
	raw := validCopyTradingRaw()
	raw["sourceWallet"] = "not-an-address"
	raw["copyRatio"] = "1.01"

	_, verr := ValidateBotConfig(raw)
	require.NotNil(t, verr)
	assert.True(t, verr.HasField("sourceWallet"))
	assert.True(t, verr.HasField("copyRatio"))
}

func TestValidateBotConfig_TimestampMonotonicity(t *testing.T) {
	raw := validArbitrageRaw()
	raw["createdAt"] = "2024-03-02T00:00:00Z"
	raw["updatedAt"] = "2024-03-01T00:00:00Z"

	_, verr := ValidateBotConfig(raw)
	require.NotNil(t, verr)
	assert.True(t, verr.HasField("updatedAt"))
}
