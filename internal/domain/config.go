package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BaseBotConfig holds the fields shared by every bot kind. The ID is
// assigned once at creation and never reassigned; Kind is immutable for
// the lifetime of the bot. UpdatedAt never precedes CreatedAt.
type BaseBotConfig struct {
	ID                       string          `json:"id"`
	Name                     string          `json:"name"`
	Kind                     BotKind         `json:"kind"`
	Enabled                  bool            `json:"enabled"`
	MaxPositionSize          decimal.Decimal `json:"maxPositionSize"`
	SlippageTolerancePercent decimal.Decimal `json:"slippageTolerancePercent"`
	CreatedAt                time.Time       `json:"createdAt"`
	UpdatedAt                time.Time       `json:"updatedAt"`
}

// ArbitrageConfig configures a cross-exchange arbitrage bot.
type ArbitrageConfig struct {
	BaseBotConfig
	MinProfitThreshold decimal.Decimal `json:"minProfitThreshold"`
	ExchangePairs      []string        `json:"exchangePairs"`
}

// CopyTradingConfig configures a bot mirroring trades from a source wallet.
type CopyTradingConfig struct {
	BaseBotConfig
	SourceWallet string          `json:"sourceWallet"`
	CopyRatio    decimal.Decimal `json:"copyRatio"`
}

// MEVConfig configures a sandwich/MEV bot.
type MEVConfig struct {
	BaseBotConfig
	TargetGasPremium decimal.Decimal `json:"targetGasPremium"`
	SandwichWindowMs int             `json:"sandwichWindowMs"`
}

// BotConfig is the closed union over the per-kind configuration variants,
// discriminated by the Kind field of the embedded base. Only the three
// variants in this package implement it.
type BotConfig interface {
	// Base exposes the shared configuration fields.
	Base() *BaseBotConfig
	isBotConfig()
}

func (c *ArbitrageConfig) Base() *BaseBotConfig   { return &c.BaseBotConfig }
func (c *CopyTradingConfig) Base() *BaseBotConfig { return &c.BaseBotConfig }
func (c *MEVConfig) Base() *BaseBotConfig         { return &c.BaseBotConfig }

func (c *ArbitrageConfig) isBotConfig()   {}
func (c *CopyTradingConfig) isBotConfig() {}
func (c *MEVConfig) isBotConfig()         {}

// CloneConfig returns a deep copy of the given configuration so callers
// can derive updated versions without mutating the stored one.
func CloneConfig(cfg BotConfig) BotConfig {
	switch c := cfg.(type) {
	case *ArbitrageConfig:
		dup := *c
		dup.ExchangePairs = append([]string(nil), c.ExchangePairs...)
		return &dup
	case *CopyTradingConfig:
		dup := *c
		return &dup
	case *MEVConfig:
		dup := *c
		return &dup
	default:
		// Unreachable while the union stays closed.
		panic(fmt.Sprintf("unknown bot config variant %T", cfg))
	}
}

// UnmarshalBotConfig decodes a stored configuration document into the
// variant named by its kind discriminant.
func UnmarshalBotConfig(data []byte) (BotConfig, error) {
	var probe struct {
		Kind BotKind `json:"kind"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to read bot config discriminant: %w", err)
	}
	switch probe.Kind {
	case KindArbitrage:
		var c ArbitrageConfig
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("failed to decode arbitrage config: %w", err)
		}
		return &c, nil
	case KindCopyTrading:
		var c CopyTradingConfig
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("failed to decode copy-trading config: %w", err)
		}
		return &c, nil
	case KindMEV:
		var c MEVConfig
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("failed to decode MEV config: %w", err)
		}
		return &c, nil
	default:
		return nil, fmt.Errorf("unknown bot kind %q", probe.Kind)
	}
}
