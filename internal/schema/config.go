package schema

import (
	"fmt"

	"github.com/shopspring/decimal"

	"botFleet/internal/constraint"
	"botFleet/internal/domain"
)

// mevSlippageCeiling is the kind-specific refinement for sandwich bots:
// slippage above 5% would let the victim transaction move the price past
// the bundle's profitability window, so the generic 0-100 bound is not
// enough for MEV configs.
var mevSlippageCeiling = decimal.NewFromInt(5)

// baseFields are accepted for every kind. id and the audit timestamps are
// optional on input (assigned at creation), the rest of the optional set
// defaults to the zero value.
var baseFields = map[string]bool{
	"id":                       true,
	"name":                     true,
	"kind":                     true,
	"enabled":                  true,
	"maxPositionSize":          true,
	"slippageTolerancePercent": true,
	"createdAt":                true,
	"updatedAt":                true,
}

// variantFields maps each kind to the fields valid only for that kind.
// A field from another variant is rejected as unknown: silently accepting
// it would mean a caller misconfigured the wrong bot kind without noticing.
var variantFields = map[domain.BotKind]map[string]bool{
	domain.KindArbitrage: {
		"minProfitThreshold": true,
		"exchangePairs":      true,
	},
	domain.KindCopyTrading: {
		"sourceWallet": true,
		"copyRatio":    true,
	},
	domain.KindMEV: {
		"targetGasPremium": true,
		"sandwichWindowMs": true,
	},
}

// ValidateBotConfig validates an untrusted configuration document and
// returns the typed variant matching its kind discriminant. The kind is
// read first: if it is absent or unknown the function fails with that
// single violation, since validating the rest against an unknown shape
// would only produce noise. For a recognized kind validation is total:
// every field is checked and every violation is collected.
func ValidateBotConfig(raw map[string]any) (domain.BotConfig, *ValidationError) {
	verr := &ValidationError{}

	kindRaw, ok := raw["kind"]
	if !ok {
		verr.add(constraint.NewViolation("kind", constraint.RuleRequired, nil, "kind is required"))
		return nil, verr
	}
	kindStr, viol := constraint.NonEmptyString("kind", kindRaw)
	if viol != nil {
		verr.add(viol)
		return nil, verr
	}
	kind := domain.BotKind(kindStr)
	if !kind.Valid() {
		verr.add(constraint.NewViolation("kind", constraint.RuleUnknownKind, kindStr,
			fmt.Sprintf("unknown bot kind, expected one of %v", domain.Kinds())))
		return nil, verr
	}

	// Strict mode: anything outside the matched variant's field set is an
	// error, including fields that would be valid for a different kind.
	allowed := variantFields[kind]
	for field := range raw {
		if !baseFields[field] && !allowed[field] {
			verr.add(constraint.NewViolation(field, constraint.RuleUnknownField, raw[field],
				fmt.Sprintf("field is not valid for kind %s", kind)))
		}
	}

	base := validateBase(raw, kind, verr)

	var cfg domain.BotConfig
	switch kind {
	case domain.KindArbitrage:
		cfg = validateArbitrage(raw, base, verr)
	case domain.KindCopyTrading:
		cfg = validateCopyTrading(raw, base, verr)
	case domain.KindMEV:
		cfg = validateMEV(raw, base, verr)
	}

	if errs := verr.orNil(); errs != nil {
		return nil, errs
	}
	return cfg, nil
}

func validateBase(raw map[string]any, kind domain.BotKind, verr *ValidationError) domain.BaseBotConfig {
	base := domain.BaseBotConfig{Kind: kind}

	if idRaw, ok := raw["id"]; ok {
		id, viol := constraint.NonEmptyString("id", idRaw)
		verr.add(viol)
		base.ID = id
	}

	nameRaw, ok := raw["name"]
	if !ok {
		verr.add(constraint.NewViolation("name", constraint.RuleRequired, nil, "name is required"))
	} else {
		name, viol := constraint.NonEmptyString("name", nameRaw)
		verr.add(viol)
		base.Name = name
	}

	if enabledRaw, ok := raw["enabled"]; ok {
		enabled, viol := constraint.Bool("enabled", enabledRaw)
		verr.add(viol)
		base.Enabled = enabled
	}

	if sizeRaw, ok := raw["maxPositionSize"]; ok {
		size, viol := constraint.Amount("maxPositionSize", sizeRaw)
		verr.add(viol)
		base.MaxPositionSize = size
	} else {
		verr.add(constraint.NewViolation("maxPositionSize", constraint.RuleRequired, nil, "maxPositionSize is required"))
	}

	if slipRaw, ok := raw["slippageTolerancePercent"]; ok {
		slip, viol := constraint.Percent("slippageTolerancePercent", slipRaw)
		verr.add(viol)
		base.SlippageTolerancePercent = slip
	} else {
		verr.add(constraint.NewViolation("slippageTolerancePercent", constraint.RuleRequired, nil, "slippageTolerancePercent is required"))
	}

	if createdRaw, ok := raw["createdAt"]; ok {
		created, viol := constraint.Timestamp("createdAt", createdRaw)
		verr.add(viol)
		base.CreatedAt = created
	}
	if updatedRaw, ok := raw["updatedAt"]; ok {
		updated, viol := constraint.Timestamp("updatedAt", updatedRaw)
		verr.add(viol)
		base.UpdatedAt = updated
	}
	// Monotonicity is a cross-field rule, so it lives here rather than in
	// the timestamp primitive.
	if !base.CreatedAt.IsZero() && !base.UpdatedAt.IsZero() && base.UpdatedAt.Before(base.CreatedAt) {
		verr.add(constraint.NewViolation("updatedAt", constraint.RuleRange, base.UpdatedAt,
			"updatedAt must not precede createdAt"))
	}

	return base
}

func validateArbitrage(raw map[string]any, base domain.BaseBotConfig, verr *ValidationError) *domain.ArbitrageConfig {
	cfg := &domain.ArbitrageConfig{BaseBotConfig: base}

	if thresholdRaw, ok := raw["minProfitThreshold"]; ok {
		threshold, viol := constraint.Amount("minProfitThreshold", thresholdRaw)
		verr.add(viol)
		cfg.MinProfitThreshold = threshold
	} else {
		verr.add(constraint.NewViolation("minProfitThreshold", constraint.RuleRequired, nil, "minProfitThreshold is required"))
	}

	if pairsRaw, ok := raw["exchangePairs"]; ok {
		pairs, viol := constraint.StringList("exchangePairs", pairsRaw)
		verr.add(viol)
		cfg.ExchangePairs = pairs
	} else {
		verr.add(constraint.NewViolation("exchangePairs", constraint.RuleRequired, nil, "exchangePairs is required"))
	}

	return cfg
}

func validateCopyTrading(raw map[string]any, base domain.BaseBotConfig, verr *ValidationError) *domain.CopyTradingConfig {
	cfg := &domain.CopyTradingConfig{BaseBotConfig: base}

	if walletRaw, ok := raw["sourceWallet"]; ok {
		wallet, viol := constraint.Address("sourceWallet", walletRaw)
		verr.add(viol)
		cfg.SourceWallet = wallet
	} else {
		verr.add(constraint.NewViolation("sourceWallet", constraint.RuleRequired, nil, "sourceWallet is required"))
	}

	if ratioRaw, ok := raw["copyRatio"]; ok {
		ratio, viol := constraint.Ratio("copyRatio", ratioRaw)
		verr.add(viol)
		cfg.CopyRatio = ratio
	} else {
		verr.add(constraint.NewViolation("copyRatio", constraint.RuleRequired, nil, "copyRatio is required"))
	}

	return cfg
}

func validateMEV(raw map[string]any, base domain.BaseBotConfig, verr *ValidationError) *domain.MEVConfig {
	cfg := &domain.MEVConfig{BaseBotConfig: base}

	if premiumRaw, ok := raw["targetGasPremium"]; ok {
		premium, viol := constraint.PositiveAmount("targetGasPremium", premiumRaw)
		verr.add(viol)
		cfg.TargetGasPremium = premium
	} else {
		verr.add(constraint.NewViolation("targetGasPremium", constraint.RuleRequired, nil, "targetGasPremium is required"))
	}

	if windowRaw, ok := raw["sandwichWindowMs"]; ok {
		window, viol := constraint.PositiveInt("sandwichWindowMs", windowRaw)
		verr.add(viol)
		cfg.SandwichWindowMs = window
	} else {
		verr.add(constraint.NewViolation("sandwichWindowMs", constraint.RuleRequired, nil, "sandwichWindowMs is required"))
	}

	// Kind-specific refinement composes with the generic [0,100] bound
	// already applied in validateBase.
	if !verr.HasField("slippageTolerancePercent") && base.SlippageTolerancePercent.GreaterThan(mevSlippageCeiling) {
		verr.add(constraint.NewViolation("slippageTolerancePercent", constraint.RuleRange,
			base.SlippageTolerancePercent.String(),
			fmt.Sprintf("MEV bots must keep slippage tolerance at or below %s%%", mevSlippageCeiling)))
	}

	return cfg
}
