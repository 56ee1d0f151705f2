package schema

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"botFleet/internal/constraint"
	"botFleet/internal/domain"
)

var tradeEventFields = map[string]bool{
	"id":               true,
	"botId":            true,
	"timestamp":        true,
	"side":             true,
	"amount":           true,
	"priceAtExecution": true,
	"profitLoss":       true,
	"txReference":      true,
}

// ValidateTradeEvent validates an untrusted trade record and stamps it.
// Events without an explicit timestamp receive now; events without an id
// get a fresh one. Whether botId resolves to a live configuration is the
// caller's concern; structurally the event stands on its own.
func ValidateTradeEvent(raw map[string]any, now time.Time) (*domain.TradeEvent, *ValidationError) {
	verr := &ValidationError{}

	for field := range raw {
		if !tradeEventFields[field] {
			verr.add(constraint.NewViolation(field, constraint.RuleUnknownField, raw[field],
				"field is not part of a trade event"))
		}
	}

	event := &domain.TradeEvent{Timestamp: now.UTC()}

	if idRaw, ok := raw["id"]; ok {
		id, viol := constraint.NonEmptyString("id", idRaw)
		verr.add(viol)
		event.ID = id
	} else {
		event.ID = uuid.NewString()
	}

	if botIDRaw, ok := raw["botId"]; ok {
		botID, viol := constraint.NonEmptyString("botId", botIDRaw)
		verr.add(viol)
		event.BotID = botID
	} else {
		verr.add(constraint.NewViolation("botId", constraint.RuleRequired, nil, "botId is required"))
	}

	if tsRaw, ok := raw["timestamp"]; ok {
		ts, viol := constraint.Timestamp("timestamp", tsRaw)
		verr.add(viol)
		if viol == nil {
			event.Timestamp = ts
		}
	}

	if sideRaw, ok := raw["side"]; ok {
		sideStr, viol := constraint.NonEmptyString("side", sideRaw)
		verr.add(viol)
		if viol == nil {
			side := domain.TradeSide(sideStr)
			if !side.Valid() {
				verr.add(constraint.NewViolation("side", constraint.RulePattern, sideStr,
					fmt.Sprintf("must be %s or %s", domain.SideBuy, domain.SideSell)))
			}
			event.Side = side
		}
	} else {
		verr.add(constraint.NewViolation("side", constraint.RuleRequired, nil, "side is required"))
	}

	if amountRaw, ok := raw["amount"]; ok {
		amount, viol := constraint.Amount("amount", amountRaw)
		verr.add(viol)
		event.Amount = amount
	} else {
		verr.add(constraint.NewViolation("amount", constraint.RuleRequired, nil, "amount is required"))
	}

	if priceRaw, ok := raw["priceAtExecution"]; ok {
		price, viol := constraint.PositiveAmount("priceAtExecution", priceRaw)
		verr.add(viol)
		event.PriceAtExecution = price
	} else {
		verr.add(constraint.NewViolation("priceAtExecution", constraint.RuleRequired, nil, "priceAtExecution is required"))
	}

	if pnlRaw, ok := raw["profitLoss"]; ok {
		// Signed: losses are as valid as wins.
		pnl, viol := constraint.Decimal("profitLoss", pnlRaw)
		verr.add(viol)
		event.ProfitLoss = pnl
	} else {
		verr.add(constraint.NewViolation("profitLoss", constraint.RuleRequired, nil, "profitLoss is required"))
	}

	if txRaw, ok := raw["txReference"]; ok {
		tx, viol := constraint.NonEmptyString("txReference", txRaw)
		verr.add(viol)
		event.TxReference = tx
	} else {
		verr.add(constraint.NewViolation("txReference", constraint.RuleRequired, nil, "txReference is required"))
	}

	if errs := verr.orNil(); errs != nil {
		return nil, errs
	}
	return event, nil
}
