package domain

// BotKind discriminates the configuration variants. The set is closed:
// adding a kind requires a matching variant and an update to every
// switch over BotKind.
type BotKind string

const (
	KindArbitrage   BotKind = "Arbitrage"
	KindCopyTrading BotKind = "CopyTrading"
	KindMEV         BotKind = "MEV"
)

// Kinds returns every known bot kind.
func Kinds() []BotKind {
	return []BotKind{KindArbitrage, KindCopyTrading, KindMEV}
}

// Valid reports whether k is a member of the BotKind enumeration.
func (k BotKind) Valid() bool {
	switch k {
	case KindArbitrage, KindCopyTrading, KindMEV:
		return true
	}
	return false
}

// TradeSide represents the side of an executed trade (BUY or SELL).
type TradeSide string

const (
	SideBuy  TradeSide = "BUY"
	SideSell TradeSide = "SELL"
)

// Valid reports whether s is a known trade side.
func (s TradeSide) Valid() bool {
	return s == SideBuy || s == SideSell
}
