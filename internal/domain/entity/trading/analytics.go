package trading

// SymbolAnalytics holds the per-symbol totals for one calendar date. Derived
// from trade records on every query, never persisted.
type SymbolAnalytics struct {
	TotalQuantity int64   `json:"totalQuantity"`
	TotalPnl      float64 `json:"totalPnl"`
}
