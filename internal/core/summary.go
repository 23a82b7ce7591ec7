package core

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// Summary is the aggregated view of one owner's ledger for a period.
// Transactions, the totals, and the breakdown are all scoped to the period;
// WalletBalance is always computed over the owner's entire history, whatever
// the period was.
type Summary struct {
	Period       Period
	Transactions []Transaction
	TotalIncome  Money
	TotalExpense Money
	Net          Money

	// CategoryBreakdown sums expense rows only. Categories with no matching
	// expense rows are absent, not zero-valued; the entries decide which
	// chart segments a frontend draws.
	CategoryBreakdown []CategoryAmount

	WalletBalance Money
}
