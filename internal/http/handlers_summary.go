package http

import (
	"log/slog"
	"net/http"

	"budget/internal/core"
)

type categoryJSON struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

type summaryJSON struct {
	Period            string            `json:"period"`
	TotalIncome       string            `json:"total_income"`
	TotalExpense      string            `json:"total_expense"`
	Net               string            `json:"net"`
	WalletBalance     string            `json:"wallet_balance"`
	CategoryBreakdown []categoryJSON    `json:"category_breakdown"`
	Transactions      []transactionJSON `json:"transactions"`
}

func toSummaryJSON(sum core.Summary) summaryJSON {
	out := summaryJSON{
		Period:            sum.Period.Key(),
		TotalIncome:       core.FormatCents(sum.TotalIncome.Cents),
		TotalExpense:      core.FormatCents(sum.TotalExpense.Cents),
		Net:               core.FormatCents(sum.Net.Cents),
		WalletBalance:     core.FormatCents(sum.WalletBalance.Cents),
		CategoryBreakdown: make([]categoryJSON, 0, len(sum.CategoryBreakdown)),
		Transactions:      make([]transactionJSON, 0, len(sum.Transactions)),
	}
	for _, c := range sum.CategoryBreakdown {
		out.CategoryBreakdown = append(out.CategoryBreakdown, categoryJSON{
			Name:   c.Name,
			Amount: core.FormatCents(c.Amount.Cents),
		})
	}
	for _, tx := range sum.Transactions {
		out.Transactions = append(out.Transactions, toTransactionJSON(tx))
	}
	return out
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ownerID := ownerFromContext(r.Context())

	period, err := parsePeriod(r)
	if err != nil {
		writeError(w, err)
		return
	}

	key := s.summaryCacheKey(ownerID, period)
	if cached, found := s.summaryCache.Get(key); found {
		slog.DebugContext(r.Context(), "Summary cache hit", "owner_id", ownerID, "period", period.Key())
		writeJSON(w, http.StatusOK, toSummaryJSON(cached))
		return
	}

	sum, err := s.ledger.Summarize(r.Context(), ownerID, period)
	if err != nil {
		slog.ErrorContext(r.Context(), "Summarize error", "error", err, "owner_id", ownerID, "period", period.Key())
		writeError(w, err)
		return
	}

	s.summaryCache.Set(key, sum)
	writeJSON(w, http.StatusOK, toSummaryJSON(sum))
}
