package dashboard

import "github.com/shopspring/decimal"

// OverdueAccounts totals unsettled accounts whose due date already passed.
// Total is always Receivable + Payable.
type OverdueAccounts struct {
	Receivable decimal.Decimal `json:"receivable"`
	Payable    decimal.Decimal `json:"payable"`
	Total      decimal.Decimal `json:"total"`
}

// UpcomingAccounts totals unsettled accounts due inside the query window.
type UpcomingAccounts struct {
	Receivable decimal.Decimal `json:"receivable"`
	Payable    decimal.Decimal `json:"payable"`
}

// SummaryMetadata echoes the period the summary covers.
type SummaryMetadata struct {
	Period DateRange `json:"period"`
}

// KpiSummary contains the financial indicators surfaced on the dashboard.
// Invariant: LiquidProfit == TotalRevenue - TotalExpense in fixed decimal.
type KpiSummary struct {
	TotalRevenue decimal.Decimal  `json:"total_revenue"`
	TotalExpense decimal.Decimal  `json:"total_expense"`
	LiquidProfit decimal.Decimal  `json:"liquid_profit"`
	Overdue      OverdueAccounts  `json:"overdue_accounts"`
	Upcoming     UpcomingAccounts `json:"upcoming_accounts"`
	Metadata     SummaryMetadata  `json:"metadata"`
}
