// internal/domain/report.go
package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CategoryType tags a category group as income or expense.
type CategoryType string

const (
	CategoryIncome  CategoryType = "income"
	CategoryExpense CategoryType = "expense"
)

// RecentTransactionsLimit is how many transactions a report lists regardless of its window.
const RecentTransactionsLimit = 5

// Summary holds the headline totals of a report.
// TotalExpenses is the sum of absolute values, so it is never negative.
type Summary struct {
	TotalIncome   decimal.Decimal `json:"totalIncome"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	Net           decimal.Decimal `json:"net"`
}

// CategoryTotal aggregates one category within the report window.
type CategoryTotal struct {
	Category string          `json:"_id"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
	Type     CategoryType    `json:"type"`
}

// Report is computed on demand and never persisted.
type Report struct {
	TimeRange          TimeRange       `json:"timeRange"`
	From               Date            `json:"from"`
	To                 Date            `json:"to"`
	Summary            Summary         `json:"summary"`
	ByCategory         []CategoryTotal `json:"byCategory"`
	RecentTransactions []Transaction   `json:"recentTransactions"`
}

// Summarize totals income and expenses. Zero amounts count toward neither.
func Summarize(txs []Transaction) Summary {
	income, expenses := decimal.Zero, decimal.Zero
	for i := range txs {
		switch {
		case txs[i].IsIncome():
			income = income.Add(txs[i].Amount)
		case txs[i].IsExpense():
			expenses = expenses.Add(txs[i].Amount.Abs())
		}
	}
	return Summary{
		TotalIncome:   income,
		TotalExpenses: expenses,
		Net:           income.Sub(expenses),
	}
}

// GroupByCategory groups txs by exact category label and sorts the groups by total, largest first.
//
// A group's type is decided by the first transaction seen for that category: a category holding
// both signs keeps the tag of whichever came first in txs. Groups with equal totals keep their
// first-seen order.
func GroupByCategory(txs []Transaction) []CategoryTotal {
	groups := make([]CategoryTotal, 0)
	index := make(map[string]int)
	for i := range txs {
		tx := &txs[i]
		pos, ok := index[tx.Category]
		if !ok {
			typ := CategoryIncome
			if tx.IsExpense() {
				typ = CategoryExpense
			}
			groups = append(groups, CategoryTotal{Category: tx.Category, Total: decimal.Zero, Type: typ})
			pos = len(groups) - 1
			index[tx.Category] = pos
		}
		groups[pos].Total = groups[pos].Total.Add(tx.Amount.Abs())
		groups[pos].Count++
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Total.GreaterThan(groups[j].Total)
	})
	return groups
}
