package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/paysplit/internal/models"
)

// MemberBalance is one member's net position in a group.
type MemberBalance struct {
	MemberID string
	Balance  decimal.Decimal // Positive = owed money, Negative = owes money
}

// DebtEdge is an unsettled amount one member owes another.
type DebtEdge struct {
	From   string // Member who owes
	To     string // Payer who is owed
	Amount decimal.Decimal
}

// ComputeBalance returns memberID's net balance across the group's expenses.
//
// An expense the member has settled contributes nothing. As payer, the
// member is owed every other unsettled share. Otherwise the member owes
// their own share (zero if absent from the split).
func ComputeBalance(group *models.Group, memberID string) decimal.Decimal {
	total := decimal.Zero
	for i := range group.Expenses {
		expense := &group.Expenses[i]
		if expense.IsSettledBy(memberID) {
			continue
		}

		if expense.PayerID == memberID {
			for debtor, share := range expense.SplitDetails {
				if debtor == memberID || expense.IsSettledBy(debtor) {
					continue
				}
				total = total.Add(share)
			}
			continue
		}

		share, _ := expense.ShareOf(memberID)
		total = total.Sub(share)
	}
	return total
}

// GroupBalances computes ComputeBalance for every member, in member order.
func GroupBalances(group *models.Group) []MemberBalance {
	balances := make([]MemberBalance, 0, len(group.Members))
	for _, member := range group.Members {
		balances = append(balances, MemberBalance{
			MemberID: member,
			Balance:  ComputeBalance(group, member),
		})
	}
	return balances
}

// OutstandingDebts aggregates unsettled shares into debtor→payer edges.
// Edges are sorted by debtor then creditor for stable output.
func OutstandingDebts(group *models.Group) []DebtEdge {
	// debts[debtor][creditor] = amount
	debts := make(map[string]map[string]decimal.Decimal)

	for i := range group.Expenses {
		expense := &group.Expenses[i]
		for debtor, share := range expense.SplitDetails {
			if debtor == expense.PayerID || expense.IsSettledBy(debtor) || share.IsZero() {
				continue
			}
			if _, exists := debts[debtor]; !exists {
				debts[debtor] = make(map[string]decimal.Decimal)
			}
			debts[debtor][expense.PayerID] = debts[debtor][expense.PayerID].Add(share)
		}
	}

	var edges []DebtEdge
	for debtor, creditors := range debts {
		for creditor, amount := range creditors {
			edges = append(edges, DebtEdge{From: debtor, To: creditor, Amount: amount})
		}
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}
