package ledger

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/paysplit/internal/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func split(pairs ...any) map[string]decimal.Decimal {
	m := make(map[string]decimal.Decimal, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		m[pairs[i].(string)] = d(pairs[i+1].(string))
	}
	return m
}

func assertBalance(t *testing.T, group *models.Group, member, want string) {
	t.Helper()
	got := ComputeBalance(group, member)
	if !got.Equal(d(want)) {
		t.Errorf("ComputeBalance(%s) = %s, want %s", member, got, want)
	}
}

func TestComputeBalance(t *testing.T) {
	tests := []struct {
		name     string
		expenses []models.Expense
		want     map[string]string
	}{
		{
			name:     "no expenses",
			expenses: nil,
			want:     map[string]string{"alice": "0"},
		},
		{
			name: "uninvolved member is zero",
			expenses: []models.Expense{
				{ID: "e1", Amount: d("50"), PayerID: "alice", SplitDetails: split("bob", "50")},
			},
			want: map[string]string{"carol": "0"},
		},
		{
			name: "single expense payer and debtor",
			expenses: []models.Expense{
				{ID: "e1", Amount: d("80"), PayerID: "alice", SplitDetails: split("alice", "40", "bob", "40")},
			},
			want: map[string]string{"alice": "40", "bob": "-40"},
		},
		{
			name: "three-way split with zero payer share",
			expenses: []models.Expense{
				{ID: "e1", Amount: d("300"), PayerID: "alice", SplitDetails: split("alice", "0", "bob", "100", "carol", "100")},
			},
			want: map[string]string{"alice": "200", "bob": "-100", "carol": "-100"},
		},
		{
			name: "split only over debtors",
			expenses: []models.Expense{
				{ID: "e1", Amount: d("300"), PayerID: "alice", SplitDetails: split("bob", "100", "carol", "100")},
			},
			want: map[string]string{"alice": "200", "bob": "-100", "carol": "-100"},
		},
		{
			name: "partially settled",
			expenses: []models.Expense{
				{ID: "e1", Amount: d("300"), PayerID: "alice", SplitDetails: split("alice", "0", "bob", "100", "carol", "100"), SettledBy: []string{"bob"}},
			},
			want: map[string]string{"alice": "100", "bob": "0", "carol": "-100"},
		},
		{
			name: "opposing expenses net out",
			expenses: []models.Expense{
				{ID: "e1", Amount: d("60"), PayerID: "alice", SplitDetails: split("alice", "30", "bob", "30")},
				{ID: "e2", Amount: d("20"), PayerID: "bob", SplitDetails: split("alice", "10", "bob", "10")},
			},
			want: map[string]string{"alice": "20", "bob": "-20"},
		},
		{
			name: "decimal shares stay exact",
			expenses: []models.Expense{
				{ID: "e1", Amount: d("0.30"), PayerID: "alice", SplitDetails: split("alice", "0.10", "bob", "0.10", "carol", "0.10")},
			},
			want: map[string]string{"alice": "0.2", "bob": "-0.1", "carol": "-0.1"},
		},
		{
			name: "payer listed in own settledBy contributes nothing",
			expenses: []models.Expense{
				{ID: "e1", Amount: d("100"), PayerID: "alice", SplitDetails: split("bob", "100"), SettledBy: []string{"alice"}},
			},
			want: map[string]string{"alice": "0", "bob": "-100"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			group := &models.Group{ID: "g1", Expenses: tt.expenses}
			for member, want := range tt.want {
				assertBalance(t, group, member, want)
			}
		})
	}
}

func TestGroupBalances(t *testing.T) {
	group := &models.Group{
		ID:      "g1",
		Members: []string{"alice", "bob", "carol"},
		Expenses: []models.Expense{
			{ID: "e1", Amount: d("90"), PayerID: "alice", SplitDetails: split("alice", "30", "bob", "30", "carol", "30")},
		},
	}

	balances := GroupBalances(group)
	if len(balances) != 3 {
		t.Fatalf("expected 3 balances, got %d", len(balances))
	}

	want := []struct {
		member string
		amount string
	}{
		{"alice", "60"},
		{"bob", "-30"},
		{"carol", "-30"},
	}
	sum := decimal.Zero
	for i, w := range want {
		if balances[i].MemberID != w.member {
			t.Errorf("balance %d: member %s, want %s", i, balances[i].MemberID, w.member)
		}
		if !balances[i].Balance.Equal(d(w.amount)) {
			t.Errorf("balance %s: %s, want %s", w.member, balances[i].Balance, w.amount)
		}
		sum = sum.Add(balances[i].Balance)
	}
	if !sum.IsZero() {
		t.Errorf("balances should sum to zero, got %s", sum)
	}
}

func TestOutstandingDebts(t *testing.T) {
	group := &models.Group{
		ID: "g1",
		Expenses: []models.Expense{
			{ID: "e1", Amount: d("300"), PayerID: "alice", SplitDetails: split("alice", "100", "bob", "100", "carol", "100"), SettledBy: []string{"carol"}},
			{ID: "e2", Amount: d("50"), PayerID: "alice", SplitDetails: split("bob", "50")},
			{ID: "e3", Amount: d("40"), PayerID: "carol", SplitDetails: split("bob", "20", "carol", "20")},
			{ID: "e4", Amount: d("10"), PayerID: "bob", SplitDetails: split("alice", "0")},
		},
	}

	edges := OutstandingDebts(group)

	want := []DebtEdge{
		{From: "bob", To: "alice", Amount: d("150")},
		{From: "bob", To: "carol", Amount: d("20")},
	}
	if len(edges) != len(want) {
		t.Fatalf("expected %d edges, got %d: %+v", len(want), len(edges), edges)
	}
	for i := range want {
		if edges[i].From != want[i].From || edges[i].To != want[i].To || !edges[i].Amount.Equal(want[i].Amount) {
			t.Errorf("edge %d = %s->%s %s, want %s->%s %s",
				i, edges[i].From, edges[i].To, edges[i].Amount,
				want[i].From, want[i].To, want[i].Amount)
		}
	}
}
