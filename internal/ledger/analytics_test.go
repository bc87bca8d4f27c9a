package ledger

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/paysplit/internal/models"
)

func at(year int, month time.Month, day int) int64 {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC).Unix()
}

func analyticsFixture() []models.Expense {
	return []models.Expense{
		{ID: "e1", GroupID: "trip", Amount: d("300"), PayerID: "alice", SplitDetails: split("alice", "100", "bob", "100", "carol", "100"), CreatedAt: at(2024, time.January, 5)},
		{ID: "e2", GroupID: "trip", Amount: d("90"), PayerID: "bob", SplitDetails: split("alice", "45", "bob", "45"), SettledBy: []string{"alice"}, CreatedAt: at(2024, time.January, 20)},
		{ID: "e3", GroupID: "flat", Amount: d("1200"), PayerID: "carol", SplitDetails: split("alice", "600", "carol", "600"), CreatedAt: at(2024, time.January, 31)},
		{ID: "e4", GroupID: "flat", Amount: d("1000"), PayerID: "carol", SplitDetails: split("alice", "500", "carol", "500"), CreatedAt: at(2024, time.February, 1)},
		{ID: "e5", GroupID: "trip", Amount: d("50"), PayerID: "bob", SplitDetails: split("bob", "50"), CreatedAt: at(2024, time.March, 3)},
	}
}

func TestMonthlyBreakdown(t *testing.T) {
	names := map[string]string{"trip": "Goa Trip", "flat": "Flatmates"}

	buckets := MonthlyBreakdown("alice", analyticsFixture(), names)

	want := []struct {
		group  string
		year   int
		month  time.Month
		groupT string
		mine   string
		count  int
	}{
		{"Flatmates", 2024, time.February, "1000", "500", 1},
		{"Flatmates", 2024, time.January, "1200", "600", 1},
		{"Goa Trip", 2024, time.January, "390", "145", 2},
	}

	if len(buckets) != len(want) {
		t.Fatalf("expected %d buckets, got %d: %+v", len(want), len(buckets), buckets)
	}
	for i, w := range want {
		b := buckets[i]
		if b.GroupName != w.group || b.Year != w.year || b.Month != w.month {
			t.Errorf("bucket %d = %s %d-%d, want %s %d-%d", i, b.GroupName, b.Year, b.Month, w.group, w.year, w.month)
		}
		if !b.TotalGroupSpending.Equal(d(w.groupT)) {
			t.Errorf("bucket %d group spending = %s, want %s", i, b.TotalGroupSpending, w.groupT)
		}
		if !b.TotalMySpending.Equal(d(w.mine)) {
			t.Errorf("bucket %d my spending = %s, want %s", i, b.TotalMySpending, w.mine)
		}
		if b.Count != w.count {
			t.Errorf("bucket %d count = %d, want %d", i, b.Count, w.count)
		}
	}
}

func TestMonthlyBreakdown_TotalsMatchShares(t *testing.T) {
	expenses := analyticsFixture()

	for _, member := range []string{"alice", "bob", "carol", "dave"} {
		t.Run(member, func(t *testing.T) {
			want := decimal.Zero
			for _, e := range expenses {
				if share, ok := e.ShareOf(member); ok {
					want = want.Add(share)
				}
			}

			got := decimal.Zero
			for _, b := range MonthlyBreakdown(member, expenses, nil) {
				got = got.Add(b.TotalMySpending)
			}

			if !got.Equal(want) {
				t.Errorf("bucket totals = %s, want %s", got, want)
			}
		})
	}
}

func TestMonthlyHistory(t *testing.T) {
	history := MonthlyHistory("alice", analyticsFixture())

	want := []MonthlyTotal{
		{Year: 2024, Month: time.January, TotalSpent: d("745")},
		{Year: 2024, Month: time.February, TotalSpent: d("500")},
	}
	if len(history) != len(want) {
		t.Fatalf("expected %d months, got %d: %+v", len(want), len(history), history)
	}
	for i := range want {
		if history[i].Year != want[i].Year || history[i].Month != want[i].Month || !history[i].TotalSpent.Equal(want[i].TotalSpent) {
			t.Errorf("month %d = %+v, want %+v", i, history[i], want[i])
		}
	}
}

func months(totals ...string) []MonthlyTotal {
	history := make([]MonthlyTotal, len(totals))
	for i, total := range totals {
		history[i] = MonthlyTotal{Year: 2024, Month: time.Month(i + 1), TotalSpent: d(total)}
	}
	return history
}

func TestPredictNextMonth(t *testing.T) {
	tests := []struct {
		name           string
		history        []MonthlyTotal
		wantOK         bool
		wantPredicted  float64
		wantProjected  float64
		wantTrend      Trend
		wantConfidence float64
	}{
		{
			name:    "no history",
			history: nil,
			wantOK:  false,
		},
		{
			name:    "single month is insufficient",
			history: months("120"),
			wantOK:  false,
		},
		{
			name:           "perfect linear increase",
			history:        months("100", "200", "300"),
			wantOK:         true,
			wantPredicted:  400,
			wantProjected:  400,
			wantTrend:      TrendIncreasing,
			wantConfidence: 1,
		},
		{
			name:           "decrease floors at zero",
			history:        months("300", "100"),
			wantOK:         true,
			wantPredicted:  0,
			wantProjected:  -100,
			wantTrend:      TrendDecreasing,
			wantConfidence: 1,
		},
		{
			name:           "flat history is decreasing",
			history:        months("50", "50", "50"),
			wantOK:         true,
			wantPredicted:  50,
			wantProjected:  50,
			wantTrend:      TrendDecreasing,
			wantConfidence: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PredictNextMonth(tt.history)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				if got != (Prediction{}) {
					t.Errorf("expected zero prediction when data is insufficient, got %+v", got)
				}
				return
			}
			if got.NextMonthIndex != len(tt.history) {
				t.Errorf("next index = %d, want %d", got.NextMonthIndex, len(tt.history))
			}
			if math.Abs(got.PredictedAmount-tt.wantPredicted) > 1e-9 {
				t.Errorf("predicted = %v, want %v", got.PredictedAmount, tt.wantPredicted)
			}
			if math.Abs(got.Projected-tt.wantProjected) > 1e-9 {
				t.Errorf("projected = %v, want %v", got.Projected, tt.wantProjected)
			}
			if got.Trend != tt.wantTrend {
				t.Errorf("trend = %s, want %s", got.Trend, tt.wantTrend)
			}
			if math.Abs(got.Confidence-tt.wantConfidence) > 1e-9 {
				t.Errorf("confidence = %v, want %v", got.Confidence, tt.wantConfidence)
			}
		})
	}
}

func TestPredictNextMonth_NoisyConfidenceInRange(t *testing.T) {
	got, ok := PredictNextMonth(months("100", "400", "150", "350", "200"))
	if !ok {
		t.Fatal("expected a prediction")
	}
	if got.Confidence < 0 || got.Confidence > 1 {
		t.Errorf("confidence out of range: %v", got.Confidence)
	}
	if got.Confidence > 0.5 {
		t.Errorf("expected a poor fit for noisy data, got %v", got.Confidence)
	}
}
