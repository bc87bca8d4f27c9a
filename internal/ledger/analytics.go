package ledger

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"github.com/mmynk/paysplit/internal/models"
)

// Trend is the direction of a fitted spending line.
type Trend string

const (
	TrendIncreasing Trend = "Increasing"
	TrendDecreasing Trend = "Decreasing"
)

// MonthlyBucket aggregates one member's involvement in one group for one
// calendar month.
type MonthlyBucket struct {
	GroupID            string
	GroupName          string
	Year               int
	Month              time.Month
	TotalGroupSpending decimal.Decimal // Sum of expense amounts
	TotalMySpending    decimal.Decimal // Sum of the member's shares
	Count              int
}

// MonthlyTotal is a member's total share for one calendar month.
type MonthlyTotal struct {
	Year       int
	Month      time.Month
	TotalSpent decimal.Decimal
}

// Prediction is a one-step-ahead forecast over monthly totals.
type Prediction struct {
	NextMonthIndex  int
	PredictedAmount float64 // Projected floored at zero
	Projected       float64 // Raw value of the fitted line at NextMonthIndex
	Slope           float64
	Trend           Trend
	Confidence      float64 // R² of the fit, in [0, 1]
}

type monthKey struct {
	year  int
	month time.Month
}

func monthOf(unix int64) monthKey {
	t := time.Unix(unix, 0).UTC()
	return monthKey{year: t.Year(), month: t.Month()}
}

// MonthlyBreakdown buckets memberID's expenses by group and calendar month
// (UTC), newest month first. An expense counts when memberID is in its
// split, settled or not. groupNames supplies display names by group ID.
func MonthlyBreakdown(memberID string, expenses []models.Expense, groupNames map[string]string) []MonthlyBucket {
	type bucketKey struct {
		groupID string
		month   monthKey
	}
	buckets := make(map[bucketKey]*MonthlyBucket)

	for _, expense := range expenses {
		share, involved := expense.ShareOf(memberID)
		if !involved {
			continue
		}
		key := bucketKey{groupID: expense.GroupID, month: monthOf(expense.CreatedAt)}
		b, exists := buckets[key]
		if !exists {
			b = &MonthlyBucket{
				GroupID:   expense.GroupID,
				GroupName: groupNames[expense.GroupID],
				Year:      key.month.year,
				Month:     key.month.month,
			}
			buckets[key] = b
		}
		b.TotalGroupSpending = b.TotalGroupSpending.Add(expense.Amount)
		b.TotalMySpending = b.TotalMySpending.Add(share)
		b.Count++
	}

	result := make([]MonthlyBucket, 0, len(buckets))
	for _, b := range buckets {
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Year != b.Year {
			return a.Year > b.Year
		}
		if a.Month != b.Month {
			return a.Month > b.Month
		}
		if a.GroupName != b.GroupName {
			return a.GroupName < b.GroupName
		}
		return a.GroupID < b.GroupID
	})
	return result
}

// MonthlyHistory sums memberID's shares per calendar month across all
// groups, oldest month first.
func MonthlyHistory(memberID string, expenses []models.Expense) []MonthlyTotal {
	totals := make(map[monthKey]decimal.Decimal)
	for _, expense := range expenses {
		share, involved := expense.ShareOf(memberID)
		if !involved {
			continue
		}
		key := monthOf(expense.CreatedAt)
		totals[key] = totals[key].Add(share)
	}

	history := make([]MonthlyTotal, 0, len(totals))
	for key, total := range totals {
		history = append(history, MonthlyTotal{Year: key.year, Month: key.month, TotalSpent: total})
	}
	sort.Slice(history, func(i, j int) bool {
		if history[i].Year != history[j].Year {
			return history[i].Year < history[j].Year
		}
		return history[i].Month < history[j].Month
	})
	return history
}

// PredictNextMonth fits an ordinary least-squares line over
// (index, total) and evaluates it at the next index. It returns false when
// fewer than two months of history exist.
func PredictNextMonth(history []MonthlyTotal) (Prediction, bool) {
	if len(history) < 2 {
		return Prediction{}, false
	}

	xs := make([]float64, len(history))
	ys := make([]float64, len(history))
	for i, month := range history {
		xs[i] = float64(i)
		ys[i] = month.TotalSpent.InexactFloat64()
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	next := len(history)
	predicted := alpha + beta*float64(next)

	trend := TrendDecreasing
	if beta > 0 {
		trend = TrendIncreasing
	}

	return Prediction{
		NextMonthIndex:  next,
		PredictedAmount: math.Max(0, predicted),
		Projected:       predicted,
		Slope:           beta,
		Trend:           trend,
		Confidence:      rSquared(xs, ys, alpha, beta),
	}, true
}

// rSquared is the coefficient of determination clamped to [0, 1]. A flat
// history has no variance to explain and is fitted exactly, so it scores 1.
func rSquared(xs, ys []float64, alpha, beta float64) float64 {
	r2 := stat.RSquared(xs, ys, nil, alpha, beta)
	if math.IsNaN(r2) {
		return 1
	}
	return math.Min(1, math.Max(0, r2))
}
