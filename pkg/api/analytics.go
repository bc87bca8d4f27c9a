package api

import "github.com/shopspring/decimal"

type GetMonthlyGroupStatsRequest struct{}

// MonthlyGroupStat is one (group, month) bucket of the caller's spending.
type MonthlyGroupStat struct {
	GroupID            string          `json:"groupId"`
	GroupName          string          `json:"groupName"`
	Year               int             `json:"year"`
	Month              int             `json:"month"`
	TotalGroupSpending decimal.Decimal `json:"totalGroupSpending"`
	TotalMySpending    decimal.Decimal `json:"totalMySpending"`
	Count              int             `json:"count"`
}

type GetMonthlyGroupStatsResponse struct {
	Stats []*MonthlyGroupStat `json:"stats"`
}

type GetSpendingPredictionRequest struct{}

type MonthlySpending struct {
	Year       int             `json:"year"`
	Month      int             `json:"month"`
	TotalSpent decimal.Decimal `json:"totalSpent"`
}

type Prediction struct {
	NextMonthIndex  int     `json:"nextMonthIndex"`
	PredictedAmount float64 `json:"predictedAmount"`
	Slope           float64 `json:"slope"`
	Trend           string  `json:"trend"`
	Confidence      float64 `json:"confidence"`
	Explanation     string  `json:"explanation"`
}

// GetSpendingPredictionResponse has a nil Prediction and a Message when
// there is not enough history.
type GetSpendingPredictionResponse struct {
	History    []*MonthlySpending `json:"history"`
	Prediction *Prediction        `json:"prediction"`
	Message    string             `json:"message,omitempty"`
}
