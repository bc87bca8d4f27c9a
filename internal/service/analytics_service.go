package service

import (
	"context"
	"fmt"
	"math"

	"connectrpc.com/connect"

	"github.com/mmynk/paysplit/internal/ledger"
	"github.com/mmynk/paysplit/internal/storage"
	"github.com/mmynk/paysplit/pkg/api"
	"github.com/mmynk/paysplit/pkg/api/apiconnect"
)

const insufficientHistoryMessage = "Not enough data for prediction (need at least 2 months)"

// AnalyticsService reports the caller's spending across groups.
type AnalyticsService struct {
	apiconnect.UnimplementedAnalyticsServiceHandler
	store storage.Store
}

func NewAnalyticsService(store storage.Store) *AnalyticsService {
	return &AnalyticsService{store: store}
}

// GetMonthlyGroupStats buckets the caller's expenses by group and month, newest first.
func (s *AnalyticsService) GetMonthlyGroupStats(ctx context.Context, req *connect.Request[api.GetMonthlyGroupStatsRequest]) (*connect.Response[api.GetMonthlyGroupStatsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpensesByMember(ctx, userID)
	if err != nil {
		return nil, err
	}
	groups, err := s.store.ListGroupsByMember(ctx, userID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(groups))
	for _, g := range groups {
		names[g.ID] = g.Name
	}

	resp := &api.GetMonthlyGroupStatsResponse{Stats: []*api.MonthlyGroupStat{}}
	for _, b := range ledger.MonthlyBreakdown(userID, expenses, names) {
		resp.Stats = append(resp.Stats, &api.MonthlyGroupStat{
			GroupID:            b.GroupID,
			GroupName:          b.GroupName,
			Year:               b.Year,
			Month:              int(b.Month),
			TotalGroupSpending: b.TotalGroupSpending,
			TotalMySpending:    b.TotalMySpending,
			Count:              b.Count,
		})
	}
	return connect.NewResponse(resp), nil
}

// GetSpendingPrediction fits a line through the caller's monthly totals and
// projects the next month. The predicted amount is floored at zero but the
// explanation quotes the line's raw value.
func (s *AnalyticsService) GetSpendingPrediction(ctx context.Context, req *connect.Request[api.GetSpendingPredictionRequest]) (*connect.Response[api.GetSpendingPredictionResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpensesByMember(ctx, userID)
	if err != nil {
		return nil, err
	}

	history := ledger.MonthlyHistory(userID, expenses)
	resp := &api.GetSpendingPredictionResponse{History: make([]*api.MonthlySpending, len(history))}
	for i, h := range history {
		resp.History[i] = &api.MonthlySpending{Year: h.Year, Month: int(h.Month), TotalSpent: h.TotalSpent}
	}

	prediction, ok := ledger.PredictNextMonth(history)
	if !ok {
		resp.Message = insufficientHistoryMessage
		return connect.NewResponse(resp), nil
	}

	resp.Prediction = &api.Prediction{
		NextMonthIndex:  prediction.NextMonthIndex,
		PredictedAmount: prediction.PredictedAmount,
		Slope:           prediction.Slope,
		Trend:           string(prediction.Trend),
		Confidence:      prediction.Confidence,
		Explanation: fmt.Sprintf(
			"Based on your spending trend (slope: %.2f), we predict next month's spending to be around %.0f.",
			prediction.Slope, math.Round(prediction.Projected),
		),
	}
	return connect.NewResponse(resp), nil
}
