package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/paysplit/internal/apperr"
	"github.com/mmynk/paysplit/internal/ledger"
	"github.com/mmynk/paysplit/internal/metrics"
	"github.com/mmynk/paysplit/internal/models"
	"github.com/mmynk/paysplit/internal/notify"
	"github.com/mmynk/paysplit/internal/payment"
	"github.com/mmynk/paysplit/internal/realtime"
	"github.com/mmynk/paysplit/internal/storage"
	"github.com/mmynk/paysplit/pkg/api"
	"github.com/mmynk/paysplit/pkg/api/apiconnect"
)

// PaymentService creates gateway orders and settles debts once a payment
// is verified.
type PaymentService struct {
	apiconnect.UnimplementedPaymentServiceHandler
	store     storage.Store
	gateway   payment.Gateway
	publisher realtime.Publisher
	notifier  notify.Notifier
	currency  string
}

// NewPaymentService creates a new PaymentService. An empty currency means INR.
func NewPaymentService(store storage.Store, gateway payment.Gateway, publisher realtime.Publisher, notifier notify.Notifier, currency string) *PaymentService {
	if currency == "" {
		currency = payment.DefaultCurrency
	}
	return &PaymentService{
		store:     store,
		gateway:   gateway,
		publisher: publisher,
		notifier:  notifier,
		currency:  currency,
	}
}

// CreateOrder opens a gateway order for the caller.
func (s *PaymentService) CreateOrder(ctx context.Context, req *connect.Request[api.CreateOrderRequest]) (*connect.Response[api.CreateOrderResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if !req.Msg.Amount.IsPositive() {
		return nil, apperr.Validation("amount is required")
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Msg.Currency))
	if currency == "" {
		currency = s.currency
	}

	order, err := s.gateway.CreateOrder(ctx, req.Msg.Amount, currency, req.Msg.Receipt)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway order: %w", err)
	}

	record := &models.PaymentOrder{
		ID:       order.ID,
		UserID:   userID,
		Amount:   order.Amount,
		Currency: order.Currency,
		Receipt:  order.Receipt,
		Status:   models.PaymentOrderCreated,
	}
	if err := s.store.CreatePaymentOrder(ctx, record); err != nil {
		return nil, err
	}

	slog.Info("Payment order created",
		"order_id", order.ID,
		"user_id", userID,
		"amount", order.Amount.String(),
		"currency", order.Currency,
	)

	return connect.NewResponse(&api.CreateOrderResponse{
		Order: &api.PaymentOrder{
			ID:       record.ID,
			Amount:   record.Amount,
			Currency: record.Currency,
			Receipt:  record.Receipt,
			Status:   string(record.Status),
		},
		KeyID: s.gateway.KeyID(),
	}), nil
}

// VerifyPayment checks the gateway signature and, when a group is given,
// settles every expense the caller still owes in it.
//
// A bad signature changes nothing, and an order can be verified only once. Settlement is not all-or-nothing: the
// response counts the expenses that were settled even if others failed.
func (s *PaymentService) VerifyPayment(ctx context.Context, req *connect.Request[api.VerifyPaymentRequest]) (*connect.Response[api.VerifyPaymentResponse], error) {
	identity, err := callerIdentity(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	if msg.OrderID == "" || msg.PaymentID == "" || msg.Signature == "" {
		return nil, apperr.Validation("order id, payment id and signature are required")
	}

	if !s.gateway.Verify(msg.OrderID, msg.PaymentID, msg.Signature) {
		slog.Warn("Payment signature rejected", "order_id", msg.OrderID, "user_id", identity.UserID)
		return nil, apperr.ErrInvalidSignature
	}

	order, err := s.store.GetPaymentOrder(ctx, msg.OrderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != identity.UserID {
		return nil, apperr.PermissionDenied("order %s belongs to another user", msg.OrderID)
	}
	if order.Status != models.PaymentOrderCreated {
		slog.Warn("Payment order replay rejected", "order_id", msg.OrderID, "user_id", identity.UserID)
		return nil, fmt.Errorf("%w: payment order %s is already verified", apperr.ErrAlreadyExists, msg.OrderID)
	}

	var group *models.Group
	if msg.GroupID != "" {
		group, err = s.store.GetGroup(ctx, msg.GroupID)
		if err != nil {
			return nil, err
		}
		if !group.HasMember(identity.UserID) {
			return nil, apperr.PermissionDenied("not a member of group %s", msg.GroupID)
		}
	}

	if err := s.store.MarkPaymentOrderVerified(ctx, msg.OrderID, msg.PaymentID, msg.GroupID); err != nil {
		return nil, err
	}

	resp := &api.VerifyPaymentResponse{Verified: true}
	if group == nil {
		slog.Info("Payment verified", "order_id", msg.OrderID, "user_id", identity.UserID)
		return connect.NewResponse(resp), nil
	}

	result, err := ledger.SettleDebt(ctx, s.store, group.ID, identity.UserID)
	metrics.ExpensesSettled.Add(float64(result.Settled))
	if err != nil {
		metrics.SettlementFailures.Inc()
		slog.Error("Settlement partially failed",
			"group_id", group.ID,
			"user_id", identity.UserID,
			"settled", result.Settled,
			"error", err,
		)
		if result.Settled == 0 {
			return nil, err
		}
	}
	resp.Settled = result.Settled

	slog.Info("Payment verified and debts settled",
		"order_id", msg.OrderID,
		"group_id", group.ID,
		"user_id", identity.UserID,
		"settled", result.Settled,
	)

	if result.Settled > 0 {
		s.announceSettlement(group, identity.UserID, identity.Username, result.Expenses)
	}
	return connect.NewResponse(resp), nil
}

// announceSettlement tells each payer how much they received and asks
// every member to refresh.
func (s *PaymentService) announceSettlement(group *models.Group, debtorID, debtorName string, settled []models.Expense) {
	received := make(map[string]decimal.Decimal)
	var payees []string
	for _, e := range settled {
		share, _ := e.ShareOf(debtorID)
		if _, ok := received[e.PayerID]; !ok {
			payees = append(payees, e.PayerID)
		}
		received[e.PayerID] = received[e.PayerID].Add(share)
	}

	for _, payee := range payees {
		s.notifier.Notify(payee,
			fmt.Sprintf("%s settled %s with you in %s", debtorName, received[payee].StringFixed(2), group.Name),
			map[string]any{"type": notify.TypePaymentReceived, "groupId": group.ID, "amount": received[payee].String()},
		)
	}
	realtime.PublishAll(s.publisher, group.Members, groupEvent(realtime.EventRefreshGroups, group.ID))
}
