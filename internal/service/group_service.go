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
	"github.com/mmynk/paysplit/internal/models"
	"github.com/mmynk/paysplit/internal/notify"
	"github.com/mmynk/paysplit/internal/realtime"
	"github.com/mmynk/paysplit/internal/storage"
	"github.com/mmynk/paysplit/pkg/api"
	"github.com/mmynk/paysplit/pkg/api/apiconnect"
)

// GroupService implements the Connect GroupService
type GroupService struct {
	apiconnect.UnimplementedGroupServiceHandler
	store     storage.Store
	publisher realtime.Publisher
	notifier  notify.Notifier
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store, publisher realtime.Publisher, notifier notify.Notifier) *GroupService {
	return &GroupService{store: store, publisher: publisher, notifier: notifier}
}

// memberGroup loads a group and checks that userID belongs to it.
func (s *GroupService) memberGroup(ctx context.Context, groupID, userID string) (*models.Group, error) {
	if groupID == "" {
		return nil, apperr.Validation("group id is required")
	}
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(userID) {
		return nil, apperr.PermissionDenied("not a member of group %s", groupID)
	}
	return group, nil
}

// view converts groups for callerID, resolving every member in one lookup.
func (s *GroupService) view(ctx context.Context, callerID string, groups ...*models.Group) ([]*api.Group, error) {
	seen := make(map[string]bool)
	var ids []string
	for _, g := range groups {
		for _, m := range g.Members {
			if !seen[m] {
				seen[m] = true
				ids = append(ids, m)
			}
		}
	}

	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*api.Group, len(groups))
	for i, g := range groups {
		out[i] = toAPIGroup(g, users, callerID)
	}
	return out, nil
}

func groupEvent(eventType, groupID string) realtime.Event {
	return realtime.Event{Type: eventType, Payload: map[string]string{"groupId": groupID}}
}

// CreateGroup creates a new group with the caller as its only member.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, apperr.Validation("group name is required")
	}

	slog.Info("CreateGroup request received", "name", name, "user_id", userID)

	group := &models.Group{
		Name:        name,
		Description: strings.TrimSpace(req.Msg.Description),
		Members:     []string{userID},
		CreatedBy:   userID,
		Expenses:    []models.Expense{},
	}

	// Save to storage (generates ID and CreatedAt)
	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, err
	}

	views, err := s.view(ctx, userID, group)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(userID, groupEvent(realtime.EventGroupUpdated, group.ID))

	slog.Info("Group created", "group_id", group.ID)
	return connect.NewResponse(&api.CreateGroupResponse{Group: views[0]}), nil
}

// ListGroups returns the caller's groups with their balance in each.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := s.store.ListGroupsByMember(ctx, userID)
	if err != nil {
		return nil, err
	}

	views, err := s.view(ctx, userID, groups...)
	if err != nil {
		return nil, err
	}

	slog.Info("ListGroups successful", "user_id", userID, "count", len(groups))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: views}), nil
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	group, err := s.memberGroup(ctx, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}

	views, err := s.view(ctx, userID, group)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.GetGroupResponse{Group: views[0]}), nil
}

// AddMember adds an existing user, found by email, to the group.
// Only the group's creator may add members.
func (s *GroupService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	identity, err := callerIdentity(ctx)
	if err != nil {
		return nil, err
	}

	email := strings.TrimSpace(req.Msg.Email)
	if req.Msg.GroupID == "" || email == "" {
		return nil, apperr.Validation("group id and email are required")
	}

	group, err := s.store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	if group.CreatedBy != identity.UserID {
		return nil, apperr.PermissionDenied("only the group creator can add members")
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if group.HasMember(user.ID) {
		return nil, fmt.Errorf("%w: user is already in the group", apperr.ErrAlreadyExists)
	}

	if err := s.store.AddGroupMember(ctx, group.ID, user.ID); err != nil {
		return nil, err
	}
	group.Members = append(group.Members, user.ID)

	slog.Info("Member added", "group_id", group.ID, "member_id", user.ID, "by", identity.UserID)

	realtime.PublishAll(s.publisher, group.Members, groupEvent(realtime.EventGroupUpdated, group.ID))
	s.notifier.Notify(user.ID,
		fmt.Sprintf("You were added to group %q by %s", group.Name, identity.Username),
		map[string]any{"type": notify.TypeGroupInvite, "groupId": group.ID},
	)

	views, err := s.view(ctx, identity.UserID, group)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.AddMemberResponse{Group: views[0]}), nil
}

// AddExpense records an expense paid by the caller.
// The split is stored as given; it is not checked against the amount.
func (s *GroupService) AddExpense(ctx context.Context, req *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	description := strings.TrimSpace(req.Msg.Description)
	if description == "" || !req.Msg.Amount.IsPositive() {
		return nil, apperr.Validation("description and a positive amount are required")
	}

	group, err := s.memberGroup(ctx, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}

	split := make(map[string]decimal.Decimal, len(req.Msg.SplitDetails))
	for member, owed := range req.Msg.SplitDetails {
		if !group.HasMember(member) {
			return nil, apperr.Validation("split member %s is not in the group", member)
		}
		if owed.IsNegative() {
			return nil, apperr.Validation("split amount for %s must not be negative", member)
		}
		split[member] = owed
	}

	expense := &models.Expense{
		GroupID:      group.ID,
		Description:  description,
		Amount:       req.Msg.Amount,
		PayerID:      userID,
		SplitDetails: split,
		SettledBy:    []string{},
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, err
	}

	slog.Info("Expense added",
		"group_id", group.ID,
		"expense_id", expense.ID,
		"amount", expense.Amount.String(),
		"split_count", len(split),
	)

	realtime.PublishAll(s.publisher, group.Members, groupEvent(realtime.EventRefreshGroups, group.ID))
	for _, member := range group.Members {
		if member == userID {
			continue
		}
		s.notifier.Notify(member,
			fmt.Sprintf("New expense %q added in %s", description, group.Name),
			map[string]any{"type": notify.TypeExpenseAdded, "groupId": group.ID, "amount": expense.Amount.String()},
		)
	}

	return connect.NewResponse(&api.AddExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// GetGroupBalances returns every member's balance and the open debts.
func (s *GroupService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	group, err := s.memberGroup(ctx, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}

	users, err := s.store.GetUsersByIDs(ctx, group.Members)
	if err != nil {
		return nil, err
	}

	resp := &api.GetGroupBalancesResponse{
		Balances: []*api.MemberBalance{},
		Debts:    []*api.Debt{},
	}
	for _, b := range ledger.GroupBalances(group) {
		resp.Balances = append(resp.Balances, &api.MemberBalance{
			MemberID: b.MemberID,
			Username: toAPIMember(b.MemberID, users).Username,
			Balance:  b.Balance,
		})
	}
	for _, d := range ledger.OutstandingDebts(group) {
		resp.Debts = append(resp.Debts, &api.Debt{From: d.From, To: d.To, Amount: d.Amount})
	}

	return connect.NewResponse(resp), nil
}

// DeleteGroup removes a group and all of its expenses. Creator only.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.GroupID == "" {
		return nil, apperr.Validation("group id is required")
	}

	group, err := s.store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	if group.CreatedBy != userID {
		return nil, apperr.PermissionDenied("only the group creator can delete the group")
	}

	if err := s.store.DeleteGroup(ctx, group.ID); err != nil {
		return nil, err
	}

	slog.Info("Group deleted", "group_id", group.ID, "expenses", len(group.Expenses))

	realtime.PublishAll(s.publisher, group.Members, groupEvent(realtime.EventRefreshGroups, group.ID))
	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}
