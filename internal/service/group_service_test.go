package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/paysplit/internal/notify"
	"github.com/mmynk/paysplit/internal/realtime"
	"github.com/mmynk/paysplit/pkg/api"
)

// tripGroup creates a group owned by a with b and c added as members.
func tripGroup(t *testing.T, env *testEnv, a, b, c session) *api.Group {
	t.Helper()
	ctx := context.Background()

	created, err := env.groups.CreateGroup(ctx, as(a, &api.CreateGroupRequest{Name: "Goa Trip"}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	group := created.Msg.Group
	for _, s := range []session{b, c} {
		resp, err := env.groups.AddMember(ctx, as(a, &api.AddMemberRequest{GroupID: group.ID, Email: s.email}))
		if err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}
		group = resp.Msg.Group
	}
	return group
}

func addExpense(t *testing.T, env *testEnv, payer session, groupID, amount string, split map[string]string) *api.Expense {
	t.Helper()
	details := make(map[string]decimal.Decimal, len(split))
	for member, owed := range split {
		details[member] = d(owed)
	}
	resp, err := env.groups.AddExpense(context.Background(), as(payer, &api.AddExpenseRequest{
		GroupID:      groupID,
		Description:  "Dinner",
		Amount:       d(amount),
		SplitDetails: details,
	}))
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}
	return resp.Msg.Expense
}

func myBalance(t *testing.T, env *testEnv, s session, groupID string) decimal.Decimal {
	t.Helper()
	resp, err := env.groups.GetGroup(context.Background(), as(s, &api.GetGroupRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	return resp.Msg.Group.MyBalance
}

func TestCreateGroup(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	_, err := env.groups.CreateGroup(ctx, as(alice, &api.CreateGroupRequest{Name: "   "}))
	assertCode(t, err, connect.CodeInvalidArgument)

	resp, err := env.groups.CreateGroup(ctx, as(alice, &api.CreateGroupRequest{Name: "Roommates", Description: "Flat 4B"}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	group := resp.Msg.Group
	if group.ID == "" {
		t.Error("expected non-empty group ID")
	}
	if group.Name != "Roommates" || group.Description != "Flat 4B" || group.CreatedBy != alice.id {
		t.Errorf("unexpected group: %+v", group)
	}
	if len(group.Members) != 1 || group.Members[0].ID != alice.id || group.Members[0].Username != "alice" {
		t.Errorf("expected creator as only member, got %+v", group.Members)
	}
	assertDecimal(t, "balance", group.MyBalance, "0")

	if env.publisher.count(alice.id, realtime.EventGroupUpdated) != 1 {
		t.Error("expected group:updated event for the creator")
	}
}

func TestAddMember(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	carol := env.register(t, "carol")

	created, err := env.groups.CreateGroup(ctx, as(alice, &api.CreateGroupRequest{Name: "Goa Trip"}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	groupID := created.Msg.Group.ID

	resp, err := env.groups.AddMember(ctx, as(alice, &api.AddMemberRequest{GroupID: groupID, Email: bob.email}))
	if err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	if len(resp.Msg.Group.Members) != 2 || resp.Msg.Group.Members[1].ID != bob.id {
		t.Errorf("expected bob appended, got %+v", resp.Msg.Group.Members)
	}

	invites := env.notifier.ofType(notify.TypeGroupInvite)
	if len(invites) != 1 || invites[0].memberID != bob.id {
		t.Fatalf("expected one invite for bob, got %+v", invites)
	}
	if invites[0].message != `You were added to group "Goa Trip" by alice` {
		t.Errorf("unexpected invite message: %q", invites[0].message)
	}
	if env.publisher.count(bob.id, realtime.EventGroupUpdated) != 1 {
		t.Error("expected group:updated event for the new member")
	}

	tests := []struct {
		name   string
		caller session
		req    *api.AddMemberRequest
		want   connect.Code
	}{
		{"non-creator", bob, &api.AddMemberRequest{GroupID: groupID, Email: carol.email}, connect.CodePermissionDenied},
		{"unknown email", alice, &api.AddMemberRequest{GroupID: groupID, Email: "ghost@example.com"}, connect.CodeNotFound},
		{"already member", alice, &api.AddMemberRequest{GroupID: groupID, Email: bob.email}, connect.CodeAlreadyExists},
		{"unknown group", alice, &api.AddMemberRequest{GroupID: "missing", Email: carol.email}, connect.CodeNotFound},
		{"missing email", alice, &api.AddMemberRequest{GroupID: groupID}, connect.CodeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.groups.AddMember(ctx, as(tt.caller, tt.req))
			assertCode(t, err, tt.want)
		})
	}
}

func TestAddExpenseAndBalances(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	a := env.register(t, "alice")
	b := env.register(t, "bob")
	c := env.register(t, "carol")
	group := tripGroup(t, env, a, b, c)

	expense := addExpense(t, env, a, group.ID, "300", map[string]string{a.id: "0", b.id: "100", c.id: "100"})
	if expense.PayerID != a.id || len(expense.SettledBy) != 0 {
		t.Errorf("unexpected expense: %+v", expense)
	}

	assertDecimal(t, "alice", myBalance(t, env, a, group.ID), "200")
	assertDecimal(t, "bob", myBalance(t, env, b, group.ID), "-100")
	assertDecimal(t, "carol", myBalance(t, env, c, group.ID), "-100")

	t.Run("list groups carries balance", func(t *testing.T) {
		resp, err := env.groups.ListGroups(ctx, as(b, &api.ListGroupsRequest{}))
		if err != nil {
			t.Fatalf("ListGroups failed: %v", err)
		}
		if len(resp.Msg.Groups) != 1 {
			t.Fatalf("expected 1 group, got %d", len(resp.Msg.Groups))
		}
		assertDecimal(t, "bob", resp.Msg.Groups[0].MyBalance, "-100")
		if len(resp.Msg.Groups[0].Expenses) != 1 {
			t.Errorf("expected expenses to be included")
		}
	})

	t.Run("group balances and debts", func(t *testing.T) {
		resp, err := env.groups.GetGroupBalances(ctx, as(c, &api.GetGroupBalancesRequest{GroupID: group.ID}))
		if err != nil {
			t.Fatalf("GetGroupBalances failed: %v", err)
		}
		want := map[string]string{a.id: "200", b.id: "-100", c.id: "-100"}
		if len(resp.Msg.Balances) != 3 {
			t.Fatalf("expected 3 balances, got %d", len(resp.Msg.Balances))
		}
		for _, bal := range resp.Msg.Balances {
			assertDecimal(t, bal.Username, bal.Balance, want[bal.MemberID])
		}
		if len(resp.Msg.Debts) != 2 {
			t.Fatalf("expected 2 debts, got %+v", resp.Msg.Debts)
		}
		for _, debt := range resp.Msg.Debts {
			if debt.To != a.id {
				t.Errorf("expected debts owed to alice, got %+v", debt)
			}
			assertDecimal(t, "debt", debt.Amount, "100")
		}
	})

	t.Run("notifies everyone but the payer", func(t *testing.T) {
		added := env.notifier.ofType(notify.TypeExpenseAdded)
		if len(added) != 2 {
			t.Fatalf("expected 2 notifications, got %+v", added)
		}
		for _, n := range added {
			if n.memberID == a.id {
				t.Error("payer should not be notified")
			}
		}
		for _, s := range []session{a, b, c} {
			if env.publisher.count(s.id, realtime.EventRefreshGroups) != 1 {
				t.Errorf("expected refresh event for %s", s.id)
			}
		}
	})

	t.Run("validation", func(t *testing.T) {
		outsider := env.register(t, "dave")

		tests := []struct {
			name   string
			caller session
			req    *api.AddExpenseRequest
			want   connect.Code
		}{
			{"zero amount", a, &api.AddExpenseRequest{GroupID: group.ID, Description: "x", Amount: d("0")}, connect.CodeInvalidArgument},
			{"missing description", a, &api.AddExpenseRequest{GroupID: group.ID, Amount: d("10")}, connect.CodeInvalidArgument},
			{"split outside group", a, &api.AddExpenseRequest{GroupID: group.ID, Description: "x", Amount: d("10"),
				SplitDetails: map[string]decimal.Decimal{outsider.id: d("10")}}, connect.CodeInvalidArgument},
			{"negative share", a, &api.AddExpenseRequest{GroupID: group.ID, Description: "x", Amount: d("10"),
				SplitDetails: map[string]decimal.Decimal{b.id: d("-5")}}, connect.CodeInvalidArgument},
			{"non-member caller", outsider, &api.AddExpenseRequest{GroupID: group.ID, Description: "x", Amount: d("10")}, connect.CodePermissionDenied},
			{"unknown group", a, &api.AddExpenseRequest{GroupID: "missing", Description: "x", Amount: d("10")}, connect.CodeNotFound},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := env.groups.AddExpense(ctx, as(tt.caller, tt.req))
				assertCode(t, err, tt.want)
			})
		}
	})

	t.Run("split sum is not checked", func(t *testing.T) {
		addExpense(t, env, b, group.ID, "50", map[string]string{c.id: "80"})
		assertDecimal(t, "carol", myBalance(t, env, c, group.ID), "-180")
	})
}

func TestGetGroup_MembersOnly(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	mallory := env.register(t, "mallory")

	created, err := env.groups.CreateGroup(ctx, as(alice, &api.CreateGroupRequest{Name: "Private"}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	_, err = env.groups.GetGroup(ctx, as(mallory, &api.GetGroupRequest{GroupID: created.Msg.Group.ID}))
	assertCode(t, err, connect.CodePermissionDenied)

	_, err = env.groups.GetGroupBalances(ctx, as(mallory, &api.GetGroupBalancesRequest{GroupID: created.Msg.Group.ID}))
	assertCode(t, err, connect.CodePermissionDenied)

	_, err = env.groups.GetGroup(ctx, as(alice, &api.GetGroupRequest{GroupID: "missing"}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestDeleteGroup(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	a := env.register(t, "alice")
	b := env.register(t, "bob")
	c := env.register(t, "carol")
	group := tripGroup(t, env, a, b, c)
	addExpense(t, env, a, group.ID, "90", map[string]string{b.id: "45", c.id: "45"})

	_, err := env.groups.DeleteGroup(ctx, as(b, &api.DeleteGroupRequest{GroupID: group.ID}))
	assertCode(t, err, connect.CodePermissionDenied)

	if _, err := env.groups.DeleteGroup(ctx, as(a, &api.DeleteGroupRequest{GroupID: group.ID})); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}

	_, err = env.groups.GetGroup(ctx, as(a, &api.GetGroupRequest{GroupID: group.ID}))
	assertCode(t, err, connect.CodeNotFound)

	expenses, err := env.store.ListExpensesByGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListExpensesByGroup failed: %v", err)
	}
	if len(expenses) != 0 {
		t.Errorf("expected expenses to be deleted with the group, got %d", len(expenses))
	}

	resp, err := env.groups.ListGroups(ctx, as(b, &api.ListGroupsRequest{}))
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(resp.Msg.Groups) != 0 {
		t.Errorf("expected no groups left for bob, got %d", len(resp.Msg.Groups))
	}
}
