package api

import "github.com/shopspring/decimal"

// Member is a group member as shown to other members.
type Member struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type Expense struct {
	ID           string                     `json:"id"`
	GroupID      string                     `json:"groupId"`
	Description  string                     `json:"description"`
	Amount       decimal.Decimal            `json:"amount"`
	PayerID      string                     `json:"payerId"`
	SplitDetails map[string]decimal.Decimal `json:"splitDetails"`
	SettledBy    []string                   `json:"settledBy"`
	CreatedAt    int64                      `json:"createdAt"`
}

// Group carries the caller's own balance in the group.
type Group struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Members     []*Member       `json:"members"`
	Expenses    []*Expense      `json:"expenses"`
	CreatedBy   string          `json:"createdBy"`
	CreatedAt   int64           `json:"createdAt"`
	MyBalance   decimal.Decimal `json:"myBalance"`
}

type CreateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

// AddMemberRequest invites an existing user, identified by email.
type AddMemberRequest struct {
	GroupID string `json:"groupId"`
	Email   string `json:"email"`
}

type AddMemberResponse struct {
	Group *Group `json:"group"`
}

// AddExpenseRequest records an expense paid by the caller.
type AddExpenseRequest struct {
	GroupID      string                     `json:"groupId"`
	Description  string                     `json:"description"`
	Amount       decimal.Decimal            `json:"amount"`
	SplitDetails map[string]decimal.Decimal `json:"splitDetails"`
}

type AddExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type GetGroupBalancesRequest struct {
	GroupID string `json:"groupId"`
}

type MemberBalance struct {
	MemberID string          `json:"memberId"`
	Username string          `json:"username"`
	Balance  decimal.Decimal `json:"balance"`
}

// Debt is an unsettled amount From owes To.
type Debt struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

type GetGroupBalancesResponse struct {
	Balances []*MemberBalance `json:"balances"`
	Debts    []*Debt          `json:"debts"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"groupId"`
}

type DeleteGroupResponse struct{}
