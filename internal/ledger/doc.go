// Package ledger derives balances, settlements and spending analytics from
// a group's expenses.
//
// A member's balance is positive when others owe them and negative when
// they owe. Balances only count unsettled shares: once a member appears in
// an expense's SettledBy they stop owing on it, and the payer stops being
// owed their share.
package ledger
