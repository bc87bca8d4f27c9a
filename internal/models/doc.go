// Package models defines the core domain models for PaySplit.
//
// # Models
//
//   - User: registered account; its ID is the member identity used everywhere
//   - Group: set of members sharing expenses, founded by one creator
//   - Expense: one payment fronted by a payer and split across members
//   - PaymentOrder: gateway order raised to settle a member's debts
//
// # Design Principles
//
//  1. Relationships use ID strings, never pointers.
//  2. Money is shopspring/decimal; floats only appear in analytics.
//  3. Timestamps are Unix seconds, UTC.
//  4. An Expense's split is a snapshot: it is fixed at creation and only
//     its SettledBy set grows afterwards.
package models
