// Package models defines the persisted domain models for SplitRight.
//
// # Models
//
//   - Group: a set of people who share expenses
//   - Expense: a cost paid by one member and split equally among some members
//
// Members are identified by their display name. Expenses reference members by that
// exact string, so renaming a member means rewriting every expense that mentions it
// (see storage.Store.RenameMember).
//
// Balances and settlements are derived on demand by the calculator package and are
// never persisted.
//
// # Design Principles
//
// 1. **Exact amounts**: money is decimal.Decimal, never float64
// 2. **Avoid circular references**: use ID strings instead of pointers for relationships
// 3. **Timestamps**: unix seconds, set by the store when zero
package models
