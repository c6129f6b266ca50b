// Package models defines the core domain models for Hisab.
//
// # Models
//
//   - User: a person known to the ledger, identified by an immutable email or mobile
//   - Group: a set of people sharing expenses, owning its Memberships
//   - Membership: one (group, user) row with a role and an active flag
//   - Expense: a payment made by one user, owning its Splits
//   - Split: one participant's owed share of an expense
//   - Settlement: an attestation that one user paid another
//   - Notification: a write-once message for a user, mutable only by its read flag
//
// # Design Principles
//
//  1. **Fixed-point money**: every amount is a decimal.Decimal, never a float
//  2. **Soft deletion**: users, groups, memberships, expenses and settlements are
//     deactivated, never removed, so expense history stays attributable
//  3. **Opaque ids**: every id is a UUID string regardless of the storage engine
//  4. **No shared ownership**: relationships are ID strings, not pointers
package models
