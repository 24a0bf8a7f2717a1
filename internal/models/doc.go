// Package models defines the core domain records for Tripledger.
//
// # Records
//
//   - Trip: a shared trip with a single currency and an optional budget
//   - Person: a member of a trip's roster
//   - Expense: a payment made by one person on behalf of participants
//   - Settlement: a real money transfer between two people to clear debts
//   - TripSnapshot: the fully materialized inputs the ledger engine reads
//
// All records are immutable value types from the engine's point of view:
// the engine only reads snapshots and returns newly computed derived values
// (balances, settlement plans, report rows). Creation, editing and deletion
// happen in the storage and service layers.
//
// # Design Principles
//
//  1. Avoid circular references: relationships use ID strings, not pointers
//  2. Amounts are money.Money (integer cents), never raw floats
//  3. Optional fields are pointers (Budget, StartDate, EndDate) so absence
//     is distinguishable from zero
package models
