// Package models defines the core domain models for splitroom.
//
// # Models
//
//   - Room: a shared bill-splitting session identified by a short code
//   - Participant: an identity (registered or guest) taking part in a room
//   - TaxProfile: a named percentage tax rule, optionally global and/or double
//   - BillItem: one billable line with a price, quantity and claiming participants
//   - User: a registered or guest identity
//   - ReceiptDraft: a reviewable, not-yet-persisted receipt scan
//
// # Design Principles
//
// 1. **Snapshots, not handles**: the calculation core receives a Room and its
// items by value and never writes back.
// 2. **Avoid circular references**: relationships use ID strings instead of pointers.
// 3. **Explicit optionals**: fields that may be absent (TaxProfileID, PhotoURL,
// ExpiresAt) are pointers, and every consumer spells out the nil branch.
package models
