// Package models contains the server-side data structures persisted in the
// database and exchanged between services.
package models

import "time"

// Capsule is a sealed message with optional image attachments and a calendar
// delivery date. All fields except Delivered are immutable after creation.
type Capsule struct {
	ID             string
	Message        string
	RecipientEmail string
	// DeliveryDate is a calendar date; the time-of-day portion is ignored
	// everywhere. The capsule becomes viewable at the start of this day in
	// the service's reference time zone.
	DeliveryDate time.Time
	// Images holds attachment URLs in submission order. Order matters for
	// rendering: the first image gets full-width treatment when the count
	// is odd.
	Images []string
	// Delivered gates the notification email only, never viewability.
	// It is monotonic: once true it never reverts.
	Delivered bool
	CreatedAt time.Time
}

// SweepFailure records one capsule the sweep could not fully process.
type SweepFailure struct {
	CapsuleID string `json:"capsule_id"`
	Reason    string `json:"reason"`
}

// SweepReport aggregates the outcome of one delivery sweep run.
type SweepReport struct {
	// Considered is the number of due, undelivered candidates found.
	Considered int `json:"considered"`
	// Delivered lists ids that were notified and marked delivered.
	Delivered []string `json:"delivered"`
	// Failures lists per-capsule failures; these capsules stay undelivered
	// (or, if only the flag update failed, will be re-notified next run).
	Failures []SweepFailure `json:"failures"`
}
