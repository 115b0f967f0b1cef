// Package services implements the core capsule operations: creation, the
// time-gate view decision and the delivery sweep.
package services

import (
	"time"

	"github.com/echi/timecapsule/internal/server/models"
)

// GateOutcome is the time gate's decision for one capsule view.
type GateOutcome int

const (
	// GateLocked means the delivery date has not arrived yet; only the
	// date itself may be shown.
	GateLocked GateOutcome = iota
	// GateRevealed means the capsule content may be rendered.
	GateRevealed
)

// ViewResult carries the gate decision. When locked it holds only the
// delivery date: message and image URLs are withheld here, not left for the
// caller to hide.
type ViewResult struct {
	Outcome      GateOutcome
	DeliveryDate time.Time
	Capsule      *models.Capsule
}

// Evaluate decides whether a capsule may be revealed at the given instant.
// The comparison is calendar-date only in loc: a capsule due tomorrow
// unlocks at the start of that day, and time-of-day never matters. Pure and
// side-effect-free, safe to call on every view request.
func Evaluate(c *models.Capsule, now time.Time, loc *time.Location) ViewResult {
	due := dateOnly(c.DeliveryDate)
	if dateOnly(now.In(loc)).Before(due) {
		return ViewResult{Outcome: GateLocked, DeliveryDate: due}
	}
	return ViewResult{Outcome: GateRevealed, DeliveryDate: due, Capsule: c}
}

// dateOnly strips the time-of-day and zone offset, keeping the calendar day
// as observed in t's location.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
