package rules

import (
	"time"

	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/domain/enums"
	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/domain/model"
)

// Escalation ladder windows. A sweep advances an item at most one tier per
// run, so each tier tracks its own deadline.
const (
	ExtendedDeadlineDays = 3
	FinalDeadlineDays    = 2

	// SubmissionGraceDays is how long past the original deadline evidence is
	// still accepted, regardless of the item's tier.
	SubmissionGraceDays = 5
)

// Warning levels on the ladder.
const (
	WarningLevelNone      = 0
	WarningLevelOverdue   = 1
	WarningLevelSuspended = 2
	WarningLevelBanned    = 3
)

// WarningLevelFor returns the only warning level consistent with a status.
func WarningLevelFor(status enums.ComplianceStatus) int {
	switch status {
	case enums.ComplianceStatusOverdue:
		return WarningLevelOverdue
	case enums.ComplianceStatusWarning:
		return WarningLevelSuspended
	case enums.ComplianceStatusEscalated:
		return WarningLevelBanned
	default:
		return WarningLevelNone
	}
}

// WarningLevelConsistent checks the warning-level/status invariant. A
// mismatch is a data-integrity fault the sweep self-heals before processing.
func WarningLevelConsistent(c model.Compliance) bool {
	return c.WarningLevel == WarningLevelFor(c.Status)
}

// NextTier decides the single escalation step due for an item at the given
// instant, after self-healing. Returns 0 when no step is due.
func NextTier(c model.Compliance, now time.Time) int {
	if c.Status.Terminal() || c.Appealed {
		return 0
	}
	level := c.WarningLevel
	if !WarningLevelConsistent(c) {
		level = WarningLevelNone
	}
	switch level {
	case WarningLevelNone:
		if now.After(c.Deadline) {
			return 1
		}
	case WarningLevelOverdue:
		if c.ExtendedDeadline != nil && now.After(*c.ExtendedDeadline) {
			return 2
		}
	case WarningLevelSuspended:
		if c.FinalDeadline != nil && now.After(*c.FinalDeadline) {
			return 3
		}
	}
	return 0
}

// CanStillSubmit reports whether evidence is still accepted: non-terminal
// status and at most SubmissionGraceDays past the original deadline, even if
// the sweep has not escalated the item yet.
func CanStillSubmit(c model.Compliance, now time.Time) bool {
	if c.Status.Terminal() {
		return false
	}
	cutoff := c.Deadline.AddDate(0, 0, SubmissionGraceDays)
	return !now.After(cutoff)
}

// IsOverdue reports whether the tier-authoritative deadline has passed.
func IsOverdue(c model.Compliance, now time.Time) bool {
	if c.Status.Terminal() {
		return false
	}
	return now.After(c.CurrentDeadline())
}

// DependencySatisfied reports whether a sequential item's prerequisite has
// been approved. Parallel items have no gate.
func DependencySatisfied(c model.Compliance, parent *model.Compliance) bool {
	if c.DependsOn == nil || c.Requirement != enums.RequirementSequential {
		return true
	}
	return parent != nil && parent.Status == enums.ComplianceStatusApproved
}
