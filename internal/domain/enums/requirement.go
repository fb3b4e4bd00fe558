package enums

// Requirement controls whether a compliance with a dependency must wait for
// its parent to be approved before it becomes actionable.
type Requirement string

const (
	RequirementSequential Requirement = "sequential"
	RequirementParallel   Requirement = "parallel"
)
