package execution

// StopReason describes why a run loop stopped.
type StopReason string

const (
	StopCompleted StopReason = "completed" // Ran the full requested step budget
	StopCancelled StopReason = "cancelled" // Context cancelled at a step boundary
	StopCycle     StopReason = "cycle"     // Board state revisited an earlier generation
	StopExtinct   StopReason = "extinct"   // Every cell died
)

// IsValid checks if the reason is one of the known values.
func (s StopReason) IsValid() bool {
	switch s {
	case StopCompleted, StopCancelled, StopCycle, StopExtinct:
		return true
	default:
		return false
	}
}

// Early reports whether the run stopped before exhausting its step budget.
func (s StopReason) Early() bool {
	return s == StopCancelled || s == StopCycle || s == StopExtinct
}

// String implements Stringer interface.
func (s StopReason) String() string {
	return string(s)
}
