// Package syncer keeps the local task store and the backend in step.
package syncer

// Status is the sync state shown to the user.
type Status string

const (
	StatusSynced  Status = "synced"
	StatusSyncing Status = "syncing"
	StatusDirty   Status = "dirty"
)

// OutcomeKind is what happened to a remote operation.
type OutcomeKind int

const (
	// OutcomeStarted is reported when a local change has been applied and
	// the remote call is on its way.
	OutcomeStarted OutcomeKind = iota
	OutcomeSucceeded
	OutcomeFailed
	// OutcomeCancelled is reported when the operation was abandoned because
	// its context ended. It is not a failure.
	OutcomeCancelled
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeStarted:
		return "started"
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Outcome is the input to Next.
type Outcome struct {
	Kind OutcomeKind
	// Prev is the status observed when the operation started. It is restored
	// on cancellation.
	Prev Status
	// Dirty is the persisted dirty flag after the outcome was applied. A
	// success that leaves the flag set (another operation failed meanwhile)
	// stays dirty.
	Dirty bool
}

// Next returns the status that follows cur after o.
func Next(cur Status, o Outcome) Status {
	switch o.Kind {
	case OutcomeStarted:
		return StatusSyncing
	case OutcomeSucceeded:
		if o.Dirty {
			return StatusDirty
		}
		return StatusSynced
	case OutcomeFailed:
		return StatusDirty
	case OutcomeCancelled:
		if o.Prev == "" {
			return cur
		}
		return o.Prev
	default:
		return cur
	}
}
