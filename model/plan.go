package model

import "fmt"

type Mode int

const (
	Full Mode = iota
	Incremental
)

func (m Mode) String() string {
	switch m {
	case Full:
		return "full"
	case Incremental:
		return "incremental"
	default:
		return "invalid"
	}
}

// Plan is the decision for one replication run. Mode is Incremental iff
// Base is non-empty and present on both ends; RenameRequired marks a
// pre-existing destination that must be set aside before a full receive.
type Plan struct {
	Mode           Mode
	Base           SnapshotName
	RenameRequired bool
	NewSnapshot    SnapshotName
}

func (p Plan) String() string {
	switch {
	case p.Mode == Incremental:
		return fmt.Sprintf("incremental from @%s to @%s", p.Base, p.NewSnapshot)
	case p.RenameRequired:
		return fmt.Sprintf("full to @%s, setting aside existing destination", p.NewSnapshot)
	default:
		return fmt.Sprintf("full to @%s", p.NewSnapshot)
	}
}

// NewPlan picks the replication mode from the two inventories. The newest
// shared snapshot becomes the incremental base; with no shared history the
// transfer is full, and an unrelated pre-existing destination is preserved
// by rename rather than overwritten.
func NewPlan(local, remote *Set[SnapshotName], destExists bool, next SnapshotName) Plan {
	shared := local.Intersection(remote)
	if base, ok := shared.Max(); ok {
		return Plan{
			Mode:        Incremental,
			Base:        base,
			NewSnapshot: next,
		}
	}
	return Plan{
		Mode:           Full,
		RenameRequired: destExists,
		NewSnapshot:    next,
	}
}
