package workflow

import (
	"time"

	"shipit/internal/record"
	"shipit/internal/stageexec"
)

// State is where a folder ended up after one pass.
type State string

const (
	StatePending         State = "pending"
	StatePartiallyDone   State = "partially_done"
	StateComplete        State = "complete"
	StateRelocated       State = "relocated"
	StateErroredRetained State = "errored_retained"
)

// FolderReport describes one folder's pass.
type FolderReport struct {
	Folder      string
	Path        string
	Identity    string
	State       State
	Outcomes    []stageexec.Outcome
	Pending     []record.Stage
	Destination string
	Err         error
}

// Summary is the result of one batch.
type Summary struct {
	RunID    string
	Root     string
	DryRun   bool
	Started  time.Time
	Finished time.Time
	Folders  []FolderReport
}

// Count returns how many folders ended in state.
func (s Summary) Count(state State) int {
	n := 0
	for _, folder := range s.Folders {
		if folder.State == state {
			n++
		}
	}
	return n
}

// stateFor derives the resting state of a folder from its record.
func stateFor(rec record.ProjectRecord) State {
	switch len(rec.Pending()) {
	case 0:
		return StateComplete
	case len(record.Stages):
		return StatePending
	default:
		return StatePartiallyDone
	}
}
