package history

import "time"

// Run is one batch invocation.
type Run struct {
	ID         string
	Root       string
	DryRun     bool
	StartedAt  time.Time
	FinishedAt time.Time
	Counts     Counts
}

// Counts tallies folders by final state.
type Counts struct {
	Total     int
	Relocated int
	Complete  int
	Partial   int
	Pending   int
	Errored   int
}

// Attempt is one stage invocation against one folder.
type Attempt struct {
	RunID        string
	Folder       string
	Identity     string
	Stage        string
	Status       string
	ErrorKind    string
	ErrorMessage string
	Duration     time.Duration
	CreatedAt    time.Time
}

// FolderResult is the final state of one folder within a run.
type FolderResult struct {
	RunID       string
	Folder      string
	Identity    string
	State       string
	Destination string
	Detail      string
	CreatedAt   time.Time
}
