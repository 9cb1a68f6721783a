package recorder

import "time"

// RunEvent describes one completed session. It never carries prices or
// instrument attributes.
type RunEvent struct {
	At        time.Time
	Symbols   []string // as validated, in input order
	Start     time.Time
	End       time.Time
	Plotted   []string
	Dropped   []string
	ChartPath string
}

// Recorder keeps a journal of sessions.
type Recorder interface {
	RecordRun(evt *RunEvent) error
	Close() error
}
