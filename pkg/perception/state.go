package perception

import "encoding/json"

// State is the controller's operating mode. The emergency latch is
// tracked separately; it is orthogonal to the state and survives state
// transitions until an explicit reset.
type State int

const (
	// Idle means no scanning and no voice interaction.
	Idle State = iota

	// Scanning means periodic frame analysis cycles are scheduled.
	Scanning

	// Listening means a voice recording session is open.
	Listening

	// ProcessingQuery means a finalized recording is being transcribed
	// and answered. Every exit path returns to Idle.
	ProcessingQuery
)

// String returns the wire/log name of the state.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Scanning:
		return "scanning"
	case Listening:
		return "listening"
	case ProcessingQuery:
		return "processing_query"
	default:
		return "unknown"
	}
}

// MarshalJSON emits the wire name so overlay clients see "scanning",
// not an enum ordinal.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}
