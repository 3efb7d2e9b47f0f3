package engine

// State is the phase an engine run is in. A run moves
// Parsing -> RoundExecuting -> BatchResolving -> Applying and back to
// RoundExecuting until it ends in Done or Aborted.
type State uint8

const (
	StateParsing State = iota
	StateRoundExecuting
	StateBatchResolving
	StateApplying
	StateDone
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateParsing:
		return "parsing"
	case StateRoundExecuting:
		return "round-executing"
	case StateBatchResolving:
		return "batch-resolving"
	case StateApplying:
		return "applying"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
