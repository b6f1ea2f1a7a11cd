package queue

// State is a classification workflow state.
type State int

const (
	// Idle: no ledger started.
	Idle State = iota
	// OptionsUnavailable: the current item's taxonomy could not be fetched;
	// Advance retries.
	OptionsUnavailable
	// AwaitingSelection: options are loaded, no label chosen yet.
	AwaitingSelection
	// ReadyToCommit: a label is pending for the current item.
	ReadyToCommit
	// Reclassifying: the queue is exhausted and the ledger is being
	// reclassified; Reclassify retries after a failure.
	Reclassifying
	// Done: the ledger is fully classified.
	Done
)

var stateNames = map[State]string{
	Idle:               "Idle",
	OptionsUnavailable: "OptionsUnavailable",
	AwaitingSelection:  "AwaitingSelection",
	ReadyToCommit:      "ReadyToCommit",
	Reclassifying:      "Reclassifying",
	Done:               "Done",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "Unknown"
}

// transitions lists every legal state change.
var transitions = map[State][]State{
	Idle:               {AwaitingSelection, OptionsUnavailable, Done},
	OptionsUnavailable: {AwaitingSelection, OptionsUnavailable},
	AwaitingSelection:  {ReadyToCommit, AwaitingSelection, OptionsUnavailable},
	ReadyToCommit:      {ReadyToCommit, AwaitingSelection, OptionsUnavailable, Reclassifying},
	Reclassifying:      {Done, Reclassifying},
	Done:               {},
}

// CanTransition reports whether from → to is a legal state change.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
