package concierge

// State is the position of an episode in the reasoning state machine.
type State string

const (
	StateThinking State = "thinking"
	StateToolCall State = "tool_call"
	StateFinal    State = "final"
	StateAborted  State = "aborted"
)

// Terminal reports whether no further transitions follow s.
func (s State) Terminal() bool {
	return s == StateFinal || s == StateAborted
}

// Outcome is the result of one episode. Answer is set only in StateFinal;
// Err is set only in StateAborted.
type Outcome struct {
	State  State
	Answer string
	Err    *Error
	Turns  int
	Usage  Usage
}

// Failed reports whether the episode ended without an answer.
func (o Outcome) Failed() bool { return o.State == StateAborted }
