package conversation

import "github.com/zen-systems/serpcoach/pkg/turn"

// Snapshot is a read-only copy of session state handed to the view layer.
type Snapshot struct {
	Turns          []turn.Turn `json:"turns"`
	PendingInput   string      `json:"pending_input"`
	Busy           bool        `json:"busy"`
	LastError      string      `json:"last_error,omitempty"`
	State          State       `json:"state"`
	ActiveProvider string      `json:"active_provider"`
}

func (s Snapshot) clone() Snapshot {
	s.Turns = turn.CloneAll(s.Turns)
	return s
}
