package notifier

import "time"

// Result classifies what happened to one recipient of one triggering event.
type Result string

const (
	// ResultSent means the notification was handed to the push platform.
	ResultSent Result = "sent"
	// ResultSuppressed means the recipient was actively viewing the chat
	// room the message belongs to.
	ResultSuppressed Result = "suppressed"
	// ResultNoToken means the recipient has no registered device token.
	ResultNoToken Result = "no_token"
	// ResultFailed means a fetch or send failed; the failure was logged
	// and swallowed.
	ResultFailed Result = "failed"
)

// Outcome is the per-recipient record of one fan-out.
type Outcome struct {
	UID    string `json:"uid"`
	Result Result `json:"result"`
	Error  string `json:"error,omitempty"`
}

// Summary describes one handler invocation. It is returned to the trigger
// surface and published on the operational event stream; it is never
// persisted.
type Summary struct {
	ID        string    `json:"id"`
	Event     string    `json:"event"`
	Ref       string    `json:"ref,omitempty"`
	Outcomes  []Outcome `json:"outcomes,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Sent reports how many recipients were handed to the push platform.
func (s *Summary) Sent() int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Result == ResultSent {
			n++
		}
	}
	return n
}
