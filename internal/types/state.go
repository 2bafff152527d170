package types

// Enum values for Session State
type SessionState string

const (
	SessionStopped SessionState = "STOPPED"
	SessionRunning SessionState = "RUNNING"
)

func (s SessionState) String() string {
	return string(s)
}

// SessionStatus is a point-in-time view of a monitoring session.
type SessionStatus struct {
	ID                string       `json:"id"`
	State             SessionState `json:"state"`
	ProcessedTxCount  int          `json:"processed_tx_count"`
	ThresholdFiat     string       `json:"threshold_fiat,omitempty"`
	PollIntervalMilli int64        `json:"poll_interval_ms,omitempty"`
}

func (s SessionStatus) IsActive() bool {
	return s.State == SessionRunning
}
