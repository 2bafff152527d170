package types

import "fmt"

// EventType is the struct name of a Move event emitted by the staking module.
type EventType string

func (e EventType) String() string {
	return string(e)
}

const (
	EventDeposited        EventType = "DepositedEvent"
	EventUnstakeRequested EventType = "UnstakeRequestedEvent"
	EventClaimed          EventType = "ClaimedEvent"
)

// MoveEventType builds the fully qualified event type used by suix_queryEvents,
// e.g. 0xabc::staking::DepositedEvent
func (e EventType) MoveEventType(packageID, module string) string {
	return fmt.Sprintf("%s::%s::%s", packageID, module, e)
}

// EventTypePrefix returns the prefix shared by every event emitted by the given module.
func EventTypePrefix(packageID, module string) string {
	return packageID + "::" + module + "::"
}
