package models

// State is a step of the orchestration state machine.
type State string

const (
	StateResolving State = "resolving"
	StateDeciding  State = "deciding"
	StateExecuting State = "executing"
	StateDone      State = "done"
	StateFailed    State = "failed"
)

// Outcome summarises one orchestration. On failure it still reports what was
// observed to complete, since branches are never rolled back.
type Outcome struct {
	State            State
	Participant      *Participant
	ParticipantLabel string
	AssetLabels      []string
	CheckedIn        bool
	TeamIssued       bool

	// Observed is the remote state the decision was taken on. TeamAssetsIssued
	// is only read when the participant was not yet checked in.
	Observed CheckInState
}
