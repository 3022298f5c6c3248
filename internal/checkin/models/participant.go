package models

import "time"

// SearchLimit caps how many candidate rows one identity lookup may return.
const SearchLimit = 5

// Participant is a snapshot of one participant row, held for a single request.
type Participant struct {
	ID          string
	Name        string
	Phone       string
	School      string
	Team        string
	TeamOrdinal int
	CheckedInAt *time.Time
}

// HasCheckedIn reports whether the participant row carries a check-in timestamp.
func (p *Participant) HasCheckedIn() bool {
	return p.CheckedInAt != nil
}

// HasTeam reports whether the participant is assigned to a team.
func (p *Participant) HasTeam() bool {
	return p.Team != ""
}

// Team is a snapshot of one team row. Looked up by ordinal on every request.
type Team struct {
	RecordID       string
	Ordinal        int
	Name           string
	AssetsIssuedAt *time.Time
}

// AssetsIssued reports whether the team's physical assets were already handed out.
func (t *Team) AssetsIssued() bool {
	return t.AssetsIssuedAt != nil
}

// CheckInState is derived from remote state on every request; never stored.
type CheckInState struct {
	ParticipantCheckedIn bool
	TeamAssetsIssued     bool
}
