package models

import (
	"fmt"

	"github.com/google/uuid"
)

// Label templates.
const (
	TemplateParticipant = "label"
	TemplateAsset       = "asset"
)

// LabelJob is one rendering request. Ephemeral: created per request, never persisted.
type LabelJob struct {
	ID       uuid.UUID
	Template string
	Payload  map[string]any
	// FileName is relative to the pipeline's output directory.
	FileName string
}

// ParticipantLabelFile is the content-addressed file name of a participant label.
func ParticipantLabelFile(participantID string) string {
	return fmt.Sprintf("participant-%s.pdf", participantID)
}

// AssetLabelFile is the content-addressed file name of a team asset label.
func AssetLabelFile(teamOrdinal, assetOrdinal int) string {
	return fmt.Sprintf("team-%d-asset-%d.pdf", teamOrdinal, assetOrdinal)
}

// NewParticipantLabelJob builds the participant label payload.
func NewParticipantLabelJob(p *Participant) LabelJob {
	return LabelJob{
		ID:       uuid.New(),
		Template: TemplateParticipant,
		Payload: map[string]any{
			"id":           p.ID,
			"name":         p.Name,
			"school":       p.School,
			"group":        p.Team,
			"team_ordinal": p.TeamOrdinal,
		},
		FileName: ParticipantLabelFile(p.ID),
	}
}

// NewAssetLabelJob builds the label payload for one asset of a team.
func NewAssetLabelJob(t *Team, a Asset) LabelJob {
	return LabelJob{
		ID:       uuid.New(),
		Template: TemplateAsset,
		Payload: map[string]any{
			"team":          t.Name,
			"team_ordinal":  t.Ordinal,
			"asset":         a.Name,
			"asset_ordinal": a.Ordinal,
		},
		FileName: AssetLabelFile(t.Ordinal, a.Ordinal),
	}
}
