// Package memory is an in-process record store for local runs, demos and tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"regdesk/internal/checkin/models"
	"regdesk/pkg/platform/sentinel"
)

// InMemory holds participant and team rows in insertion order.
type InMemory struct {
	mu           sync.RWMutex
	participants []models.Participant
	teams        []models.Team
}

func New() *InMemory {
	return &InMemory{}
}

// AddParticipant inserts or replaces a participant row keyed by ID.
func (s *InMemory) AddParticipant(p models.Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.participants {
		if s.participants[i].ID == p.ID {
			s.participants[i] = p
			return
		}
	}
	s.participants = append(s.participants, p)
}

// AddTeam inserts or replaces a team row keyed by ordinal.
func (s *InMemory) AddTeam(t models.Team) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.teams {
		if s.teams[i].Ordinal == t.Ordinal {
			s.teams[i] = t
			return
		}
	}
	s.teams = append(s.teams, t)
}

// SearchParticipants returns rows where any populated field of q matches exactly.
func (s *InMemory) SearchParticipants(_ context.Context, q models.Query, limit int) ([]models.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Participant
	for _, p := range s.participants {
		if limit > 0 && len(out) == limit {
			break
		}
		if matches(p, q) {
			out = append(out, p)
		}
	}
	return out, nil
}

func matches(p models.Participant, q models.Query) bool {
	return (q.ID != "" && p.ID == q.ID) ||
		(q.Name != "" && p.Name == q.Name) ||
		(q.Phone != "" && p.Phone == q.Phone)
}

func (s *InMemory) SetParticipantCheckIn(_ context.Context, recordID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.participants {
		if s.participants[i].ID == recordID {
			s.participants[i].CheckedInAt = &at
			return nil
		}
	}
	return fmt.Errorf("participant %s: %w", recordID, sentinel.ErrNotFound)
}

func (s *InMemory) FindTeam(_ context.Context, ordinal int) (*models.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.teams {
		if t.Ordinal == ordinal {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("team %d: %w", ordinal, sentinel.ErrNotFound)
}

func (s *InMemory) SetTeamCheckIn(_ context.Context, recordID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.teams {
		if s.teams[i].RecordID == recordID {
			s.teams[i].AssetsIssuedAt = &at
			return nil
		}
	}
	return fmt.Errorf("team record %s: %w", recordID, sentinel.ErrNotFound)
}

// Participant returns a copy of one participant row, for inspection.
func (s *InMemory) Participant(id string) (models.Participant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.participants {
		if p.ID == id {
			return p, true
		}
	}
	return models.Participant{}, false
}

// Team returns a copy of one team row, for inspection.
func (s *InMemory) Team(ordinal int) (models.Team, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.teams {
		if t.Ordinal == ordinal {
			return t, true
		}
	}
	return models.Team{}, false
}

type seedFile struct {
	Participants []struct {
		ID          string     `json:"id"`
		Name        string     `json:"name"`
		Phone       string     `json:"phone"`
		School      string     `json:"school"`
		Team        string     `json:"team"`
		TeamOrdinal int        `json:"team_ordinal"`
		CheckedInAt *time.Time `json:"checked_in_at"`
	} `json:"participants"`
	Teams []struct {
		RecordID       string     `json:"record_id"`
		Ordinal        int        `json:"ordinal"`
		Name           string     `json:"name"`
		AssetsIssuedAt *time.Time `json:"assets_issued_at"`
	} `json:"teams"`
}

// LoadSeed populates the store from a JSON seed file.
func (s *InMemory) LoadSeed(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	var seed seedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("decode seed file %s: %w", path, err)
	}

	for _, p := range seed.Participants {
		if p.ID == "" {
			return fmt.Errorf("seed participant %q has no id", p.Name)
		}
		s.AddParticipant(models.Participant{
			ID:          p.ID,
			Name:        p.Name,
			Phone:       p.Phone,
			School:      p.School,
			Team:        p.Team,
			TeamOrdinal: p.TeamOrdinal,
			CheckedInAt: p.CheckedInAt,
		})
	}
	for _, t := range seed.Teams {
		recordID := t.RecordID
		if recordID == "" {
			recordID = fmt.Sprintf("team-%d", t.Ordinal)
		}
		s.AddTeam(models.Team{
			RecordID:       recordID,
			Ordinal:        t.Ordinal,
			Name:           t.Name,
			AssetsIssuedAt: t.AssetsIssuedAt,
		})
	}
	return nil
}
