// Package lark implements the record store over Lark (Feishu) Bitable tables.
package lark

import (
	"context"
	"fmt"
	"strconv"
	"time"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkbitable "github.com/larksuite/oapi-sdk-go/v3/service/bitable/v1"

	"regdesk/internal/checkin/models"
	"regdesk/internal/platform/config"
	"regdesk/pkg/platform/sentinel"
)

// Store reads and writes participant and team rows of one Bitable app.
type Store struct {
	client           *lark.Client
	appToken         string
	participantTable string
	teamTable        string
}

// New builds a Bitable client with a cached tenant token. Extra client
// options (base URL, timeouts) are applied after the defaults.
func New(cfg config.Lark, opts ...lark.ClientOptionFunc) *Store {
	opts = append([]lark.ClientOptionFunc{
		lark.WithLogLevel(larkcore.LogLevelError),
		lark.WithEnableTokenCache(true),
		lark.WithReqTimeout(10 * time.Second),
	}, opts...)

	return &Store{
		client:           lark.NewClient(cfg.AppID, cfg.AppSecret, opts...),
		appToken:         cfg.AppToken,
		participantTable: cfg.ParticipantTable,
		teamTable:        cfg.TeamTable,
	}
}

func isCondition(field, value string) *larkbitable.Condition {
	return larkbitable.NewConditionBuilder().
		FieldName(field).
		Operator("is").
		Value([]string{value}).
		Build()
}

func (s *Store) search(ctx context.Context, table string, conditions []*larkbitable.Condition, limit int) ([]*larkbitable.AppTableRecord, error) {
	req := larkbitable.NewSearchAppTableRecordReqBuilder().
		AppToken(s.appToken).
		TableId(table).
		PageSize(limit).
		Body(larkbitable.NewSearchAppTableRecordReqBodyBuilder().
			Filter(larkbitable.NewFilterInfoBuilder().
				Conjunction("or").
				Conditions(conditions).
				Build()).
			Build()).
		Build()

	resp, err := s.client.Bitable.V1.AppTableRecord.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search table %s: %w", table, err)
	}
	if !resp.Success() {
		return nil, fmt.Errorf("search table %s: code %d %s: %w", table, resp.Code, resp.Msg, sentinel.ErrUnavailable)
	}
	if resp.Data == nil {
		return nil, nil
	}
	return resp.Data.Items, nil
}

func (s *Store) update(ctx context.Context, table, recordID string, fields map[string]any) error {
	req := larkbitable.NewUpdateAppTableRecordReqBuilder().
		AppToken(s.appToken).
		TableId(table).
		RecordId(recordID).
		AppTableRecord(larkbitable.NewAppTableRecordBuilder().
			Fields(fields).
			Build()).
		Build()

	resp, err := s.client.Bitable.V1.AppTableRecord.Update(ctx, req)
	if err != nil {
		return fmt.Errorf("update record %s: %w", recordID, err)
	}
	if !resp.Success() {
		return fmt.Errorf("update record %s: code %d %s: %w", recordID, resp.Code, resp.Msg, sentinel.ErrUnavailable)
	}
	return nil
}

// SearchParticipants issues one disjunctive search over the populated fields.
func (s *Store) SearchParticipants(ctx context.Context, q models.Query, limit int) ([]models.Participant, error) {
	var conditions []*larkbitable.Condition
	if q.ID != "" {
		conditions = append(conditions, isCondition(FieldRecordID, q.ID))
	}
	if q.Name != "" {
		conditions = append(conditions, isCondition(FieldName, q.Name))
	}
	if q.Phone != "" {
		conditions = append(conditions, isCondition(FieldPhone, q.Phone))
	}
	if len(conditions) == 0 {
		return nil, nil
	}

	records, err := s.search(ctx, s.participantTable, conditions, limit)
	if err != nil {
		return nil, err
	}

	out := make([]models.Participant, 0, len(records))
	for _, rec := range records {
		p, err := decodeParticipant(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func decodeParticipant(rec *larkbitable.AppTableRecord) (models.Participant, error) {
	recordID := larkcore.StringValue(rec.RecordId)
	ordinal, _, err := intValue(rec.Fields, FieldTeamOrdinal)
	if err != nil {
		return models.Participant{}, fmt.Errorf("record %s field %s: %w", recordID, FieldTeamOrdinal, err)
	}
	checkedInAt, err := timeValue(rec.Fields, FieldCheckedInAt)
	if err != nil {
		return models.Participant{}, fmt.Errorf("record %s field %s: %w", recordID, FieldCheckedInAt, err)
	}

	return models.Participant{
		ID:          recordID,
		Name:        textValue(rec.Fields, FieldName),
		Phone:       textValue(rec.Fields, FieldPhone),
		School:      textValue(rec.Fields, FieldSchool),
		Team:        textValue(rec.Fields, FieldTeamName),
		TeamOrdinal: ordinal,
		CheckedInAt: checkedInAt,
	}, nil
}

func (s *Store) SetParticipantCheckIn(ctx context.Context, recordID string, at time.Time) error {
	return s.update(ctx, s.participantTable, recordID, map[string]any{
		FieldCheckedInAt: at.UnixMilli(),
	})
}

// FindTeam looks up the team row by its ordinal.
func (s *Store) FindTeam(ctx context.Context, ordinal int) (*models.Team, error) {
	records, err := s.search(ctx, s.teamTable,
		[]*larkbitable.Condition{isCondition(FieldTeamOrdinal, strconv.Itoa(ordinal))}, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("team %d: %w", ordinal, sentinel.ErrNotFound)
	}

	rec := records[0]
	issuedAt, err := timeValue(rec.Fields, FieldAssetsIssuedAt)
	if err != nil {
		return nil, fmt.Errorf("team %d field %s: %w", ordinal, FieldAssetsIssuedAt, err)
	}
	return &models.Team{
		RecordID:       larkcore.StringValue(rec.RecordId),
		Ordinal:        ordinal,
		Name:           textValue(rec.Fields, FieldTeamName),
		AssetsIssuedAt: issuedAt,
	}, nil
}

func (s *Store) SetTeamCheckIn(ctx context.Context, recordID string, at time.Time) error {
	return s.update(ctx, s.teamTable, recordID, map[string]any{
		FieldAssetsIssuedAt: at.UnixMilli(),
	})
}
