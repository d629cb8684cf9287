package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"match-event-service/models"
	"match-event-service/pkg/common"
)

// MatchStore 比赛与事件存储接口。事件只追加，比赛状态与事件持久化
// 在同一个事务中完成
type MatchStore interface {
	// SaveMatch 保存新比赛
	SaveMatch(ctx context.Context, match *models.Match) error

	// GetMatch 根据 ID 获取比赛 (不包含已软删除的比赛)
	GetMatch(ctx context.Context, matchID string) (*models.Match, error)

	// DeleteMatch 软删除比赛
	DeleteMatch(ctx context.Context, matchID string) error

	// ApplyEvent 在一个事务中写回比赛状态并追加规范事件
	ApplyEvent(ctx context.Context, match *models.Match, event *models.MatchEvent) error

	// ListEvents 按创建顺序列出一场比赛的所有事件
	ListEvents(ctx context.Context, matchID string) ([]*models.MatchEvent, error)
}

// PostgresMatchStore MatchStore 的 PostgreSQL 实现
type PostgresMatchStore struct {
	db *sql.DB
}

// NewPostgresMatchStore 创建 PostgresMatchStore 实例
func NewPostgresMatchStore(db *sql.DB) *PostgresMatchStore {
	return &PostgresMatchStore{db: db}
}

// SaveMatch 保存新比赛
func (s *PostgresMatchStore) SaveMatch(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches (
			id, competition_id, home_team_id, away_team_id, venue_id, referee_id,
			status, result, home_score, away_score, ht_home_score, ht_away_score,
			home_penalties, away_penalties, home_red_cards, away_red_cards,
			start_time, deleted, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $19)
	`

	now := time.Now()
	_, err := s.db.ExecContext(ctx, query,
		match.ID, match.CompetitionID, match.HomeTeamID, match.AwayTeamID,
		nullIfEmpty(match.VenueID), nullIfEmpty(match.RefereeID),
		match.Status, match.Result,
		match.Score.Home, match.Score.Away,
		match.HalfTimeScore.Home, match.HalfTimeScore.Away,
		match.Penalties.Home, match.Penalties.Away,
		match.RedCards.Home, match.RedCards.Away,
		match.StartTime, match.Deleted, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save match: %w", err)
	}
	return nil
}

// GetMatch 根据 ID 获取比赛
func (s *PostgresMatchStore) GetMatch(ctx context.Context, matchID string) (*models.Match, error) {
	query := `
		SELECT id, competition_id, home_team_id, away_team_id, venue_id, referee_id,
		       status, result, home_score, away_score, ht_home_score, ht_away_score,
		       home_penalties, away_penalties, home_red_cards, away_red_cards,
		       start_time, deleted, created_at, updated_at
		FROM matches
		WHERE id = $1 AND deleted = FALSE
	`

	var (
		m         models.Match
		venueID   sql.NullString
		refereeID sql.NullString
		startTime sql.NullTime
	)

	err := s.db.QueryRowContext(ctx, query, matchID).Scan(
		&m.ID, &m.CompetitionID, &m.HomeTeamID, &m.AwayTeamID, &venueID, &refereeID,
		&m.Status, &m.Result,
		&m.Score.Home, &m.Score.Away,
		&m.HalfTimeScore.Home, &m.HalfTimeScore.Away,
		&m.Penalties.Home, &m.Penalties.Away,
		&m.RedCards.Home, &m.RedCards.Away,
		&startTime, &m.Deleted, &m.CreatedAt, &m.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("match %s: %w", matchID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	m.VenueID = venueID.String
	m.RefereeID = refereeID.String
	if startTime.Valid {
		m.StartTime = startTime.Time
	}
	return &m, nil
}

// DeleteMatch 软删除比赛
func (s *PostgresMatchStore) DeleteMatch(ctx context.Context, matchID string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE matches SET deleted = TRUE, updated_at = NOW() WHERE id = $1 AND deleted = FALSE`,
		matchID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete match: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("match %s: %w", matchID, common.ErrNotFound)
	}
	return nil
}

// ApplyEvent 在一个事务中写回比赛状态并追加规范事件。
// 同一场比赛的并发提交由该事务边界串行化
func (s *PostgresMatchStore) ApplyEvent(ctx context.Context, match *models.Match, event *models.MatchEvent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	updateQuery := `
		UPDATE matches SET
			status = $1,
			result = $2,
			home_score = $3,
			away_score = $4,
			ht_home_score = $5,
			ht_away_score = $6,
			home_penalties = $7,
			away_penalties = $8,
			home_red_cards = $9,
			away_red_cards = $10,
			updated_at = NOW()
		WHERE id = $11 AND deleted = FALSE
	`

	result, err := tx.ExecContext(ctx, updateQuery,
		match.Status, match.Result,
		match.Score.Home, match.Score.Away,
		match.HalfTimeScore.Home, match.HalfTimeScore.Away,
		match.Penalties.Home, match.Penalties.Away,
		match.RedCards.Home, match.RedCards.Away,
		match.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update match: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("match %s: %w", match.ID, common.ErrNotFound)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	insertQuery := `
		INSERT INTO match_events (id, match_id, competition_id, event_type, minute, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := tx.ExecContext(ctx, insertQuery,
		event.ID, event.MatchID, event.CompetitionID, event.Type, event.Minute,
		string(payload), event.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	return tx.Commit()
}

// ListEvents 列出一场比赛的所有事件
func (s *PostgresMatchStore) ListEvents(ctx context.Context, matchID string) ([]*models.MatchEvent, error) {
	query := `
		SELECT payload
		FROM match_events
		WHERE match_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*models.MatchEvent
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}

		var event models.MatchEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event: %w", err)
		}
		events = append(events, &event)
	}

	return events, rows.Err()
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
