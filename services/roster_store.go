package services

import (
	"context"
	"database/sql"
	"fmt"

	"match-event-service/models"
	"match-event-service/pkg/common"
)

// RosterStore 球队名单查询接口。事件验证时通过 team-player id
// 确认球员存在且在指定球队的有效名单中
type RosterStore interface {
	// GetTeamPlayer 根据 team-player id 获取有效的名单条目
	GetTeamPlayer(ctx context.Context, teamPlayerID string) (*models.TeamPlayer, error)

	// ListTeamPlayers 列出一支球队的有效名单
	ListTeamPlayers(ctx context.Context, teamID string) ([]*models.TeamPlayer, error)

	// AddTeamPlayer 向名单中添加球员
	AddTeamPlayer(ctx context.Context, player *models.TeamPlayer) error
}

// PostgresRosterStore RosterStore 的 PostgreSQL 实现
type PostgresRosterStore struct {
	db *sql.DB
}

// NewPostgresRosterStore 创建 PostgresRosterStore 实例
func NewPostgresRosterStore(db *sql.DB) *PostgresRosterStore {
	return &PostgresRosterStore{db: db}
}

// GetTeamPlayer 根据 team-player id 获取有效的名单条目
func (s *PostgresRosterStore) GetTeamPlayer(ctx context.Context, teamPlayerID string) (*models.TeamPlayer, error) {
	query := `
		SELECT id, team_id, player_id, name, position, number, active, created_at
		FROM team_players
		WHERE id = $1 AND active = TRUE
	`

	var (
		p        models.TeamPlayer
		position sql.NullString
		number   sql.NullInt64
	)

	err := s.db.QueryRowContext(ctx, query, teamPlayerID).Scan(
		&p.ID, &p.TeamID, &p.PlayerID, &p.Name, &position, &number, &p.Active, &p.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("team player %s: %w", teamPlayerID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team player: %w", err)
	}

	p.Position = position.String
	p.Number = int(number.Int64)
	return &p, nil
}

// ListTeamPlayers 列出一支球队的有效名单
func (s *PostgresRosterStore) ListTeamPlayers(ctx context.Context, teamID string) ([]*models.TeamPlayer, error) {
	query := `
		SELECT id, team_id, player_id, name, position, number, active, created_at
		FROM team_players
		WHERE team_id = $1 AND active = TRUE
		ORDER BY number ASC
	`

	rows, err := s.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team players: %w", err)
	}
	defer rows.Close()

	var players []*models.TeamPlayer
	for rows.Next() {
		var (
			p        models.TeamPlayer
			position sql.NullString
			number   sql.NullInt64
		)
		if err := rows.Scan(&p.ID, &p.TeamID, &p.PlayerID, &p.Name, &position, &number, &p.Active, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Position = position.String
		p.Number = int(number.Int64)
		players = append(players, &p)
	}

	return players, rows.Err()
}

// AddTeamPlayer 向名单中添加球员
func (s *PostgresRosterStore) AddTeamPlayer(ctx context.Context, player *models.TeamPlayer) error {
	query := `
		INSERT INTO team_players (id, team_id, player_id, name, position, number, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.db.ExecContext(ctx, query,
		player.ID, player.TeamID, player.PlayerID, player.Name,
		nullIfEmpty(player.Position), player.Number, player.Active,
	)
	if err != nil {
		return fmt.Errorf("failed to add team player: %w", err)
	}
	return nil
}
