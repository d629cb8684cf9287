package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"match-event-service/models"
)

// StatsStore 统计聚合存储接口。TeamStats 和 PlayerStats 都是首次引用时
// 延迟创建的可变计数器，更新为读-改-写，不做全量重算
type StatsStore interface {
	// FindOrCreateTeamStats 查找或创建球队统计行
	FindOrCreateTeamStats(ctx context.Context, competitionID, teamID string) (*models.TeamStats, error)

	// UpdateTeamStats 写回球队统计
	UpdateTeamStats(ctx context.Context, stats *models.TeamStats) error

	// FindOrCreatePlayerStats 查找或创建球员统计行，新行以触发事件携带的
	// 球队和姓名作为初始值
	FindOrCreatePlayerStats(ctx context.Context, competitionID, playerID, teamID, name string) (*models.PlayerStats, error)

	// UpdatePlayerStats 写回球员统计
	UpdatePlayerStats(ctx context.Context, stats *models.PlayerStats) error

	// ListTeamStats 按积分榜顺序列出一个赛事的球队统计
	ListTeamStats(ctx context.Context, competitionID string) ([]*models.TeamStats, error)

	// ListPlayerStats 按射手榜顺序列出一个赛事的球员统计
	ListPlayerStats(ctx context.Context, competitionID string) ([]*models.PlayerStats, error)

	// SaveUnassignedMatch 保存比赛与赛事的关联记录，重复投递时不重复插入
	SaveUnassignedMatch(ctx context.Context, matchID, competitionID string) error
}

// PostgresStatsStore StatsStore 的 PostgreSQL 实现
type PostgresStatsStore struct {
	db *sql.DB
}

// NewPostgresStatsStore 创建 PostgresStatsStore 实例
func NewPostgresStatsStore(db *sql.DB) *PostgresStatsStore {
	return &PostgresStatsStore{db: db}
}

// FindOrCreateTeamStats 查找或创建球队统计行
func (s *PostgresStatsStore) FindOrCreateTeamStats(ctx context.Context, competitionID, teamID string) (*models.TeamStats, error) {
	insertQuery := `
		INSERT INTO team_stats (id, competition_id, team_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (competition_id, team_id) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, insertQuery, uuid.NewString(), competitionID, teamID); err != nil {
		return nil, fmt.Errorf("failed to create team stats: %w", err)
	}

	query := `
		SELECT id, competition_id, team_id, matches_played, wins, draws, losses,
		       goals_scored, goals_conceded, points
		FROM team_stats
		WHERE competition_id = $1 AND team_id = $2
	`

	var stats models.TeamStats
	err := s.db.QueryRowContext(ctx, query, competitionID, teamID).Scan(
		&stats.ID, &stats.CompetitionID, &stats.TeamID,
		&stats.MatchesPlayed, &stats.Wins, &stats.Draws, &stats.Losses,
		&stats.GoalsScored, &stats.GoalsConceded, &stats.Points,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get team stats: %w", err)
	}
	return &stats, nil
}

// UpdateTeamStats 写回球队统计
func (s *PostgresStatsStore) UpdateTeamStats(ctx context.Context, stats *models.TeamStats) error {
	query := `
		UPDATE team_stats SET
			matches_played = $1,
			wins = $2,
			draws = $3,
			losses = $4,
			goals_scored = $5,
			goals_conceded = $6,
			points = $7,
			updated_at = NOW()
		WHERE id = $8
	`

	_, err := s.db.ExecContext(ctx, query,
		stats.MatchesPlayed, stats.Wins, stats.Draws, stats.Losses,
		stats.GoalsScored, stats.GoalsConceded, stats.Points, stats.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update team stats: %w", err)
	}
	return nil
}

// FindOrCreatePlayerStats 查找或创建球员统计行
func (s *PostgresStatsStore) FindOrCreatePlayerStats(ctx context.Context, competitionID, playerID, teamID, name string) (*models.PlayerStats, error) {
	insertQuery := `
		INSERT INTO player_stats (id, competition_id, player_id, team_id, name)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (competition_id, player_id) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, insertQuery, uuid.NewString(), competitionID, playerID, teamID, name); err != nil {
		return nil, fmt.Errorf("failed to create player stats: %w", err)
	}

	query := `
		SELECT id, competition_id, player_id, team_id, name,
		       goals, assists, yellow_cards, red_cards
		FROM player_stats
		WHERE competition_id = $1 AND player_id = $2
	`

	var stats models.PlayerStats
	err := s.db.QueryRowContext(ctx, query, competitionID, playerID).Scan(
		&stats.ID, &stats.CompetitionID, &stats.PlayerID, &stats.TeamID, &stats.Name,
		&stats.Goals, &stats.Assists, &stats.YellowCards, &stats.RedCards,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get player stats: %w", err)
	}
	return &stats, nil
}

// UpdatePlayerStats 写回球员统计
func (s *PostgresStatsStore) UpdatePlayerStats(ctx context.Context, stats *models.PlayerStats) error {
	query := `
		UPDATE player_stats SET
			goals = $1,
			assists = $2,
			yellow_cards = $3,
			red_cards = $4,
			updated_at = NOW()
		WHERE id = $5
	`

	_, err := s.db.ExecContext(ctx, query,
		stats.Goals, stats.Assists, stats.YellowCards, stats.RedCards, stats.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update player stats: %w", err)
	}
	return nil
}

// ListTeamStats 按积分、净胜球、进球数排序列出球队统计
func (s *PostgresStatsStore) ListTeamStats(ctx context.Context, competitionID string) ([]*models.TeamStats, error) {
	query := `
		SELECT id, competition_id, team_id, matches_played, wins, draws, losses,
		       goals_scored, goals_conceded, points
		FROM team_stats
		WHERE competition_id = $1
		ORDER BY points DESC, (goals_scored - goals_conceded) DESC, goals_scored DESC
	`

	rows, err := s.db.QueryContext(ctx, query, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team stats: %w", err)
	}
	defer rows.Close()

	var list []*models.TeamStats
	for rows.Next() {
		var stats models.TeamStats
		if err := rows.Scan(
			&stats.ID, &stats.CompetitionID, &stats.TeamID,
			&stats.MatchesPlayed, &stats.Wins, &stats.Draws, &stats.Losses,
			&stats.GoalsScored, &stats.GoalsConceded, &stats.Points,
		); err != nil {
			return nil, err
		}
		list = append(list, &stats)
	}

	return list, rows.Err()
}

// ListPlayerStats 按进球、助攻排序列出球员统计
func (s *PostgresStatsStore) ListPlayerStats(ctx context.Context, competitionID string) ([]*models.PlayerStats, error) {
	query := `
		SELECT id, competition_id, player_id, team_id, name,
		       goals, assists, yellow_cards, red_cards
		FROM player_stats
		WHERE competition_id = $1
		ORDER BY goals DESC, assists DESC
	`

	rows, err := s.db.QueryContext(ctx, query, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list player stats: %w", err)
	}
	defer rows.Close()

	var list []*models.PlayerStats
	for rows.Next() {
		var stats models.PlayerStats
		if err := rows.Scan(
			&stats.ID, &stats.CompetitionID, &stats.PlayerID, &stats.TeamID, &stats.Name,
			&stats.Goals, &stats.Assists, &stats.YellowCards, &stats.RedCards,
		); err != nil {
			return nil, err
		}
		list = append(list, &stats)
	}

	return list, rows.Err()
}

// SaveUnassignedMatch 保存比赛与赛事的关联记录
func (s *PostgresStatsStore) SaveUnassignedMatch(ctx context.Context, matchID, competitionID string) error {
	query := `
		INSERT INTO unassigned_matches (match_id, competition_id)
		VALUES ($1, $2)
		ON CONFLICT (match_id) DO NOTHING
	`

	_, err := s.db.ExecContext(ctx, query, matchID, competitionID)
	if err != nil {
		return fmt.Errorf("failed to save unassigned match: %w", err)
	}
	return nil
}
