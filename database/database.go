package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Connect 连接到数据库
func Connect(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// 测试连接
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// 设置连接池
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

// Migrate 运行数据库迁移
func Migrate(db *sql.DB) error {
	migrations := []string{
		// 比赛表
		`CREATE TABLE IF NOT EXISTS matches (
			id VARCHAR(36) PRIMARY KEY,
			competition_id VARCHAR(36) NOT NULL,
			home_team_id VARCHAR(36) NOT NULL,
			away_team_id VARCHAR(36) NOT NULL,
			venue_id VARCHAR(36),
			referee_id VARCHAR(36),
			status VARCHAR(30) NOT NULL DEFAULT 'NOT_STARTED',
			result VARCHAR(10) NOT NULL DEFAULT 'NONE',
			home_score INTEGER NOT NULL DEFAULT 0,
			away_score INTEGER NOT NULL DEFAULT 0,
			ht_home_score INTEGER NOT NULL DEFAULT 0,
			ht_away_score INTEGER NOT NULL DEFAULT 0,
			home_penalties INTEGER NOT NULL DEFAULT 0,
			away_penalties INTEGER NOT NULL DEFAULT 0,
			home_red_cards INTEGER NOT NULL DEFAULT 0,
			away_red_cards INTEGER NOT NULL DEFAULT 0,
			start_time TIMESTAMP,
			deleted BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_competition_id ON matches(competition_id)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_status ON matches(status)`,

		// 比赛事件表 (只追加，不修改不删除)
		`CREATE TABLE IF NOT EXISTS match_events (
			id VARCHAR(36) PRIMARY KEY,
			match_id VARCHAR(36) NOT NULL,
			competition_id VARCHAR(36) NOT NULL,
			event_type VARCHAR(20) NOT NULL,
			minute VARCHAR(10) NOT NULL,
			payload TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_match_events_match_id ON match_events(match_id)`,
		`CREATE INDEX IF NOT EXISTS idx_match_events_event_type ON match_events(event_type)`,

		// 球队球员名单表
		`CREATE TABLE IF NOT EXISTS team_players (
			id VARCHAR(36) PRIMARY KEY,
			team_id VARCHAR(36) NOT NULL,
			player_id VARCHAR(36) NOT NULL,
			name VARCHAR(200) NOT NULL,
			position VARCHAR(30),
			number INTEGER,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_team_players_team_id ON team_players(team_id)`,
		`CREATE INDEX IF NOT EXISTS idx_team_players_player_id ON team_players(player_id)`,

		// 球队统计表
		`CREATE TABLE IF NOT EXISTS team_stats (
			id VARCHAR(36) PRIMARY KEY,
			competition_id VARCHAR(36) NOT NULL,
			team_id VARCHAR(36) NOT NULL,
			matches_played INTEGER NOT NULL DEFAULT 0,
			wins INTEGER NOT NULL DEFAULT 0,
			draws INTEGER NOT NULL DEFAULT 0,
			losses INTEGER NOT NULL DEFAULT 0,
			goals_scored INTEGER NOT NULL DEFAULT 0,
			goals_conceded INTEGER NOT NULL DEFAULT 0,
			points INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (competition_id, team_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_team_stats_competition_id ON team_stats(competition_id)`,

		// 球员统计表
		`CREATE TABLE IF NOT EXISTS player_stats (
			id VARCHAR(36) PRIMARY KEY,
			competition_id VARCHAR(36) NOT NULL,
			player_id VARCHAR(36) NOT NULL,
			team_id VARCHAR(36) NOT NULL,
			name VARCHAR(200) NOT NULL,
			goals INTEGER NOT NULL DEFAULT 0,
			assists INTEGER NOT NULL DEFAULT 0,
			yellow_cards INTEGER NOT NULL DEFAULT 0,
			red_cards INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (competition_id, player_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_player_stats_competition_id ON player_stats(competition_id)`,

		// 未分配比赛表 (比赛与赛事的关联记录)
		`CREATE TABLE IF NOT EXISTS unassigned_matches (
			match_id VARCHAR(36) PRIMARY KEY,
			competition_id VARCHAR(36) NOT NULL,
			assigned BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_unassigned_matches_competition_id ON unassigned_matches(competition_id)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}
