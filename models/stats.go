package models

import "time"

// TeamPlayer 球队名单中的一名球员
type TeamPlayer struct {
	ID        string    `json:"id"`
	TeamID    string    `json:"teamId"`
	PlayerID  string    `json:"playerId"`
	Name      string    `json:"name"`
	Position  string    `json:"position,omitempty"`
	Number    int       `json:"number,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"-"`
}

// TeamStats 球队在一个赛事中的积分统计。首次出现在 FINISHED 状态事件中时
// 延迟创建，之后只做增量累加，不做全量重算
type TeamStats struct {
	ID            string `json:"id"`
	CompetitionID string `json:"competitionId"`
	TeamID        string `json:"teamId"`
	MatchesPlayed int    `json:"matchesPlayed"`
	Wins          int    `json:"wins"`
	Draws         int    `json:"draws"`
	Losses        int    `json:"losses"`
	GoalsScored   int    `json:"goalsScored"`
	GoalsConceded int    `json:"goalsConceded"`
	Points        int    `json:"points"`
}

// PlayerStats 球员在一个赛事中的个人统计。首次被 CARD/GOAL/PENALTY 事件
// 引用时延迟创建，球队和姓名取自触发事件，之后不再同步
type PlayerStats struct {
	ID            string `json:"id"`
	CompetitionID string `json:"competitionId"`
	PlayerID      string `json:"playerId"`
	TeamID        string `json:"teamId"`
	Name          string `json:"name"`
	Goals         int    `json:"goals"`
	Assists       int    `json:"assists"`
	YellowCards   int    `json:"yellowCards"`
	RedCards      int    `json:"redCards"`
}

// UnassignedMatch 比赛与赛事的关联记录，由关联消息创建一次，
// 供后续的轮次/对阵分配使用
type UnassignedMatch struct {
	MatchID       string    `json:"matchId"`
	CompetitionID string    `json:"competitionId"`
	Assigned      bool      `json:"assigned"`
	CreatedAt     time.Time `json:"createdAt"`
}
