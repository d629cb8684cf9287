package models

import (
	"fmt"
	"time"
)

// MatchStatus 比赛状态
type MatchStatus string

const (
	StatusNotStarted          MatchStatus = "NOT_STARTED"
	StatusFirstHalf           MatchStatus = "FIRST_HALF"
	StatusHalfTime            MatchStatus = "HALF_TIME"
	StatusSecondHalf          MatchStatus = "SECOND_HALF"
	StatusExtraTimeFirstHalf  MatchStatus = "EXTRA_TIME_FIRST_HALF"
	StatusExtraTimeHalfTime   MatchStatus = "EXTRA_TIME_HALF_TIME"
	StatusExtraTimeSecondHalf MatchStatus = "EXTRA_TIME_SECOND_HALF"
	StatusPenalties           MatchStatus = "PENALTIES"
	StatusFinished            MatchStatus = "FINISHED"
	StatusAbandoned           MatchStatus = "ABANDONED"
	StatusPostponed           MatchStatus = "POSTPONED"
)

var matchStatuses = map[MatchStatus]bool{
	StatusNotStarted:          true,
	StatusFirstHalf:           true,
	StatusHalfTime:            true,
	StatusSecondHalf:          true,
	StatusExtraTimeFirstHalf:  true,
	StatusExtraTimeHalfTime:   true,
	StatusExtraTimeSecondHalf: true,
	StatusPenalties:           true,
	StatusFinished:            true,
	StatusAbandoned:           true,
	StatusPostponed:           true,
}

// ParseMatchStatus 解析状态名称，无法识别时返回 false
func ParseMatchStatus(s string) (MatchStatus, bool) {
	status := MatchStatus(s)
	if !matchStatuses[status] {
		return "", false
	}
	return status, true
}

// IsTerminal 是否为终止状态 (终止后不再接受状态转换)
func (s MatchStatus) IsTerminal() bool {
	return s == StatusFinished || s == StatusAbandoned || s == StatusPostponed
}

// MatchResult 比赛结果
type MatchResult string

const (
	ResultNone    MatchResult = "NONE"
	ResultHomeWin MatchResult = "HOME_WIN"
	ResultAwayWin MatchResult = "AWAY_WIN"
	ResultDraw    MatchResult = "DRAW"
)

// ParseMatchResult 解析结果名称
func ParseMatchResult(s string) (MatchResult, bool) {
	switch r := MatchResult(s); r {
	case ResultNone, ResultHomeWin, ResultAwayWin, ResultDraw:
		return r, true
	}
	return "", false
}

// Score 主客比分
type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Match 比赛聚合根，比赛状态只能通过应用已验证的事件变更
type Match struct {
	ID            string      `json:"id"`
	CompetitionID string      `json:"competitionId"`
	HomeTeamID    string      `json:"homeTeamId"`
	AwayTeamID    string      `json:"awayTeamId"`
	VenueID       string      `json:"venueId,omitempty"`
	RefereeID     string      `json:"refereeId,omitempty"`
	Status        MatchStatus `json:"status"`
	Result        MatchResult `json:"result"`
	Score         Score       `json:"scoreInfo"`
	HalfTimeScore Score       `json:"halfTimeScoreInfo"`
	Penalties     Score       `json:"penaltiesInfo"`
	RedCards      Score       `json:"redCardInfo"`
	StartTime     time.Time   `json:"startTime"`
	Deleted       bool        `json:"-"`
	CreatedAt     time.Time   `json:"-"`
	UpdatedAt     time.Time   `json:"-"`
}

// Side 比赛中的一方
type Side int

const (
	SideNone Side = iota
	SideHome
	SideAway
)

// SideOf 根据球队 ID 判断主客方
func (m *Match) SideOf(teamID string) Side {
	switch teamID {
	case m.HomeTeamID:
		return SideHome
	case m.AwayTeamID:
		return SideAway
	}
	return SideNone
}

// ApplyStatus 应用状态转换。状态机不强制遵循足球比赛的自然顺序，
// 只拒绝从终止状态继续转换；目标状态名称在进入状态机之前已验证。
// 目标为 FINISHED 时冻结比赛结果。
func (m *Match) ApplyStatus(target MatchStatus, result MatchResult) error {
	if m.Status.IsTerminal() {
		return fmt.Errorf("match status %s is terminal", m.Status)
	}

	// 进入中场休息时记录半场比分
	if target == StatusHalfTime {
		m.HalfTimeScore = m.Score
	}

	m.Status = target
	if target == StatusFinished {
		m.Result = result
	}
	return nil
}

// AddGoal 为指定一方的进球计数加一
func (m *Match) AddGoal(side Side) {
	switch side {
	case SideHome:
		m.Score.Home++
	case SideAway:
		m.Score.Away++
	}
}

// AddPenalty 为指定一方的点球计数加一 (点球大战)
func (m *Match) AddPenalty(side Side) {
	switch side {
	case SideHome:
		m.Penalties.Home++
	case SideAway:
		m.Penalties.Away++
	}
}

// AddRedCard 为指定一方的红牌计数加一
func (m *Match) AddRedCard(side Side) {
	switch side {
	case SideHome:
		m.RedCards.Home++
	case SideAway:
		m.RedCards.Away++
	}
}
