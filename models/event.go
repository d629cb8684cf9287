package models

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// EventType 事件类型
type EventType string

const (
	EventTypeStatus       EventType = "STATUS"
	EventTypeCommentary   EventType = "COMMENTARY"
	EventTypeCard         EventType = "CARD"
	EventTypeGoal         EventType = "GOAL"
	EventTypePenalty      EventType = "PENALTY"
	EventTypeSubstitution EventType = "SUBSTITUTION"
)

// CardType 牌的类型
type CardType string

const (
	CardYellow       CardType = "YELLOW"
	CardSecondYellow CardType = "SECOND_YELLOW"
	CardDirectRed    CardType = "DIRECT_RED"
)

// ParseCardType 解析牌类型
func ParseCardType(s string) (CardType, bool) {
	switch c := CardType(s); c {
	case CardYellow, CardSecondYellow, CardDirectRed:
		return c, true
	}
	return "", false
}

// IsRed 统计意义上是否算红牌 (第二张黄牌和直接红牌都算)
func (c CardType) IsRed() bool {
	return c == CardSecondYellow || c == CardDirectRed
}

// 比赛分钟格式: 1-9 为单个数字，10-120 为两三位数字，
// 补时只能出现在 45/90/120 分钟后，如 45+2、90+5、120+10
var minutePattern = regexp.MustCompile(`^([1-9]|[1-9]\d{1,2}|(45|90|120)\+\d{1,2})$`)

// ValidMinute 验证比赛分钟格式
func ValidMinute(minute string) bool {
	if !minutePattern.MatchString(minute) {
		return false
	}
	if strings.ContainsRune(minute, '+') {
		return true
	}
	n, err := strconv.Atoi(minute)
	if err != nil {
		return false
	}
	return n <= 120
}

// EventPlayer 事件中引用的球员 (已根据名单解析)
type EventPlayer struct {
	TeamPlayerID string `json:"teamPlayerId"`
	PlayerID     string `json:"playerId"`
	Name         string `json:"name"`
}

// EventTeams 状态事件中携带的主客队标识
type EventTeams struct {
	HomeTeamID string `json:"homeTeamId"`
	AwayTeamID string `json:"awayTeamId"`
}

// InsertEvent 客户端提交的事件 (未验证)，根据 type 区分具体类型。
// 每种类型只会设置对应的一个变体字段。
type InsertEvent struct {
	Type   EventType
	Minute string

	Status       *InsertStatusEvent
	Commentary   *InsertCommentaryEvent
	Card         *InsertCardEvent
	Goal         *InsertGoalEvent
	Penalty      *InsertPenaltyEvent
	Substitution *InsertSubstitutionEvent
}

// InsertStatusEvent 状态变更事件 (客户端形式)
type InsertStatusEvent struct {
	TargetStatus string `json:"targetStatus"`
}

// InsertCommentaryEvent 解说事件 (客户端形式)
type InsertCommentaryEvent struct {
	Message string `json:"message"`
}

// InsertCardEvent 红黄牌事件 (客户端形式)，球员字段为名单中的 team-player id
type InsertCardEvent struct {
	TeamID       string `json:"teamId"`
	CardType     string `json:"cardType"`
	CardedPlayer string `json:"cardedPlayer"`
}

// InsertGoalEvent 进球事件 (客户端形式)
type InsertGoalEvent struct {
	TeamID          string `json:"teamId"`
	ScoringPlayer   string `json:"scoringPlayer"`
	AssistingPlayer string `json:"assistingPlayer,omitempty"`
	OwnGoal         bool   `json:"ownGoal"`
}

// InsertPenaltyEvent 点球事件 (客户端形式)。countAsGoal=false 表示点球大战中的点球
type InsertPenaltyEvent struct {
	TeamID         string `json:"teamId"`
	ShootingPlayer string `json:"shootingPlayer"`
	CountAsGoal    bool   `json:"countAsGoal"`
	Scored         bool   `json:"scored"`
}

// InsertSubstitutionEvent 换人事件 (客户端形式)
type InsertSubstitutionEvent struct {
	TeamID    string `json:"teamId"`
	PlayerIn  string `json:"playerIn"`
	PlayerOut string `json:"playerOut"`
}

// UnmarshalJSON 根据 type 判别字段解码为对应的事件变体
func (e *InsertEvent) UnmarshalJSON(data []byte) error {
	var head struct {
		Type   EventType `json:"type"`
		Minute string    `json:"minute"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	e.Type = head.Type
	e.Minute = head.Minute

	switch head.Type {
	case EventTypeStatus:
		e.Status = &InsertStatusEvent{}
		return json.Unmarshal(data, e.Status)
	case EventTypeCommentary:
		e.Commentary = &InsertCommentaryEvent{}
		return json.Unmarshal(data, e.Commentary)
	case EventTypeCard:
		e.Card = &InsertCardEvent{}
		return json.Unmarshal(data, e.Card)
	case EventTypeGoal:
		e.Goal = &InsertGoalEvent{}
		return json.Unmarshal(data, e.Goal)
	case EventTypePenalty:
		e.Penalty = &InsertPenaltyEvent{}
		return json.Unmarshal(data, e.Penalty)
	case EventTypeSubstitution:
		e.Substitution = &InsertSubstitutionEvent{}
		return json.Unmarshal(data, e.Substitution)
	}
	return fmt.Errorf("unknown event type: %q", head.Type)
}

// MarshalJSON 将事件变体编码为带 type 判别字段的扁平 JSON
func (e InsertEvent) MarshalJSON() ([]byte, error) {
	base := map[string]interface{}{
		"type":   e.Type,
		"minute": e.Minute,
	}

	var payload interface{}
	switch e.Type {
	case EventTypeStatus:
		payload = e.Status
	case EventTypeCommentary:
		payload = e.Commentary
	case EventTypeCard:
		payload = e.Card
	case EventTypeGoal:
		payload = e.Goal
	case EventTypePenalty:
		payload = e.Penalty
	case EventTypeSubstitution:
		payload = e.Substitution
	default:
		return nil, fmt.Errorf("unknown event type: %q", e.Type)
	}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &base); err != nil {
			return nil, err
		}
	}
	return json.Marshal(base)
}

// MatchEvent 服务端验证并持久化的规范事件 (只追加，不修改不删除)。
// 根据 Type 区分具体载荷，每个事件只会设置一个载荷字段。
type MatchEvent struct {
	ID            string    `json:"id"`
	MatchID       string    `json:"matchId"`
	CompetitionID string    `json:"competitionId"`
	Type          EventType `json:"type"`
	Minute        string    `json:"minute"`
	CreatedAt     time.Time `json:"createdAt"`

	Status       *StatusEventPayload       `json:"status,omitempty"`
	Commentary   *CommentaryEventPayload   `json:"commentary,omitempty"`
	Card         *CardEventPayload         `json:"card,omitempty"`
	Goal         *GoalEventPayload         `json:"goal,omitempty"`
	Penalty      *PenaltyEventPayload      `json:"penalty,omitempty"`
	Substitution *SubstitutionEventPayload `json:"substitution,omitempty"`
}

// StatusEventPayload 状态变更载荷。teams、result 和 mainScore 由服务端
// 根据比赛聚合填充，不信任客户端提交的值
type StatusEventPayload struct {
	TargetStatus MatchStatus `json:"targetStatus"`
	Teams        EventTeams  `json:"teams"`
	Result       MatchResult `json:"result"`
	MainScore    Score       `json:"mainScore"`
}

// CommentaryEventPayload 解说载荷
type CommentaryEventPayload struct {
	Message string `json:"message"`
}

// CardEventPayload 红黄牌载荷
type CardEventPayload struct {
	TeamID       string      `json:"teamId"`
	CardType     CardType    `json:"cardType"`
	CardedPlayer EventPlayer `json:"cardedPlayer"`
}

// GoalEventPayload 进球载荷
type GoalEventPayload struct {
	TeamID          string       `json:"teamId"`
	ScoringPlayer   EventPlayer  `json:"scoringPlayer"`
	AssistingPlayer *EventPlayer `json:"assistingPlayer,omitempty"`
	OwnGoal         bool         `json:"ownGoal"`
}

// PenaltyEventPayload 点球载荷
type PenaltyEventPayload struct {
	TeamID         string      `json:"teamId"`
	ShootingPlayer EventPlayer `json:"shootingPlayer"`
	CountAsGoal    bool        `json:"countAsGoal"`
	Scored         bool        `json:"scored"`
}

// SubstitutionEventPayload 换人载荷
type SubstitutionEventPayload struct {
	TeamID    string      `json:"teamId"`
	PlayerIn  EventPlayer `json:"playerIn"`
	PlayerOut EventPlayer `json:"playerOut"`
}
