package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"match-event-service/logger"
	"match-event-service/models"
	"match-event-service/pkg/common"
)

// MessageBroadcaster 实时广播接口，向订阅了某场比赛的客户端推送紧凑事件
type MessageBroadcaster interface {
	BroadcastEvent(matchID string, event interface{})
}

// CompactEvent 推送给实时订阅者的紧凑事件形式
type CompactEvent struct {
	MatchID string           `json:"matchId"`
	Type    models.EventType `json:"type"`
	Minute  string           `json:"minute"`
	Status  string           `json:"status,omitempty"`
	Score   models.Score     `json:"score"`
	Player  string           `json:"player,omitempty"`
	Message string           `json:"message,omitempty"`
}

// EventService 事件验证与记录服务 (生产侧)。验证在任何状态变更之前完成，
// 验证失败时不做任何部分应用；验证通过后在一个事务中变更比赛状态并追加
// 规范事件，然后发布到消息队列并广播给实时订阅者
type EventService struct {
	matches     MatchStore
	roster      RosterStore
	broker      MessageBroker
	broadcaster MessageBroadcaster
}

// NewEventService 创建 EventService 实例
func NewEventService(matches MatchStore, roster RosterStore, broker MessageBroker, broadcaster MessageBroadcaster) *EventService {
	return &EventService{
		matches:     matches,
		roster:      roster,
		broker:      broker,
		broadcaster: broadcaster,
	}
}

// ProcessEvent 验证并记录一个客户端提交的事件，返回规范事件。
// 验证失败时返回 *common.ValidationError
func (s *EventService) ProcessEvent(ctx context.Context, matchID string, insert *models.InsertEvent) (*models.MatchEvent, error) {
	match, err := s.matches.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	verr := common.NewValidationError()
	if !models.ValidMinute(insert.Minute) {
		verr.Add("minute", "invalid minute format")
	}

	// 在副本上执行状态变更，验证失败时原聚合不受影响
	work := *match

	event := &models.MatchEvent{
		ID:            uuid.NewString(),
		MatchID:       match.ID,
		CompetitionID: match.CompetitionID,
		Type:          insert.Type,
		Minute:        insert.Minute,
		CreatedAt:     time.Now().UTC(),
	}

	switch insert.Type {
	case models.EventTypeStatus:
		err = s.applyStatus(insert.Status, &work, event, verr)
	case models.EventTypeCommentary:
		err = s.applyCommentary(insert.Commentary, event, verr)
	case models.EventTypeCard:
		err = s.applyCard(ctx, insert.Card, &work, event, verr)
	case models.EventTypeGoal:
		err = s.applyGoal(ctx, insert.Goal, &work, event, verr)
	case models.EventTypePenalty:
		err = s.applyPenalty(ctx, insert.Penalty, &work, event, verr)
	case models.EventTypeSubstitution:
		err = s.applySubstitution(ctx, insert.Substitution, &work, event, verr)
	default:
		verr.Add("type", fmt.Sprintf("unknown event type: %q", insert.Type))
	}
	if err != nil {
		return nil, err
	}
	if verr.HasErrors() {
		return nil, verr
	}

	// 在一个事务中写回比赛状态并追加事件
	if err := s.matches.ApplyEvent(ctx, &work, event); err != nil {
		return nil, err
	}

	s.publish(event)
	s.broadcast(&work, event)

	return event, nil
}

// applyStatus 处理状态变更事件。teams、result、mainScore 由服务端填充。
// 目标为 FINISHED 时根据当前比分推导比赛结果并冻结
func (s *EventService) applyStatus(insert *models.InsertStatusEvent, work *models.Match, event *models.MatchEvent, verr *common.ValidationError) error {
	if insert == nil {
		verr.Add("targetStatus", "required")
		return nil
	}

	target, ok := models.ParseMatchStatus(insert.TargetStatus)
	if !ok {
		verr.Add("targetStatus", fmt.Sprintf("unrecognized status: %q", insert.TargetStatus))
		return nil
	}
	if verr.HasErrors() {
		return nil
	}

	result := models.ResultNone
	if target == models.StatusFinished {
		result = deriveResult(work)
	}

	if err := work.ApplyStatus(target, result); err != nil {
		verr.Add("targetStatus", err.Error())
		return nil
	}

	event.Status = &models.StatusEventPayload{
		TargetStatus: target,
		Teams: models.EventTeams{
			HomeTeamID: work.HomeTeamID,
			AwayTeamID: work.AwayTeamID,
		},
		Result:    work.Result,
		MainScore: work.Score,
	}
	return nil
}

// applyCommentary 处理解说事件，无任何统计影响
func (s *EventService) applyCommentary(insert *models.InsertCommentaryEvent, event *models.MatchEvent, verr *common.ValidationError) error {
	if insert == nil || len(insert.Message) == 0 {
		verr.Add("message", "required")
		return nil
	}
	if len(insert.Message) > 1000 {
		verr.Add("message", "must not exceed 1000 characters")
		return nil
	}

	event.Commentary = &models.CommentaryEventPayload{Message: insert.Message}
	return nil
}

// applyCard 处理红黄牌事件，只有第二张黄牌和直接红牌计入红牌计数
func (s *EventService) applyCard(ctx context.Context, insert *models.InsertCardEvent, work *models.Match, event *models.MatchEvent, verr *common.ValidationError) error {
	if insert == nil {
		verr.Add("teamId", "required")
		return nil
	}

	side := requireSide(work, insert.TeamID, verr)

	cardType, ok := models.ParseCardType(insert.CardType)
	if !ok {
		verr.Add("cardType", fmt.Sprintf("unrecognized card type: %q", insert.CardType))
	}

	player, err := s.resolvePlayer(ctx, insert.TeamID, insert.CardedPlayer, "cardedPlayer", verr)
	if err != nil {
		return err
	}
	if verr.HasErrors() {
		return nil
	}

	if cardType.IsRed() {
		work.AddRedCard(side)
	}

	event.Card = &models.CardEventPayload{
		TeamID:       insert.TeamID,
		CardType:     cardType,
		CardedPlayer: *player,
	}
	return nil
}

// applyGoal 处理进球事件。乌龙球不计入主比分，也不允许携带助攻球员
func (s *EventService) applyGoal(ctx context.Context, insert *models.InsertGoalEvent, work *models.Match, event *models.MatchEvent, verr *common.ValidationError) error {
	if insert == nil {
		verr.Add("teamId", "required")
		return nil
	}

	side := requireSide(work, insert.TeamID, verr)

	if insert.OwnGoal && insert.AssistingPlayer != "" {
		verr.Add("assistingPlayer", "own goal cannot have an assisting player")
	}
	if insert.AssistingPlayer != "" && insert.AssistingPlayer == insert.ScoringPlayer {
		verr.Add("assistingPlayer", "must differ from the scoring player")
	}

	scorer, err := s.resolvePlayer(ctx, insert.TeamID, insert.ScoringPlayer, "scoringPlayer", verr)
	if err != nil {
		return err
	}

	var assister *models.EventPlayer
	if insert.AssistingPlayer != "" && insert.AssistingPlayer != insert.ScoringPlayer {
		assister, err = s.resolvePlayer(ctx, insert.TeamID, insert.AssistingPlayer, "assistingPlayer", verr)
		if err != nil {
			return err
		}
	}
	if verr.HasErrors() {
		return nil
	}

	if !insert.OwnGoal {
		work.AddGoal(side)
	}

	event.Goal = &models.GoalEventPayload{
		TeamID:          insert.TeamID,
		ScoringPlayer:   *scorer,
		AssistingPlayer: assister,
		OwnGoal:         insert.OwnGoal,
	}
	return nil
}

// applyPenalty 处理点球事件。只有计入常规比分且射进的点球改变主比分；
// 点球大战 (countAsGoal=false) 中射进的点球只计入点球计数
func (s *EventService) applyPenalty(ctx context.Context, insert *models.InsertPenaltyEvent, work *models.Match, event *models.MatchEvent, verr *common.ValidationError) error {
	if insert == nil {
		verr.Add("teamId", "required")
		return nil
	}

	side := requireSide(work, insert.TeamID, verr)

	shooter, err := s.resolvePlayer(ctx, insert.TeamID, insert.ShootingPlayer, "shootingPlayer", verr)
	if err != nil {
		return err
	}
	if verr.HasErrors() {
		return nil
	}

	if insert.Scored {
		if insert.CountAsGoal {
			work.AddGoal(side)
		} else {
			work.AddPenalty(side)
		}
	}

	event.Penalty = &models.PenaltyEventPayload{
		TeamID:         insert.TeamID,
		ShootingPlayer: *shooter,
		CountAsGoal:    insert.CountAsGoal,
		Scored:         insert.Scored,
	}
	return nil
}

// applySubstitution 处理换人事件，无任何统计影响
func (s *EventService) applySubstitution(ctx context.Context, insert *models.InsertSubstitutionEvent, work *models.Match, event *models.MatchEvent, verr *common.ValidationError) error {
	if insert == nil {
		verr.Add("teamId", "required")
		return nil
	}

	requireSide(work, insert.TeamID, verr)

	if insert.PlayerIn != "" && insert.PlayerIn == insert.PlayerOut {
		verr.Add("playerIn", "must differ from the player going out")
	}

	playerIn, err := s.resolvePlayer(ctx, insert.TeamID, insert.PlayerIn, "playerIn", verr)
	if err != nil {
		return err
	}
	playerOut, err := s.resolvePlayer(ctx, insert.TeamID, insert.PlayerOut, "playerOut", verr)
	if err != nil {
		return err
	}
	if verr.HasErrors() {
		return nil
	}

	event.Substitution = &models.SubstitutionEventPayload{
		TeamID:    insert.TeamID,
		PlayerIn:  *playerIn,
		PlayerOut: *playerOut,
	}
	return nil
}

// resolvePlayer 根据 team-player id 从名单中解析球员，并确认球员属于
// 事件指定的球队。名单中不存在记为字段验证错误，基础设施错误向上传播
func (s *EventService) resolvePlayer(ctx context.Context, teamID, teamPlayerID, field string, verr *common.ValidationError) (*models.EventPlayer, error) {
	if teamPlayerID == "" {
		verr.Add(field, "required")
		return nil, nil
	}

	tp, err := s.roster.GetTeamPlayer(ctx, teamPlayerID)
	if errors.Is(err, common.ErrNotFound) {
		verr.Add(field, fmt.Sprintf("player %s not found in roster", teamPlayerID))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if tp.TeamID != teamID {
		verr.Add(field, fmt.Sprintf("player %s does not play for team %s", teamPlayerID, teamID))
		return nil, nil
	}

	return &models.EventPlayer{
		TeamPlayerID: tp.ID,
		PlayerID:     tp.PlayerID,
		Name:         tp.Name,
	}, nil
}

// publish 将规范事件发布到消息队列，分区键为比赛 ID。
// 发布失败只记录日志，事件已持久化，不回滚请求
func (s *EventService) publish(event *models.MatchEvent) {
	value, err := json.Marshal(event)
	if err != nil {
		logger.Errorf("[EventService] Failed to marshal event %s: %v", event.ID, err)
		return
	}

	if err := s.broker.Produce(BrokerMessage{
		Topic: TopicMatchEvents,
		Key:   event.MatchID,
		Value: value,
	}); err != nil {
		logger.Errorf("[EventService] Failed to publish event %s: %v", event.ID, err)
	}
}

// broadcast 向比赛的实时订阅者推送紧凑事件
func (s *EventService) broadcast(match *models.Match, event *models.MatchEvent) {
	if s.broadcaster == nil {
		return
	}

	compact := CompactEvent{
		MatchID: match.ID,
		Type:    event.Type,
		Minute:  event.Minute,
		Score:   match.Score,
	}

	switch event.Type {
	case models.EventTypeStatus:
		compact.Status = string(event.Status.TargetStatus)
	case models.EventTypeCommentary:
		compact.Message = event.Commentary.Message
	case models.EventTypeCard:
		compact.Player = event.Card.CardedPlayer.Name
	case models.EventTypeGoal:
		compact.Player = event.Goal.ScoringPlayer.Name
	case models.EventTypePenalty:
		compact.Player = event.Penalty.ShootingPlayer.Name
	case models.EventTypeSubstitution:
		compact.Player = event.Substitution.PlayerIn.Name
	}

	s.broadcaster.BroadcastEvent(match.ID, compact)
}

// requireSide 确认球队 ID 是比赛中的一方
func requireSide(match *models.Match, teamID string, verr *common.ValidationError) models.Side {
	if teamID == "" {
		verr.Add("teamId", "required")
		return models.SideNone
	}
	side := match.SideOf(teamID)
	if side == models.SideNone {
		verr.Add("teamId", fmt.Sprintf("team %s is not playing in this match", teamID))
	}
	return side
}

// deriveResult 根据当前比分推导比赛结果，常规比分持平时由点球大战决出
func deriveResult(match *models.Match) models.MatchResult {
	switch {
	case match.Score.Home > match.Score.Away:
		return models.ResultHomeWin
	case match.Score.Away > match.Score.Home:
		return models.ResultAwayWin
	case match.Penalties.Home > match.Penalties.Away:
		return models.ResultHomeWin
	case match.Penalties.Away > match.Penalties.Home:
		return models.ResultAwayWin
	}
	return models.ResultDraw
}
