package services

import (
	"context"
	"encoding/json"

	"match-event-service/logger"
	"match-event-service/models"
)

// StatsConsumer 统计聚合消费者。从消息队列消费规范事件流，
// 将事件折叠进 TeamStats 和 PlayerStats 两个读侧聚合。
// 与生产侧不共享数据库事务，失败的消息只记录日志后丢弃，
// 没有重试和死信队列
type StatsConsumer struct {
	broker MessageBroker
	stats  StatsStore
}

// NewStatsConsumer 创建 StatsConsumer 实例
func NewStatsConsumer(broker MessageBroker, stats StatsStore) *StatsConsumer {
	return &StatsConsumer{
		broker: broker,
		stats:  stats,
	}
}

// Start 订阅事件流并开始消费
func (c *StatsConsumer) Start() error {
	msgs, err := c.broker.Consume(TopicMatchEvents)
	if err != nil {
		return err
	}

	logger.Printf("[StatsConsumer] Started for topic: %s", TopicMatchEvents)

	go c.handleMessages(msgs)

	return nil
}

// handleMessages 循环处理来自 Broker 的消息
func (c *StatsConsumer) handleMessages(msgs <-chan BrokerMessage) {
	for msg := range msgs {
		c.processMessage(msg)
	}
	logger.Println("[StatsConsumer] Message channel closed")
}

// processMessage 处理单条消息。按事件类型分发，每个分支都是
// 对事件载荷类型标签的穷举匹配
func (c *StatsConsumer) processMessage(msg BrokerMessage) {
	var event models.MatchEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		logger.Errorf("[StatsConsumer] ❌ Failed to unmarshal event (key %s): %v", msg.Key, err)
		return
	}

	ctx := context.Background()

	switch event.Type {
	case models.EventTypeStatus:
		c.handleStatus(ctx, &event)
	case models.EventTypeCard:
		c.handleCard(ctx, &event)
	case models.EventTypeGoal:
		c.handleGoal(ctx, &event)
	case models.EventTypePenalty:
		c.handlePenalty(ctx, &event)
	case models.EventTypeSubstitution, models.EventTypeCommentary:
		// 换人和解说对统计永远没有影响
	default:
		logger.Printf("[StatsConsumer] Unhandled event type: %s", event.Type)
	}
}

// handleStatus 处理状态事件。只有目标为 FINISHED 的状态事件才更新积分榜，
// 其余目标是有意的空操作。FINISHED 但结果为 NONE 违反不变量，丢弃
func (c *StatsConsumer) handleStatus(ctx context.Context, event *models.MatchEvent) {
	status := event.Status
	if status == nil {
		logger.Errorf("[StatsConsumer] ❌ STATUS event %s has no payload", event.ID)
		return
	}

	if status.TargetStatus != models.StatusFinished {
		return
	}

	if status.Result == models.ResultNone {
		logger.Errorf("[StatsConsumer] ❌ FINISHED event %s for match %s carries result NONE, dropping", event.ID, event.MatchID)
		return
	}

	home, err := c.stats.FindOrCreateTeamStats(ctx, event.CompetitionID, status.Teams.HomeTeamID)
	if err != nil {
		logger.Errorf("[StatsConsumer] ❌ Failed to load team stats for %s: %v", status.Teams.HomeTeamID, err)
		return
	}
	away, err := c.stats.FindOrCreateTeamStats(ctx, event.CompetitionID, status.Teams.AwayTeamID)
	if err != nil {
		logger.Errorf("[StatsConsumer] ❌ Failed to load team stats for %s: %v", status.Teams.AwayTeamID, err)
		return
	}

	home.MatchesPlayed++
	away.MatchesPlayed++
	home.GoalsScored += status.MainScore.Home
	home.GoalsConceded += status.MainScore.Away
	away.GoalsScored += status.MainScore.Away
	away.GoalsConceded += status.MainScore.Home

	switch status.Result {
	case models.ResultHomeWin:
		home.Wins++
		home.Points += 3
		away.Losses++
	case models.ResultAwayWin:
		away.Wins++
		away.Points += 3
		home.Losses++
	case models.ResultDraw:
		home.Draws++
		home.Points++
		away.Draws++
		away.Points++
	}

	if err := c.stats.UpdateTeamStats(ctx, home); err != nil {
		logger.Errorf("[StatsConsumer] ❌ Failed to update team stats for %s: %v", home.TeamID, err)
		return
	}
	if err := c.stats.UpdateTeamStats(ctx, away); err != nil {
		logger.Errorf("[StatsConsumer] ❌ Failed to update team stats for %s: %v", away.TeamID, err)
		return
	}

	logger.Printf("[StatsConsumer] ✅ Standings updated for match %s (%s)", event.MatchID, status.Result)
}

// handleCard 处理红黄牌事件。黄牌只创建球员统计行，
// 第二张黄牌和直接红牌各计一张红牌
func (c *StatsConsumer) handleCard(ctx context.Context, event *models.MatchEvent) {
	card := event.Card
	if card == nil {
		logger.Errorf("[StatsConsumer] ❌ CARD event %s has no payload", event.ID)
		return
	}

	stats, err := c.stats.FindOrCreatePlayerStats(ctx, event.CompetitionID,
		card.CardedPlayer.PlayerID, card.TeamID, card.CardedPlayer.Name)
	if err != nil {
		logger.Errorf("[StatsConsumer] ❌ Failed to load player stats for %s: %v", card.CardedPlayer.PlayerID, err)
		return
	}

	if card.CardType == models.CardYellow {
		stats.YellowCards++
	} else if card.CardType.IsRed() {
		stats.RedCards++
	}

	if err := c.stats.UpdatePlayerStats(ctx, stats); err != nil {
		logger.Errorf("[StatsConsumer] ❌ Failed to update player stats for %s: %v", stats.PlayerID, err)
	}
}

// handleGoal 处理进球事件。乌龙球对球员统计是有意的空操作；
// 正常进球为射手计进球，有助攻球员时为其计助攻
func (c *StatsConsumer) handleGoal(ctx context.Context, event *models.MatchEvent) {
	goal := event.Goal
	if goal == nil {
		logger.Errorf("[StatsConsumer] ❌ GOAL event %s has no payload", event.ID)
		return
	}

	if goal.OwnGoal {
		logger.Printf("[StatsConsumer] Own goal in match %s, no player stats impact", event.MatchID)
		return
	}

	scorer, err := c.stats.FindOrCreatePlayerStats(ctx, event.CompetitionID,
		goal.ScoringPlayer.PlayerID, goal.TeamID, goal.ScoringPlayer.Name)
	if err != nil {
		logger.Errorf("[StatsConsumer] ❌ Failed to load player stats for %s: %v", goal.ScoringPlayer.PlayerID, err)
		return
	}
	scorer.Goals++
	if err := c.stats.UpdatePlayerStats(ctx, scorer); err != nil {
		logger.Errorf("[StatsConsumer] ❌ Failed to update player stats for %s: %v", scorer.PlayerID, err)
		return
	}

	if goal.AssistingPlayer == nil {
		return
	}

	assister, err := c.stats.FindOrCreatePlayerStats(ctx, event.CompetitionID,
		goal.AssistingPlayer.PlayerID, goal.TeamID, goal.AssistingPlayer.Name)
	if err != nil {
		logger.Errorf("[StatsConsumer] ❌ Failed to load player stats for %s: %v", goal.AssistingPlayer.PlayerID, err)
		return
	}
	assister.Assists++
	if err := c.stats.UpdatePlayerStats(ctx, assister); err != nil {
		logger.Errorf("[StatsConsumer] ❌ Failed to update player stats for %s: %v", assister.PlayerID, err)
	}
}

// handlePenalty 处理点球事件。只有计入常规比分且射进的点球为射手计进球，
// 射失的点球和点球大战中的点球是有意的空操作
func (c *StatsConsumer) handlePenalty(ctx context.Context, event *models.MatchEvent) {
	penalty := event.Penalty
	if penalty == nil {
		logger.Errorf("[StatsConsumer] ❌ PENALTY event %s has no payload", event.ID)
		return
	}

	if !penalty.CountAsGoal || !penalty.Scored {
		logger.Printf("[StatsConsumer] Penalty in match %s (countAsGoal=%t, scored=%t), no stats impact",
			event.MatchID, penalty.CountAsGoal, penalty.Scored)
		return
	}

	shooter, err := c.stats.FindOrCreatePlayerStats(ctx, event.CompetitionID,
		penalty.ShootingPlayer.PlayerID, penalty.TeamID, penalty.ShootingPlayer.Name)
	if err != nil {
		logger.Errorf("[StatsConsumer] ❌ Failed to load player stats for %s: %v", penalty.ShootingPlayer.PlayerID, err)
		return
	}
	shooter.Goals++
	if err := c.stats.UpdatePlayerStats(ctx, shooter); err != nil {
		logger.Errorf("[StatsConsumer] ❌ Failed to update player stats for %s: %v", shooter.PlayerID, err)
	}
}
