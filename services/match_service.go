package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"match-event-service/logger"
	"match-event-service/models"
)

// MatchService 比赛服务。创建比赛时发布一次性的比赛-赛事关联消息
type MatchService struct {
	matches MatchStore
	broker  MessageBroker
}

// NewMatchService 创建 MatchService 实例
func NewMatchService(matches MatchStore, broker MessageBroker) *MatchService {
	return &MatchService{
		matches: matches,
		broker:  broker,
	}
}

// CreateMatch 创建比赛并发布关联消息。新比赛的状态为 NOT_STARTED，
// 结果为 NONE，所有计数器为零
func (s *MatchService) CreateMatch(ctx context.Context, match *models.Match) error {
	match.ID = uuid.NewString()
	match.Status = models.StatusNotStarted
	match.Result = models.ResultNone
	match.Score = models.Score{}
	match.HalfTimeScore = models.Score{}
	match.Penalties = models.Score{}
	match.RedCards = models.Score{}
	match.CreatedAt = time.Now().UTC()
	match.UpdatedAt = match.CreatedAt

	if err := s.matches.SaveMatch(ctx, match); err != nil {
		return err
	}

	// 发布关联消息，让赛事侧服务得知这场比赛的存在。
	// 分区键与事件流一致，取比赛 ID
	value, err := EncodeCorrelation(match.ID, match.CompetitionID)
	if err != nil {
		logger.Errorf("[MatchService] Failed to encode correlation for match %s: %v", match.ID, err)
		return nil
	}

	if err := s.broker.Produce(BrokerMessage{
		Topic: TopicMatchCorrelations,
		Key:   match.ID,
		Value: value,
	}); err != nil {
		logger.Errorf("[MatchService] Failed to publish correlation for match %s: %v", match.ID, err)
	}

	return nil
}

// GetMatch 获取比赛
func (s *MatchService) GetMatch(ctx context.Context, matchID string) (*models.Match, error) {
	return s.matches.GetMatch(ctx, matchID)
}

// DeleteMatch 软删除比赛
func (s *MatchService) DeleteMatch(ctx context.Context, matchID string) error {
	return s.matches.DeleteMatch(ctx, matchID)
}

// ListEvents 按提交顺序列出一场比赛的规范事件
func (s *MatchService) ListEvents(ctx context.Context, matchID string) ([]*models.MatchEvent, error) {
	return s.matches.ListEvents(ctx, matchID)
}
