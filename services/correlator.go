package services

import (
	"context"
	"encoding/json"

	"match-event-service/logger"
)

// Correlator 比赛关联消费者。消费一次性的关联消息并持久化
// UnassignedMatch 记录，供后续的轮次/对阵分配查找比赛。
// 插入是幂等的，重复投递不会产生重复记录
type Correlator struct {
	broker MessageBroker
	stats  StatsStore
}

// NewCorrelator 创建 Correlator 实例
func NewCorrelator(broker MessageBroker, stats StatsStore) *Correlator {
	return &Correlator{
		broker: broker,
		stats:  stats,
	}
}

// Start 订阅关联消息流并开始消费
func (c *Correlator) Start() error {
	msgs, err := c.broker.Consume(TopicMatchCorrelations)
	if err != nil {
		return err
	}

	logger.Printf("[Correlator] Started for topic: %s", TopicMatchCorrelations)

	go c.handleMessages(msgs)

	return nil
}

// handleMessages 循环处理来自 Broker 的消息
func (c *Correlator) handleMessages(msgs <-chan BrokerMessage) {
	for msg := range msgs {
		c.processMessage(msg)
	}
	logger.Println("[Correlator] Message channel closed")
}

// processMessage 处理单条关联消息
func (c *Correlator) processMessage(msg BrokerMessage) {
	var correlation CorrelationMessage
	if err := json.Unmarshal(msg.Value, &correlation); err != nil {
		logger.Errorf("[Correlator] ❌ Failed to unmarshal correlation (key %s): %v", msg.Key, err)
		return
	}

	if correlation.MatchID == "" || correlation.CompetitionID == "" {
		logger.Errorf("[Correlator] ❌ Incomplete correlation message (key %s), dropping", msg.Key)
		return
	}

	if err := c.stats.SaveUnassignedMatch(context.Background(), correlation.MatchID, correlation.CompetitionID); err != nil {
		logger.Errorf("[Correlator] ❌ Failed to save unassigned match %s: %v", correlation.MatchID, err)
		return
	}

	logger.Printf("[Correlator] ✅ Match %s correlated to competition %s", correlation.MatchID, correlation.CompetitionID)
}
