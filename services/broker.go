package services

import "encoding/json"

// 两类消息各自的 Topic。两类消息的 Key 都必须取比赛 ID，
// 同一场比赛的消息才能保持提交顺序
const (
	// TopicMatchEvents 规范事件流，每个被接受的事件发布一条
	TopicMatchEvents = "match-events"

	// TopicMatchCorrelations 比赛与赛事的关联消息，每场比赛创建时发布一条
	TopicMatchCorrelations = "match-correlations"
)

// BrokerMessage 定义了在 Broker 中传输的消息结构
type BrokerMessage struct {
	Topic string
	Key   string // 比赛 ID，作为分区键保证同一场比赛的消息有序
	Value []byte // JSON 消息体
}

// MessageBroker 定义了消息队列的抽象接口，投递语义为至少一次
type MessageBroker interface {
	// Produce 发送消息到指定的 Topic
	Produce(msg BrokerMessage) error
	// Consume 订阅指定的 Topic，返回一个消息通道
	Consume(topic string) (<-chan BrokerMessage, error)
	// Close 关闭 Broker 连接
	Close() error
}

// CorrelationMessage 比赛创建时发布的一次性关联消息
type CorrelationMessage struct {
	MatchID       string `json:"matchId"`
	CompetitionID string `json:"competitionId"`
}

// EncodeCorrelation 编码关联消息
func EncodeCorrelation(matchID, competitionID string) ([]byte, error) {
	return json.Marshal(CorrelationMessage{MatchID: matchID, CompetitionID: competitionID})
}
