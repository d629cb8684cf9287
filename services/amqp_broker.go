package services

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"match-event-service/config"
	"match-event-service/logger"
)

// AMQPBroker 是 MessageBroker 接口的 AMQP 实现。使用 topic exchange，
// routing key 为 "<topic>.<比赛ID>"，保证同一场比赛的消息落在同一队列中有序消费
type AMQPBroker struct {
	config  *config.Config
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex
	done    chan bool
}

// NewAMQPBroker 创建 AMQPBroker 实例并建立连接
func NewAMQPBroker(cfg *config.Config) (*AMQPBroker, error) {
	b := &AMQPBroker{
		config: cfg,
		done:   make(chan bool),
	}

	logger.Printf("Connecting to AMQP: %s", sanitizeAMQPURL(cfg.AMQPURL))

	conn, err := amqp.DialConfig(cfg.AMQPURL, amqp.Config{
		Heartbeat: 60 * time.Second,
		Locale:    "en_US",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to AMQP: %w", err)
	}
	b.conn = conn

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}
	b.channel = channel

	// 设置QoS
	if err := channel.Qos(100, 0, false); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	// 声明 topic exchange
	if err := channel.ExchangeDeclare(
		cfg.AMQPExchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,   // arguments
	); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	logger.Println("Connected to AMQP server")

	return b, nil
}

// Produce 实现 MessageBroker 接口
func (b *AMQPBroker) Produce(msg BrokerMessage) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	routingKey := msg.Topic
	if msg.Key != "" {
		routingKey = msg.Topic + "." + msg.Key
	}

	return b.channel.Publish(
		b.config.AMQPExchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         msg.Value,
		},
	)
}

// Consume 实现 MessageBroker 接口。每个 Topic 对应一个持久化队列，
// 绑定 "<topic>.#" 以接收该 Topic 下所有比赛的消息
func (b *AMQPBroker) Consume(topic string) (<-chan BrokerMessage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	queue, err := b.channel.QueueDeclare(
		topic, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := b.channel.QueueBind(
		queue.Name,
		topic+".#",
		b.config.AMQPExchange,
		false,
		nil,
	); err != nil {
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	deliveries, err := b.channel.Consume(
		queue.Name,
		"",    // consumer
		true,  // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return nil, fmt.Errorf("failed to consume: %w", err)
	}

	logger.Printf("[Broker] Consuming queue %s (binding %s.#)", queue.Name, topic)

	out := make(chan BrokerMessage, 1000)
	go func() {
		defer close(out)
		for {
			select {
			case <-b.done:
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				out <- BrokerMessage{
					Topic: topic,
					Key:   keyFromRoutingKey(topic, d.RoutingKey),
					Value: d.Body,
				}
			}
		}
	}()

	return out, nil
}

// Close 实现 MessageBroker 接口
func (b *AMQPBroker) Close() error {
	logger.Println("[Broker] Stopping AMQP broker...")
	close(b.done)
	if b.conn != nil {
		return b.conn.Close()
	}
	return nil
}

// keyFromRoutingKey 从 routing key 中取回比赛 ID
func keyFromRoutingKey(topic, routingKey string) string {
	return strings.TrimPrefix(strings.TrimPrefix(routingKey, topic), ".")
}

// sanitizeAMQPURL 去掉 URL 中的凭证部分用于日志输出
func sanitizeAMQPURL(url string) string {
	at := strings.LastIndex(url, "@")
	if at < 0 {
		return url
	}
	scheme := strings.Index(url, "://")
	if scheme < 0 {
		return url
	}
	return url[:scheme+3] + "[credentials]" + url[at:]
}
