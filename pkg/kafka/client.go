// Package kafka 提供了与 Kafka 消息队列交互的功能。
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"symptom-checker-go/internal/config"
	"symptom-checker-go/internal/model"
	"symptom-checker-go/pkg/log"
	"time"

	"github.com/segmentio/kafka-go"
)

// maxAttempts 是单条消息处理失败后的最大尝试次数，超过后提交 offset 放弃该消息。
const maxAttempts = 3

// EventHandler 处理一条审计事件，使消费者与具体的落库实现解耦。
type EventHandler interface {
	Handle(ctx context.Context, event model.CheckEvent) error
}

// messageWriter 是 *kafka.Writer 中用到的方法子集。
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer 将审计事件写入 Kafka。
type Producer struct {
	writer messageWriter
}

// InitProducer 初始化 Kafka 生产者。
func InitProducer(cfg config.KafkaConfig) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers(cfg.Brokers)...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	log.Info("Kafka 生产者初始化成功")
	return &Producer{writer: w}
}

// Publish 满足 service.EventPublisher 接口，以事件 ID 作为消息 key。
func (p *Producer) Publish(ctx context.Context, event model.CheckEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal check event: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(event.ID), Value: value})
}

// Close 刷新并关闭底层 writer。
func (p *Producer) Close() error {
	return p.writer.Close()
}

// messageReader 是 *kafka.Reader 中用到的方法子集。
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer 从 Kafka 读取审计事件并交给 EventHandler 落库。
type Consumer struct {
	reader  messageReader
	handler EventHandler
	backoff time.Duration
}

// NewConsumer 创建一个审计事件消费者。
func NewConsumer(cfg config.KafkaConfig, handler EventHandler) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers(cfg.Brokers),
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	return newConsumer(r, handler)
}

func newConsumer(r messageReader, handler EventHandler) *Consumer {
	return &Consumer{reader: r, handler: handler, backoff: 200 * time.Millisecond}
}

// Run 持续消费直到 ctx 被取消。
func (c *Consumer) Run(ctx context.Context) {
	log.Info("Kafka 审计事件消费者已启动")
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				break
			}
			log.Error("从 Kafka 读取消息失败", err)
			break
		}

		if c.process(ctx, m) {
			if err := c.reader.CommitMessages(ctx, m); err != nil {
				log.Errorf("提交 Kafka 消息 offset 失败: %v", err)
			}
		}
	}

	if err := c.reader.Close(); err != nil {
		log.Errorf("关闭 Kafka 消费者失败: %v", err)
	}
}

// process 处理单条消息，返回是否应提交 offset。落库失败时原地重试，
// 超过 maxAttempts 后放弃该消息并提交，避免阻塞分区。
func (c *Consumer) process(ctx context.Context, m kafka.Message) bool {
	var event model.CheckEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		// 消息格式错误，直接提交，避免阻塞队列
		log.Errorf("无法解析 Kafka 消息: offset=%d, err=%v", m.Offset, err)
		return true
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := c.handler.Handle(ctx, event)
		if err == nil {
			return true
		}
		log.Errorf("处理审计事件失败: id=%s, attempt=%d, err=%v", event.ID, attempt, err)
		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			// 停机时不提交，重启后重新投递
			return false
		case <-time.After(c.backoff * time.Duration(attempt)):
		}
	}
	log.Errorf("审计事件多次失败(>=%d)，提交 offset 终止重试: id=%s", maxAttempts, event.ID)
	return true
}

func brokers(list string) []string {
	var out []string
	for _, b := range strings.Split(list, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
