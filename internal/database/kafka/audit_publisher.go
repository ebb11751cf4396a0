package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"LLMBridge/internal/config"
	"LLMBridge/internal/models"
	"LLMBridge/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// messageWriter 是 kafka.Writer 中发布审计事件需要的部分。
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// AuditPublisher 封装了向 Kafka 发送审计事件的逻辑。
// 事件只包含请求元数据，不包含上传内容或画像原文。
type AuditPublisher struct {
	writer messageWriter
	topic  string
}

// NewAuditPublisher 创建一个异步写入审计主题的发布者，写入失败只记录日志。
func NewAuditPublisher(cfg *config.KafkaConfig, log *logger.Logger) *AuditPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				log.WithError(models.ErrorInfo{Message: err.Error(), Type: "audit_publish"}).
					WithField("dropped", len(messages)).
					Warn("failed to publish audit events")
			}
		},
	}
	return &AuditPublisher{writer: writer, topic: cfg.Topic}
}

// Publish 将 LogEntry 序列化为 JSON 并发送到 Kafka，以 trace id 作为消息键。
func (p *AuditPublisher) Publish(ctx context.Context, entry models.LogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(entry.TraceID),
		Value: data,
	})
	if err != nil {
		return fmt.Errorf("failed to write audit event to kafka: %w", err)
	}
	return nil
}

// Close 关闭底层的 writer 连接，并等待未完成的异步写入。
func (p *AuditPublisher) Close() error {
	return p.writer.Close()
}
