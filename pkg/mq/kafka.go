// Package mq 提供 Kafka 消费者封装，处理成功后才提交偏移量
package mq

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/wyfcoding/storefront/pkg/logger"
)

// KafkaConfig Kafka 配置
type KafkaConfig struct {
	Brokers        []string
	GroupID        string
	SessionTimeout int
}

// Message Kafka 消息结构
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       string
	Value     []byte
	Time      time.Time
}

// UnmarshalPayload 将消息值解析为 JSON
func (m *Message) UnmarshalPayload(dest any) error {
	return json.Unmarshal(m.Value, dest)
}

// Handler 消息处理函数，返回错误时不提交偏移量
type Handler func(ctx context.Context, msg *Message) error

// KafkaConsumer Kafka 消费者
type KafkaConsumer struct {
	reader *kafka.Reader
	topic  string
}

// NewConsumer 创建 Kafka 消费者
func NewConsumer(cfg KafkaConfig, topic string) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          topic,
		GroupID:        cfg.GroupID,
		SessionTimeout: time.Duration(cfg.SessionTimeout) * time.Second,
		StartOffset:    kafka.LastOffset,
		MaxBytes:       10e6,
	})

	logger.Info(context.Background(), "Kafka consumer created",
		"brokers", cfg.Brokers,
		"topic", topic,
		"group_id", cfg.GroupID,
	)
	return &KafkaConsumer{reader: reader, topic: topic}
}

// Run 持续拉取消息直到 ctx 取消
// 处理失败的消息只记录日志，不提交，重平衡或重启后会重新投递
func (kc *KafkaConsumer) Run(ctx context.Context, handle Handler) error {
	for {
		m, err := kc.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			logger.Error(ctx, "Failed to fetch Kafka message", "topic", kc.topic, "error", err)
			return err
		}

		msg := &Message{
			Topic:     m.Topic,
			Partition: m.Partition,
			Offset:    m.Offset,
			Key:       string(m.Key),
			Value:     m.Value,
			Time:      m.Time,
		}
		if err := handle(ctx, msg); err != nil {
			logger.Error(ctx, "Failed to handle Kafka message",
				"topic", m.Topic,
				"partition", m.Partition,
				"offset", m.Offset,
				"error", err,
			)
			continue
		}
		if err := kc.reader.CommitMessages(ctx, m); err != nil {
			logger.Warn(ctx, "Failed to commit Kafka offset", "offset", m.Offset, "error", err)
		}
	}
}

// Close 关闭消费者
func (kc *KafkaConsumer) Close() error {
	return kc.reader.Close()
}
