package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Event names.
const (
	GameCreated  = "game_created"
	TokensSet    = "tokens_set"
	TokenDropped = "token_dropped"
	GameOver     = "game_over"
)

// Envelope is the JSON body of every message.
type Envelope struct {
	Event     string         `json:"event"`
	GameID    string         `json:"gameId"`
	Payload   map[string]any `json:"payload"`
	Timestamp time.Time      `json:"timestamp"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes game events to Kafka. A nil *Producer is valid and drops
// everything.
type Producer struct {
	writer messageWriter
	logger *zap.Logger
}

// NewProducer returns nil when brokers or topic are missing.
func NewProducer(brokers []string, topic string, logger *zap.Logger) *Producer {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
	return &Producer{writer: writer, logger: logger.Named("events")}
}

// Publish keys the message by game id so one game's events stay ordered.
func (p *Producer) Publish(ctx context.Context, event, gameID string, payload map[string]any) {
	if p == nil || p.writer == nil {
		return
	}
	body := Envelope{
		Event:     event,
		GameID:    gameID,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
	data, err := json.Marshal(body)
	if err != nil {
		p.logger.Error("encode event", zap.String("event", event), zap.Error(err))
		return
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(gameID), Value: data})
	if err != nil {
		p.logger.Warn("kafka publish failed", zap.String("event", event), zap.String("game_id", gameID), zap.Error(err))
	}
}

func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
