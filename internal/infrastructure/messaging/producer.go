// Package messaging 提供消息队列实现
package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("messaging")

// Producer 消息生产者
type Producer struct {
	client *redis.Client
	maxLen int64
}

// NewProducer 创建消息生产者
func NewProducer(client *redis.Client, maxLen int64) *Producer {
	if maxLen <= 0 {
		maxLen = 100000
	}
	return &Producer{
		client: client,
		maxLen: maxLen,
	}
}

// Publish 发布消息到指定流
func (p *Producer) Publish(ctx context.Context, stream Stream, msg *Message) (string, error) {
	ctx, span := tracer.Start(ctx, "producer.Publish",
		trace.WithAttributes(
			attribute.String("stream", string(stream)),
			attribute.String("message.id", msg.ID),
			attribute.String("message.type", msg.Type),
		))
	defer span.End()

	data, err := json.Marshal(msg)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	result, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: string(stream),
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()

	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to publish message: %w", err)
	}

	span.SetAttributes(attribute.String("stream.message_id", result))
	return result, nil
}

// PublishEvalJob 发布评测任务
func (p *Producer) PublishEvalJob(ctx context.Context, job *EvalJobMessage) (string, error) {
	msg, err := NewMessage(job.InteractionID, "eval_job", job.InteractionID, job)
	if err != nil {
		return "", err
	}

	if job.RequestID != "" {
		msg.SetMetadata("request_id", job.RequestID)
	}
	return p.Publish(ctx, StreamEvalJobs, msg)
}

// PublishContentIngest 发布内容入库任务
func (p *Producer) PublishContentIngest(ctx context.Context, ingest *ContentIngestMessage) (string, error) {
	msg, err := NewMessage(ingest.BatchID, "content_ingest", "", ingest)
	if err != nil {
		return "", err
	}

	msg.SetMetadata("source", ingest.Source)
	return p.Publish(ctx, StreamContentIngest, msg)
}

// EvalJobMessage 评测任务消息
type EvalJobMessage struct {
	InteractionID string `json:"interaction_id"`
	RequestID     string `json:"request_id,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// ContentIngestMessage 内容入库消息
type ContentIngestMessage struct {
	BatchID string              `json:"batch_id"`
	Source  string              `json:"source,omitempty"`
	Items   []ContentIngestItem `json:"items"`
}

// ContentIngestItem 单条入库内容
type ContentIngestItem struct {
	ContentID   string `json:"content_id"`
	ContentType string `json:"content_type"`
	Clause      string `json:"clause,omitempty"`
	ClauseType  string `json:"clause_type,omitempty"`
	Class       string `json:"normativity_class,omitempty"`
	IsAmendment bool   `json:"is_amendment,omitempty"`
	Text        string `json:"text"`
}
