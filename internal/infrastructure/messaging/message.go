// Package messaging 提供基于 Redis Stream 的任务队列
package messaging

import (
	"encoding/json"
	"time"

	"docgen-ai-api/internal/domain/entity"
)

// Message 消息结构
type Message struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	UserID    string            `json:"user_id,omitempty"`
	ProjectID string            `json:"project_id,omitempty"`
	Payload   json.RawMessage   `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewMessage 创建新消息
func NewMessage(id, msgType, userID, projectID string, payload any) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Message{
		ID:        id,
		Type:      msgType,
		UserID:    userID,
		ProjectID: projectID,
		Payload:   payloadBytes,
		Metadata:  make(map[string]string),
		CreatedAt: time.Now(),
	}, nil
}

// SetMetadata 设置元数据
func (m *Message) SetMetadata(key, value string) {
	if m.Metadata == nil {
		m.Metadata = make(map[string]string)
	}
	m.Metadata[key] = value
}

// GetMetadata 获取元数据
func (m *Message) GetMetadata(key string) string {
	return m.Metadata[key]
}

// UnmarshalPayload 解析消息载荷
func (m *Message) UnmarshalPayload(v any) error {
	return json.Unmarshal(m.Payload, v)
}

// Stream 流定义
type Stream string

const (
	StreamDocGenJobs Stream = "stream:docgen:jobs"
)

// DLQStream 获取对应的死信队列流名称
func (s Stream) DLQStream() string {
	return "dlq:" + string(s)
}

// ConsumerGroup 消费者组定义
type ConsumerGroup string

const (
	ConsumerGroupDocGenWorker ConsumerGroup = "cg-docgen-worker"
)

// 消息类型
const (
	MessageTypeGenerateDocs = "docs_generate"
)

// GenerateDocsPayload 文档生成任务载荷
type GenerateDocsPayload struct {
	JobID         string                       `json:"job_id"`
	UserID        string                       `json:"user_id,omitempty"`
	ProjectID     string                       `json:"project_id,omitempty"`
	Questionnaire entity.QuestionnaireResponse `json:"questionnaire"`
}

// BackoffConfig 重投退避配置
type BackoffConfig struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
}

// DefaultBackoffConfig 默认退避配置
func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{
		Initial:    30 * time.Second,
		Max:        10 * time.Minute,
		Multiplier: 2,
	}
}

// CalculateBackoff 计算第 retryCount 次重投前的等待时间
func (c BackoffConfig) CalculateBackoff(retryCount int) time.Duration {
	backoff := c.Initial
	for i := 1; i < retryCount; i++ {
		backoff = time.Duration(float64(backoff) * c.Multiplier)
		if backoff >= c.Max {
			return c.Max
		}
	}
	return backoff
}
