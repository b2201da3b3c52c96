package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"hyperliquid-perps/internal/ability"
	"hyperliquid-perps/internal/store"
)

// EventType 表示审计事件类型。
type EventType string

const (
	EventPrecheck EventType = "precheck"
	EventExecute  EventType = "execute"
	EventError    EventType = "error"
)

// Event 封装通用审计事件。
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// InvocationPayload 记录一次调用的入参与结果。
// 入参在落库前已剔除受托方私钥。
type InvocationPayload struct {
	Params  ability.Params `json:"params"`
	Success interface{}    `json:"success,omitempty"`
	Fail    *ability.Fail  `json:"fail,omitempty"`
}

// ErrorPayload 记录预检阶段上抛的基础设施错误。
type ErrorPayload struct {
	Phase   string `json:"phase"`
	Message string `json:"message"`
}

// Service 负责持久化审计事件，写失败只记日志，从不影响调用本身。
type Service struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewService 初始化审计服务，创建所需表结构。
func NewService(store *store.Store, logger *zap.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("audit: store 不能为空")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{
		db:     store.DB(),
		logger: logger,
	}

	if err := s.initSchema(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Service) initSchema() error {
	stmt := `
CREATE TABLE IF NOT EXISTS audit_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	event_type TEXT NOT NULL,
	payload TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_events_type ON audit_events(event_type);
`
	if _, err := s.db.Exec(stmt); err != nil {
		return fmt.Errorf("audit: 初始化表失败: %w", err)
	}
	return nil
}

// Record 写入单个事件。
func (s *Service) Record(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("audit: 序列化事件失败: %w", err)
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO audit_events (event_type, payload, created_at) VALUES (?, ?, ?)`,
		string(event.Type), string(payload), event.Timestamp.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("audit: 写入事件失败: %w", err)
	}

	return nil
}

// RecordPrecheck 记录一次预检调用。
func (s *Service) RecordPrecheck(ctx context.Context, params ability.Params, success interface{}, fail *ability.Fail) {
	if err := s.Record(ctx, Event{
		Type:      EventPrecheck,
		Timestamp: time.Now().UTC(),
		Payload:   InvocationPayload{Params: params.Redacted(), Success: success, Fail: fail},
	}); err != nil {
		s.logger.Warn("记录预检事件失败", zap.Error(err))
	}
}

// RecordExecute 记录一次执行调用。
func (s *Service) RecordExecute(ctx context.Context, params ability.Params, success interface{}, fail *ability.Fail) {
	if err := s.Record(ctx, Event{
		Type:      EventExecute,
		Timestamp: time.Now().UTC(),
		Payload:   InvocationPayload{Params: params.Redacted(), Success: success, Fail: fail},
	}); err != nil {
		s.logger.Warn("记录执行事件失败", zap.Error(err))
	}
}

// RecordError 记录上抛给宿主的基础设施错误。
func (s *Service) RecordError(ctx context.Context, phase string, callErr error) {
	if err := s.Record(ctx, Event{
		Type:      EventError,
		Timestamp: time.Now().UTC(),
		Payload:   ErrorPayload{Phase: phase, Message: callErr.Error()},
	}); err != nil {
		s.logger.Warn("记录错误事件失败", zap.Error(err))
	}
}
