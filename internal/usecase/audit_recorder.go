package usecase

import (
	"context"
	"encoding/json"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/labstack/gommon/log"
)

// 監査イベント。Before/Afterは任意の値をJSONにして保存する。
type AuditEvent struct {
	ActorUserID  *string
	Action       model.AuditAction
	ResourceType model.AuditResourceType
	ResourceID   *string
	Before       interface{}
	After        interface{}
	IPAddress    string
	UserAgent    string
}

// 監査イベントを書く約束。
// 書き込み失敗で主処理（サインアップ等）を失敗させてはいけない。
type AuditRecorder interface {
	Record(ctx context.Context, ev AuditEvent)
}

type auditLogRecorder struct {
	logs  repo.AuditLogRepository
	clock Clock
	log   *log.Logger
}

// DI
func NewAuditRecorder(logs repo.AuditLogRepository, clock Clock) AuditRecorder {
	return &auditLogRecorder{
		logs:  logs,
		clock: clock,
		log:   log.New("audit"),
	}
}

// best-effortで1件書く。失敗は運用ログに出して握りつぶす。
func (r *auditLogRecorder) Record(ctx context.Context, ev AuditEvent) {
	entry := model.AuditLog{
		ActorUserID:  ev.ActorUserID,
		Action:       ev.Action,
		ResourceType: ev.ResourceType,
		ResourceID:   ev.ResourceID,
		BeforeJSON:   marshalSnapshot(ev.Before),
		AfterJSON:    marshalSnapshot(ev.After),
		IPAddress:    ev.IPAddress,
		UserAgent:    ev.UserAgent,
		CreatedAt:    r.clock.Now(),
	}

	if err := r.logs.Create(ctx, entry); err != nil {
		r.log.Errorf("failed to write audit log (action=%s): %v", ev.Action, err)
	}
}

func marshalSnapshot(v interface{}) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
