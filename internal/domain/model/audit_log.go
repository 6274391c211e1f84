package model

import "time"

// ユーザー登録、ログインなどの監査対象操作。
type AuditAction string

const (
	//サインアップ
	AuditActionUserRegistration AuditAction = "USER_REGISTRATION"
	//サインイン
	AuditActionUserLogin AuditAction = "USER_LOGIN"
	//refresh tokenのローテーション
	AuditActionTokenRefresh AuditAction = "TOKEN_REFRESH"
	//サインアウト
	AuditActionUserLogout AuditAction = "USER_LOGOUT"
	//パスワード変更
	AuditActionPasswordChange AuditAction = "PASSWORD_CHANGE"
	//投稿の作成・削除
	AuditActionPostCreate AuditAction = "POST_CREATE"
	AuditActionPostDelete AuditAction = "POST_DELETE"
)

// 何に対する操作か
type AuditResourceType string

const (
	//ユーザーに対する操作。
	AuditResourceUser AuditResourceType = "user"

	//セッションに対する操作。
	AuditResourceSession AuditResourceType = "session"

	//投稿に対する操作。
	AuditResourcePost AuditResourceType = "post"
)

// 監査ログ。追記専用。
// 「誰が」「何を」「どの対象に」やったかを、IP/UserAgent付きで残す。
type AuditLog struct {
	//IDは監査ログの主キー
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作したユーザーのID（未認証の操作ではnil）
	ActorUserID *string `gorm:"type:uuid;index" json:"actor_user_id"`

	//Actionは操作の種類（USER_LOGIN / TOKEN_REFRESH など）。
	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	//対象の種類（user / session / post）。
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	//対象のID（対象が特定できない操作ではnil）
	ResourceID *string `gorm:"index" json:"resource_id"`

	//変更前後のスナップショット。JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before_json"`
	AfterJSON  string `gorm:"type:text" json:"after_json"`

	//リクエスト由来のメタ情報
	IPAddress string `gorm:"type:varchar(64)" json:"ip_address"`
	UserAgent string `gorm:"type:varchar(255)" json:"user_agent"`

	//作成時刻
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
