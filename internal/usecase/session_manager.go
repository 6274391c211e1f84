package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// セッション行に残すリクエスト由来のメタ情報（監査・履歴用）
type Provenance struct {
	IPAddress string
	UserAgent string
}

// SessionManager はrefresh tokenとセッション行の対応を管理する。
// DBにはtokenそのものではなくsha256ハッシュだけを保存する。
type SessionManager struct {
	sessions repo.SessionRepository
	tx       repo.TransactionManager
	idGen    IDGenerator
	clock    Clock
}

// DI
func NewSessionManager(
	sessions repo.SessionRepository,
	tx repo.TransactionManager,
	idGen IDGenerator,
	clock Clock,
) *SessionManager {
	return &SessionManager{
		sessions: sessions,
		tx:       tx,
		idGen:    idGen,
		clock:    clock,
	}
}

// Create はActiveなセッションを1行追加する。
func (m *SessionManager) Create(ctx context.Context, userID string, refreshToken string, expiresAt time.Time, prov Provenance) (*model.Session, error) {
	session := m.newSession(userID, refreshToken, expiresAt, prov)
	if err := m.sessions.Create(ctx, session); err != nil {
		return nil, storeErr(err)
	}
	return session, nil
}

// Rotate はtokenに一致するActiveなセッションをRotatedにして、持ち主のuser_idを返す。
// 未知・期限切れ・使用済みはすべてErrInvalidRefreshToken（理由は区別しない）。
func (m *SessionManager) Rotate(ctx context.Context, refreshToken string) (string, error) {
	session, err := m.sessions.MarkRotated(ctx, hashToken(refreshToken), m.clock.Now())
	if err != nil {
		if errors.Is(err, repo.ErrSessionNotFound) {
			return "", ErrInvalidRefreshToken
		}
		return "", storeErr(err)
	}
	return session.UserID, nil
}

// Exchange は「旧をRotated + 新をCreate」を1トランザクションで行う。
// どちらかが失敗したら両方なかったことにする。
// ローテーションできた行の持ち主がexpectedUserIDと違う場合も失敗扱い。
func (m *SessionManager) Exchange(ctx context.Context, oldToken string, expectedUserID string, newToken string, newExpiresAt time.Time, prov Provenance) (*model.Session, error) {
	now := m.clock.Now()
	newSession := m.newSession(expectedUserID, newToken, newExpiresAt, prov)

	err := m.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		rotated, err := r.Sessions().MarkRotated(ctx, hashToken(oldToken), now)
		if err != nil {
			return err
		}
		if rotated.UserID != expectedUserID {
			return repo.ErrSessionNotFound
		}
		return r.Sessions().Create(ctx, newSession)
	})
	if err != nil {
		if errors.Is(err, repo.ErrSessionNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, storeErr(err)
	}

	return newSession, nil
}

// InvalidateAll は指定ユーザーのActiveなセッションを全部Invalidatedにする。
// 対象0件でも成功。
func (m *SessionManager) InvalidateAll(ctx context.Context, userID string) error {
	if err := m.sessions.RevokeAllByUserID(ctx, userID, m.clock.Now()); err != nil {
		return storeErr(err)
	}
	return nil
}

// InvalidateOne はtokenが一致するActiveなセッションだけをInvalidatedにする。
// 一致なしはno-op成功。
func (m *SessionManager) InvalidateOne(ctx context.Context, userID string, refreshToken string) error {
	if err := m.sessions.RevokeByTokenHash(ctx, userID, hashToken(refreshToken), m.clock.Now()); err != nil {
		return storeErr(err)
	}
	return nil
}

func (m *SessionManager) newSession(userID string, refreshToken string, expiresAt time.Time, prov Provenance) *model.Session {
	return &model.Session{
		ID:        m.idGen.NewID(),
		UserID:    userID,
		TokenHash: hashToken(refreshToken),
		UserAgent: prov.UserAgent,
		IPAddress: prov.IPAddress,
		ExpiresAt: expiresAt,
	}
}

// tokenのsha256をbase64urlで返す（DB保存用）
func hashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
