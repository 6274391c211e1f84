package usecase

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateSignUp(ctx context.Context, email string, username string, password string) error
	ValidateSignIn(ctx context.Context, email string, password string) error
	ValidateNewPassword(ctx context.Context, password string) error
}

// JWTを発行・検証する約束
type TokenIssuer interface {
	IssueAccess(userID string, now time.Time) (token string, expiresAt time.Time, err error)
	IssueRefresh(userID string, now time.Time) (token string, expiresAt time.Time, err error)
	VerifyRefresh(tokenString string) (userID string, err error)
}

type SignUpRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenDTO struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// handlerがJSONにして返す
type AuthResponse struct {
	User  model.PublicUser `json:"user"`
	Token TokenDTO         `json:"token"`
}

// handlerがCookieに詰めるために必要な値
type AuthResult struct {
	Body              AuthResponse
	RefreshTokenPlain string
	CsrfTokenPlain    string
}

type RefreshResult struct {
	Body              TokenDTO
	RefreshTokenPlain string
	CsrfTokenPlain    string
}

type SuccessResponse struct {
	Message string `json:"message"`
}

// AuthUsecase はサインアップ/サインイン/refresh/サインアウト/パスワード変更を束ねる。
type AuthUsecase struct {
	users     repo.UserRepository
	sessions  *SessionManager
	issuer    TokenIssuer
	hasher    PasswordHasher
	verifier  PasswordVerifier
	validator AuthValidator
	audit     AuditRecorder
	clock     Clock
	idGen     IDGenerator
	policy    model.LockoutPolicy
}

// DI
func NewAuthUsecase(
	users repo.UserRepository,
	sessions *SessionManager,
	issuer TokenIssuer,
	hasher PasswordHasher,
	verifier PasswordVerifier,
	validator AuthValidator,
	audit AuditRecorder,
	clock Clock,
	idGen IDGenerator,
	policy model.LockoutPolicy,
) *AuthUsecase {
	return &AuthUsecase{
		users:     users,
		sessions:  sessions,
		issuer:    issuer,
		hasher:    hasher,
		verifier:  verifier,
		validator: validator,
		audit:     audit,
		clock:     clock,
		idGen:     idGen,
		policy:    policy,
	}
}

// サインアップ。email/usernameの重複はErrDuplicateIdentity。
func (u *AuthUsecase) SignUp(ctx context.Context, req SignUpRequest, prov Provenance) (*AuthResult, error) {
	//入力検証（形式チェックとパスワード強度はvalidatorに寄せる）
	if err := u.validator.ValidateSignUp(ctx, req.Email, req.Username, req.Password); err != nil {
		return nil, err
	}

	//重複チェック（大文字小文字は保存されたままで比較）
	existing, err := u.users.FindByEmailOrUsername(ctx, req.Email, req.Username)
	if err != nil && !errors.Is(err, repo.ErrUserNotFound) {
		return nil, storeErr(err)
	}
	if existing != nil {
		return nil, ErrDuplicateIdentity
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := u.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := u.clock.Now()

	user := &model.User{
		ID:           u.idGen.NewID(),
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: pwHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         model.RoleUser,
		IsActive:     true,
	}

	//保存。同時サインアップのunique違反もErrDuplicateIdentityにする。
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicateUser) {
			return nil, ErrDuplicateIdentity
		}
		return nil, storeErr(err)
	}

	u.audit.Record(ctx, AuditEvent{
		ActorUserID:  &user.ID,
		Action:       model.AuditActionUserRegistration,
		ResourceType: model.AuditResourceUser,
		ResourceID:   &user.ID,
		IPAddress:    prov.IPAddress,
		UserAgent:    prov.UserAgent,
	})

	//token発行 + セッション保存
	pair, err := u.issueTokenPair(ctx, user.ID, now, prov)
	if err != nil {
		return nil, err
	}

	return u.newAuthResult(user, pair)
}

// サインイン。
// ユーザー不在とパスワード違いは同じErrInvalidCredentialsを返す。
func (u *AuthUsecase) SignIn(ctx context.Context, req SignInRequest, prov Provenance) (*AuthResult, error) {
	if err := u.validator.ValidateSignIn(ctx, req.Email, req.Password); err != nil {
		return nil, err
	}

	user, err := u.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storeErr(err)
	}

	now := u.clock.Now()

	//パスワード照合の前にロック状態を見る。
	//ロック中はカウンタを増やさず即失敗。
	lock := user.LockState()
	if lock.Locked(now) {
		return nil, &AccountLockedError{RemainingMinutes: lock.RemainingMinutes(now)}
	}

	//パスワード照合
	if !u.verifier.Verify(req.Password, user.PasswordHash) {
		//失敗を1回記録。しきい値に達したらロックされる。
		if err := u.users.UpdateLockState(ctx, user.ID, lock.Fail(now, u.policy)); err != nil {
			return nil, storeErr(err)
		}
		return nil, ErrInvalidCredentials
	}

	//成功：カウンタとロックをクリアしてlast_login更新
	user.ApplyLockState(lock.Reset())
	user.LastLoginAt = &now
	if err := u.users.Update(ctx, user); err != nil {
		return nil, storeErr(err)
	}

	u.audit.Record(ctx, AuditEvent{
		ActorUserID:  &user.ID,
		Action:       model.AuditActionUserLogin,
		ResourceType: model.AuditResourceUser,
		ResourceID:   &user.ID,
		IPAddress:    prov.IPAddress,
		UserAgent:    prov.UserAgent,
	})

	pair, err := u.issueTokenPair(ctx, user.ID, now, prov)
	if err != nil {
		return nil, err
	}

	return u.newAuthResult(user, pair)
}

// refresh tokenを新しいtokenペアに交換する（1回しか使えない）。
// 失敗理由はすべてErrInvalidRefreshTokenに潰す。
func (u *AuthUsecase) Refresh(ctx context.Context, refreshTokenPlain string, prov Provenance) (*RefreshResult, error) {
	if refreshTokenPlain == "" {
		return nil, ErrInvalidRefreshToken
	}

	//署名・期限の検証
	userID, err := u.issuer.VerifyRefresh(refreshTokenPlain)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	now := u.clock.Now()

	//新しいペアを先に作る
	accessToken, accessExp, err := u.issuer.IssueAccess(userID, now)
	if err != nil {
		return nil, err
	}
	newRefresh, refreshExp, err := u.issuer.IssueRefresh(userID, now)
	if err != nil {
		return nil, err
	}

	//旧をRotated + 新をCreate（1トランザクション。失敗したら両方なし）
	newSession, err := u.sessions.Exchange(ctx, refreshTokenPlain, userID, newRefresh, refreshExp, prov)
	if err != nil {
		return nil, err
	}

	u.audit.Record(ctx, AuditEvent{
		ActorUserID:  &userID,
		Action:       model.AuditActionTokenRefresh,
		ResourceType: model.AuditResourceSession,
		ResourceID:   &newSession.ID,
		IPAddress:    prov.IPAddress,
		UserAgent:    prov.UserAgent,
	})

	//CSRFも更新
	csrfPlain, err := generateSecureToken(32)
	if err != nil {
		return nil, err
	}

	return &RefreshResult{
		Body: TokenDTO{
			AccessToken: accessToken,
			ExpiresIn:   int(accessExp.Sub(now).Seconds()),
		},
		RefreshTokenPlain: newRefresh,
		CsrfTokenPlain:    csrfPlain,
	}, nil
}

// サインアウト。
// refreshTokenPlainがあれば該当セッションだけ、なければ全セッションを無効化する。
// セッションが1つもなくても成功。
func (u *AuthUsecase) SignOut(ctx context.Context, userID string, refreshTokenPlain string, prov Provenance) (*SuccessResponse, error) {
	if refreshTokenPlain != "" {
		if err := u.sessions.InvalidateOne(ctx, userID, refreshTokenPlain); err != nil {
			return nil, err
		}
	} else {
		if err := u.sessions.InvalidateAll(ctx, userID); err != nil {
			return nil, err
		}
	}

	u.audit.Record(ctx, AuditEvent{
		ActorUserID:  &userID,
		Action:       model.AuditActionUserLogout,
		ResourceType: model.AuditResourceSession,
		IPAddress:    prov.IPAddress,
		UserAgent:    prov.UserAgent,
	})

	return &SuccessResponse{Message: "logout success"}, nil
}

// パスワード変更。
// 成功したら全セッションを無効化して再ログインを強制する。
func (u *AuthUsecase) ChangePassword(ctx context.Context, userID string, currentPassword string, newPassword string, prov Provenance) (*SuccessResponse, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storeErr(err)
	}

	//現在のパスワードを照合（違ってもロックカウンタは増やさない）
	if !u.verifier.Verify(currentPassword, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	//新パスワードの強度チェック
	if err := u.validator.ValidateNewPassword(ctx, newPassword); err != nil {
		return nil, err
	}

	newHash, err := u.hasher.Hash(newPassword)
	if err != nil {
		return nil, err
	}

	if err := u.users.UpdatePasswordHash(ctx, userID, newHash); err != nil {
		return nil, storeErr(err)
	}

	//既存セッションを全部無効化
	if err := u.sessions.InvalidateAll(ctx, userID); err != nil {
		return nil, err
	}

	u.audit.Record(ctx, AuditEvent{
		ActorUserID:  &userID,
		Action:       model.AuditActionPasswordChange,
		ResourceType: model.AuditResourceUser,
		ResourceID:   &userID,
		IPAddress:    prov.IPAddress,
		UserAgent:    prov.UserAgent,
	})

	return &SuccessResponse{Message: "password changed"}, nil
}

// 認証済みユーザー自身の情報
func (u *AuthUsecase) Me(ctx context.Context, userID string) (*model.PublicUser, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storeErr(err)
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	pub := user.Public()
	return &pub, nil
}

type tokenPair struct {
	accessToken  string
	refreshToken string
	expiresIn    int
}

// access/refreshを発行してrefresh側をセッションとして保存する
func (u *AuthUsecase) issueTokenPair(ctx context.Context, userID string, now time.Time, prov Provenance) (*tokenPair, error) {
	accessToken, accessExp, err := u.issuer.IssueAccess(userID, now)
	if err != nil {
		return nil, err
	}

	refreshToken, refreshExp, err := u.issuer.IssueRefresh(userID, now)
	if err != nil {
		return nil, err
	}

	if _, err := u.sessions.Create(ctx, userID, refreshToken, refreshExp, prov); err != nil {
		return nil, err
	}

	return &tokenPair{
		accessToken:  accessToken,
		refreshToken: refreshToken,
		expiresIn:    int(accessExp.Sub(now).Seconds()),
	}, nil
}

func (u *AuthUsecase) newAuthResult(user *model.User, pair *tokenPair) (*AuthResult, error) {
	csrfPlain, err := generateSecureToken(32)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		Body: AuthResponse{
			User: user.Public(),
			Token: TokenDTO{
				AccessToken: pair.accessToken,
				ExpiresIn:   pair.expiresIn,
			},
		},
		RefreshTokenPlain: pair.refreshToken,
		CsrfTokenPlain:    csrfPlain,
	}, nil
}

// CSRF用のランダム文字列を作る。
func generateSecureToken(bytesLen int) (string, error) {
	b := make([]byte, bytesLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
