// Package token はアクセストークン/リフレッシュトークンの発行と検証を行う。
// 2種類のトークンは別々のシークレットで署名する
// （アクセス側のシークレットが漏れてもrefreshは偽造できない）。
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// 署名不正・構造不正・期限切れはすべてこれに潰す（fail closed）
var ErrInvalidToken = errors.New("invalid token")

type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// JWTに入れるclaims
type Claims struct {
	Kind Kind `json:"kind"`
	jwt.RegisteredClaims
}

// HS256の発行・検証器
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// DI
func NewIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (i *Issuer) secretFor(kind Kind) ([]byte, error) {
	switch kind {
	case KindAccess:
		return i.accessSecret, nil
	case KindRefresh:
		return i.refreshSecret, nil
	default:
		return nil, fmt.Errorf("unknown token kind: %s", kind)
	}
}

func (i *Issuer) ttlFor(kind Kind) time.Duration {
	if kind == KindRefresh {
		return i.refreshTTL
	}
	return i.accessTTL
}

// アクセストークンを発行
func (i *Issuer) IssueAccess(userID string, now time.Time) (string, time.Time, error) {
	return i.issue(KindAccess, userID, now)
}

// リフレッシュトークンを発行
func (i *Issuer) IssueRefresh(userID string, now time.Time) (string, time.Time, error) {
	return i.issue(KindRefresh, userID, now)
}

func (i *Issuer) issue(kind Kind, userID string, now time.Time) (string, time.Time, error) {
	secret, err := i.secretFor(kind)
	if err != nil {
		return "", time.Time{}, err
	}

	expiresAt := now.Add(i.ttlFor(kind))

	claims := &Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// リフレッシュトークンを検証してsubject（user_id）を返す。
func (i *Issuer) VerifyRefresh(tokenString string) (string, error) {
	claims, err := i.Verify(tokenString, KindRefresh)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// トークンを検証してclaimsを返す。
// 署名違い・壊れた構造・期限切れ・kind違いはすべてErrInvalidToken。
func (i *Issuer) Verify(tokenString string, kind Kind) (*Claims, error) {
	secret, err := i.secretFor(kind)
	if err != nil {
		return nil, err
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || parsed == nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}

	//access secretで署名されたrefresh等を弾く
	if claims.Kind != kind {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
