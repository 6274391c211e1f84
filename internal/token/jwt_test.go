package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestIssuer() *Issuer {
	return NewIssuer("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
}

func TestIssuer_IssueAndVerifyAccess(t *testing.T) {
	i := newTestIssuer()
	now := time.Now()

	signed, expiresAt, err := i.IssueAccess("user-1", now)
	assert.NoError(t, err)
	assert.NotEmpty(t, signed)
	assert.WithinDuration(t, now.Add(15*time.Minute), expiresAt, time.Second)

	claims, err := i.Verify(signed, KindAccess)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, KindAccess, claims.Kind)
}

func TestIssuer_VerifyRefresh_ReturnsSubject(t *testing.T) {
	i := newTestIssuer()

	signed, _, err := i.IssueRefresh("user-2", time.Now())
	assert.NoError(t, err)

	userID, err := i.VerifyRefresh(signed)
	assert.NoError(t, err)
	assert.Equal(t, "user-2", userID)
}

// accessのシークレットで署名されたtokenはrefreshとして通らない
func TestIssuer_Verify_KindMismatch(t *testing.T) {
	i := newTestIssuer()

	access, _, err := i.IssueAccess("user-1", time.Now())
	assert.NoError(t, err)

	_, err = i.Verify(access, KindRefresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	refresh, _, err := i.IssueRefresh("user-1", time.Now())
	assert.NoError(t, err)

	_, err = i.Verify(refresh, KindAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

// 別のシークレットで署名されたtokenは拒否
func TestIssuer_Verify_WrongSecret(t *testing.T) {
	other := NewIssuer("other-access", "other-refresh", 15*time.Minute, time.Hour)
	signed, _, err := other.IssueAccess("user-1", time.Now())
	assert.NoError(t, err)

	i := newTestIssuer()
	_, err = i.Verify(signed, KindAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

// 期限切れは拒否
func TestIssuer_Verify_Expired(t *testing.T) {
	i := newTestIssuer()

	//過去に発行されたことにする
	signed, _, err := i.IssueAccess("user-1", time.Now().Add(-time.Hour))
	assert.NoError(t, err)

	_, err = i.Verify(signed, KindAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

// 壊れた文字列は拒否
func TestIssuer_Verify_Garbage(t *testing.T) {
	i := newTestIssuer()

	_, err := i.Verify("not-a-jwt", KindAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = i.Verify("", KindAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
