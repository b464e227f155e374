package licence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/licence-portal/internal/lib/jwt"
	"github.com/magabrotheeeer/licence-portal/internal/lib/token"
	"github.com/magabrotheeeer/licence-portal/internal/models"
)

type SignerMock struct {
	mock.Mock
}

func (m *SignerMock) GenerateToken(t models.LicenseToken) (string, error) {
	args := m.Called(t)
	return args.String(0), args.Error(1)
}

func (m *SignerMock) ParseToken(tok string) (*jwt.LicenseClaims, error) {
	args := m.Called(tok)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jwt.LicenseClaims), args.Error(1)
}

var now = time.Date(2025, 1, 15, 8, 30, 0, 0, time.UTC)

func TestCheckKey(t *testing.T) {
	assert.Same(t, ErrInvalidKey, CheckKey("INVALID"))
	assert.Same(t, ErrExpiredKey, CheckKey("EXPIRED"))
	assert.Same(t, ErrLimitReached, CheckKey("LIMIT"))
	assert.NoError(t, CheckKey("invalid"))
	assert.NoError(t, CheckKey("PRO-1234-5678"))
}

func TestNewToken(t *testing.T) {
	tok := NewToken("a@b.c", now)

	assert.Equal(t, "a@b.c", tok.Email)
	assert.Equal(t, []string{"premium-features", "cloud-backup", "priority-support"}, tok.Features)
	assert.Equal(t, "Pro License", tok.LicenseType)
	assert.Equal(t, now, tok.ActivatedAt)
	require.NotNil(t, tok.Expiration)
	assert.Equal(t, now.AddDate(0, 0, 365), *tok.Expiration)

	tok.Features[0] = "mutated"
	assert.Equal(t, "premium-features", Features[0])
}

func TestService_Activate(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr *Error
	}{
		{name: "invalid", key: KeyInvalid, wantErr: ErrInvalidKey},
		{name: "expired", key: KeyExpired, wantErr: ErrExpiredKey},
		{name: "limit", key: KeyLimit, wantErr: ErrLimitReached},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signer := new(SignerMock)
			svc := New(signer, func() time.Time { return now })

			_, err := svc.Activate(context.Background(), "a@b.c", tt.key)
			e, ok := AsError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantErr.Message, e.Message)
			signer.AssertNotCalled(t, "GenerateToken", mock.Anything)
		})
	}
}

func TestService_Activate_Success(t *testing.T) {
	svc := New(jwt.NewJWTMaker("secret"), func() time.Time { return now })

	act, err := svc.Activate(context.Background(), "a@b.c", "PRO-KEY")
	require.NoError(t, err)
	assert.Equal(t, "PRO-KEY", act.License.LicenseKey)
	assert.Equal(t, "a@b.c", act.License.Email)

	decoded := token.Decode(act.Token, now)
	assert.True(t, decoded.IsValid)
	assert.False(t, decoded.IsExpired)
	assert.Equal(t, "a@b.c", decoded.Payload.Email)
	assert.Equal(t, "Pro License", decoded.Payload.LicenseType)

	assert.True(t, token.Decode(act.Token, now.AddDate(1, 0, 1)).IsExpired)
}

func TestService_Activate_SignerError(t *testing.T) {
	signer := new(SignerMock)
	signer.On("GenerateToken", mock.Anything).Return("", errors.New("boom")).Once()
	svc := New(signer, func() time.Time { return now })

	_, err := svc.Activate(context.Background(), "a@b.c", "KEY")
	require.Error(t, err)
	_, ok := AsError(err)
	assert.False(t, ok)
	signer.AssertExpectations(t)
}

func TestService_Verify(t *testing.T) {
	svc := New(jwt.NewJWTMaker("secret"), nil)
	act, err := svc.Activate(context.Background(), "a@b.c", "PRO-KEY")
	require.NoError(t, err)

	lic, err := svc.Verify(context.Background(), act.Token)
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", lic.Email)
	assert.Equal(t, LicenseType, lic.LicenseType)
	assert.Equal(t, Features, lic.Features)
	require.NotNil(t, lic.Expiration)
	assert.WithinDuration(t, lic.ActivatedAt.Add(Duration), *lic.Expiration, time.Second)
}

func TestService_Verify_Rejects(t *testing.T) {
	foreign, err := New(jwt.NewJWTMaker("other"), nil).Activate(context.Background(), "a@b.c", "PRO-KEY")
	require.NoError(t, err)
	svc := New(jwt.NewJWTMaker("secret"), nil)

	for name, tok := range map[string]string{
		"empty":          "",
		"mock signature": mustMockToken(t),
		"foreign secret": foreign.Token,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Verify(context.Background(), tok)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestService_Verify_Canceled(t *testing.T) {
	signer := new(SignerMock)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(signer, nil).Verify(ctx, "tok")
	assert.ErrorIs(t, err, context.Canceled)
	signer.AssertNotCalled(t, "ParseToken", mock.Anything)
}

func mustMockToken(t *testing.T) string {
	t.Helper()
	tok, err := token.Encode(NewToken("a@b.c", now))
	require.NoError(t, err)
	return tok
}
