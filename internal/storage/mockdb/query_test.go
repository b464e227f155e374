package mockdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/licence-portal/internal/storage"
)

func TestDispatch(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		params   []any
		wantRows []Row
	}{
		{
			name:   "select existing user returns full row",
			query:  "SELECT id, email, password FROM users WHERE email = ?",
			params: []any{DemoEmail},
			wantRows: []Row{{
				"id":         int64(1),
				"email":      DemoEmail,
				"password":   DemoPassword,
				"created_at": "2025-03-01T12:00:00Z",
			}},
		},
		{
			name:     "select unknown user",
			query:    "SELECT id, email, password FROM users WHERE email = ?",
			params:   []any{"ghost@example.com"},
			wantRows: []Row{},
		},
		{
			name:   "select id query matches first rule",
			query:  "SELECT id FROM users WHERE email = ?",
			params: []any{DemoEmail},
			wantRows: []Row{{
				"id":         int64(1),
				"email":      DemoEmail,
				"password":   DemoPassword,
				"created_at": "2025-03-01T12:00:00Z",
			}},
		},
		{
			name:     "insert",
			query:    "INSERT INTO users (email, password) VALUES (?, ?) RETURNING id, email",
			params:   []any{"new@example.com", "hunter22"},
			wantRows: []Row{{"id": int64(2), "email": "new@example.com"}},
		},
		{
			name:     "select without params matches nothing",
			query:    "SELECT * FROM users WHERE email = ?",
			wantRows: []Row{},
		},
		{
			name:     "select with non string email matches nothing",
			query:    "SELECT * FROM users WHERE email = ?",
			params:   []any{42.0},
			wantRows: []Row{},
		},
		{
			name:     "select id with nil email matches nothing",
			query:    "SELECT id FROM users WHERE email = ?",
			params:   []any{nil},
			wantRows: []Row{},
		},
		{
			name:     "unrecognized query",
			query:    "DELETE FROM users",
			wantRows: []Row{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewWithClock(fixedClock)

			rows, err := Dispatch(context.Background(), s, tt.query, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRows, rows)
		})
	}
}

func TestDispatch_InsertThenSelect(t *testing.T) {
	ctx := context.Background()
	s := NewWithClock(fixedClock)

	_, err := Dispatch(ctx, s, "INSERT INTO users (email, password) VALUES (?, ?)", []any{"a@example.com", "pw1234"})
	require.NoError(t, err)

	rows, err := Dispatch(ctx, s, "SELECT * FROM users WHERE email = ?", []any{"a@example.com"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "pw1234", rows[0]["password"])
}

func TestDispatch_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate insert", func(t *testing.T) {
		s := New()
		_, err := Dispatch(ctx, s, "INSERT INTO users (email, password) VALUES (?, ?)", []any{DemoEmail, "x"})
		assert.ErrorIs(t, err, storage.ErrUserExists)
	})

	t.Run("insert with missing password", func(t *testing.T) {
		s := New()
		_, err := Dispatch(ctx, s, "INSERT INTO users (email, password) VALUES (?, ?)", []any{"only@example.com"})
		assert.ErrorIs(t, err, ErrBadParams)
		assert.Equal(t, 1, s.Len())
	})

	t.Run("insert with non string email", func(t *testing.T) {
		s := New()
		_, err := Dispatch(ctx, s, "INSERT INTO users (email, password) VALUES (?, ?)", []any{42.0, "pw"})
		assert.ErrorIs(t, err, ErrBadParams)
	})
}
