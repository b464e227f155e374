// Package mockdb реализует мок-таблицу users в памяти процесса.
// Таблица живёт, пока живёт процесс, и изначально содержит одну демо-запись.
package mockdb

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/magabrotheeeer/licence-portal/internal/models"
	"github.com/magabrotheeeer/licence-portal/internal/storage"
)

// Демо-пользователь, доступный сразу после старта.
const (
	DemoEmail    = "demo@example.com"
	DemoPassword = "password123"
)

// Store — потокобезопасная таблица пользователей.
type Store struct {
	mu     sync.RWMutex
	users  []models.User
	nextID int64
	now    func() time.Time
}

// New создаёт таблицу с демо-пользователем (id=1); следующий id равен 2.
func New() *Store {
	return NewWithClock(time.Now)
}

// NewWithClock создаёт таблицу с заданным источником времени.
func NewWithClock(now func() time.Time) *Store {
	return &Store{
		users: []models.User{{
			ID:        1,
			Email:     DemoEmail,
			Password:  DemoPassword,
			CreatedAt: now().UTC(),
		}},
		nextID: 2,
		now:    now,
	}
}

// GetUserByEmail возвращает пользователя по email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.mockdb.GetUserByEmail"
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
}

// CreateUser добавляет пользователя с открытым паролем и возвращает созданную запись.
func (s *Store) CreateUser(ctx context.Context, email, password string) (*models.User, error) {
	const op = "storage.mockdb.CreateUser"
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrUserExists)
		}
	}

	user := models.User{
		ID:        s.nextID,
		Email:     email,
		Password:  password,
		CreatedAt: s.now().UTC(),
	}
	s.nextID++
	s.users = append(s.users, user)
	return &user, nil
}

// Len возвращает количество строк в таблице.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}
