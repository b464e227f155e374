// Package session хранит состояние посетителя на стороне сервера.
//
// Сессия — набор строковых значений под фиксированными ключами. Store работает
// с одной сессией, Backend выдаёт Store по идентификатору сессии из cookie.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/licence-portal/internal/cache"
)

// Ключи сессии.
const (
	KeyAuthUser         = "auth_user"
	KeyUserLicense      = "user_license"
	KeyLicenseToken     = "license_token"
	KeyActivatedLicense = "activated_license"
	KeyPaymentRef       = "paymentRef"
	KeyPurchaseData     = "purchaseData"
	KeySelectedAddOns   = "selectedAddOns"
)

// Store — хранилище значений одной сессии.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
}

// Backend выдаёт хранилище для сессии с указанным идентификатором.
// Create регистрирует новый идентификатор, Exists сообщает, известен ли он.
type Backend interface {
	Scope(id string) Store
	Create(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}

// keyCreatedAt — служебное поле, которым Create отмечает выданную сессию.
const keyCreatedAt = "created_at"

// MemoryOption настраивает MemoryBackend.
type MemoryOption func(*MemoryBackend)

// WithTTL задаёт срок жизни сессии с момента последней записи. ttl <= 0 означает без срока.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(b *MemoryBackend) { b.ttl = ttl }
}

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) MemoryOption {
	return func(b *MemoryBackend) { b.now = now }
}

// MemoryBackend хранит сессии в памяти процесса. Сессия с истёкшим TTL
// считается отсутствующей до удаления очередным Sweep.
type MemoryBackend struct {
	mu       sync.RWMutex
	sessions map[string]*memorySession
	ttl      time.Duration
	now      func() time.Time
}

type memorySession struct {
	values    map[string]string
	touchedAt time.Time
}

// NewMemoryBackend создаёт пустой MemoryBackend.
func NewMemoryBackend(opts ...MemoryOption) *MemoryBackend {
	b := &MemoryBackend{
		sessions: make(map[string]*memorySession),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Scope возвращает хранилище сессии id.
func (b *MemoryBackend) Scope(id string) Store {
	return &memoryStore{backend: b, id: id}
}

// Create заводит пустую сессию id.
func (b *MemoryBackend) Create(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	b.sessions[id] = &memorySession{
		values:    map[string]string{keyCreatedAt: now.UTC().Format(time.RFC3339)},
		touchedAt: now,
	}
	return nil
}

// Exists сообщает, есть ли живая сессия id.
func (b *MemoryBackend) Exists(_ context.Context, id string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.live(id)
	return ok, nil
}

// Sweep удаляет истёкшие сессии и возвращает их число.
func (b *MemoryBackend) Sweep() int {
	if b.ttl <= 0 {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	removed := 0
	for id, sess := range b.sessions {
		if b.expired(sess) {
			delete(b.sessions, id)
			removed++
		}
	}
	return removed
}

// Run вызывает Sweep с периодом interval до отмены ctx.
func (b *MemoryBackend) Run(ctx context.Context, log *slog.Logger, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := b.Sweep(); n > 0 {
				log.Debug("expired sessions removed", slog.Int("count", n))
			}
		case <-ctx.Done():
			return
		}
	}
}

func (b *MemoryBackend) expired(sess *memorySession) bool {
	return b.ttl > 0 && b.now().Sub(sess.touchedAt) >= b.ttl
}

// live вызывается под мьютексом.
func (b *MemoryBackend) live(id string) (*memorySession, bool) {
	sess, ok := b.sessions[id]
	if !ok || b.expired(sess) {
		return nil, false
	}
	return sess, true
}

type memoryStore struct {
	backend *MemoryBackend
	id      string
}

func (s *memoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.backend.mu.RLock()
	defer s.backend.mu.RUnlock()
	sess, ok := s.backend.live(s.id)
	if !ok {
		return "", false, nil
	}
	v, ok := sess.values[key]
	return v, ok, nil
}

func (s *memoryStore) Set(_ context.Context, key, value string) error {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	sess, ok := s.backend.live(s.id)
	if !ok {
		sess = &memorySession{values: make(map[string]string)}
		s.backend.sessions[s.id] = sess
	}
	sess.values[key] = value
	sess.touchedAt = s.backend.now()
	return nil
}

func (s *memoryStore) Remove(_ context.Context, keys ...string) error {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	sess, ok := s.backend.live(s.id)
	if !ok {
		delete(s.backend.sessions, s.id)
		return nil
	}
	for _, k := range keys {
		delete(sess.values, k)
	}
	if len(sess.values) == 0 {
		delete(s.backend.sessions, s.id)
	}
	return nil
}

// RedisBackend хранит каждую сессию в хэше session:<id> с общим TTL.
type RedisBackend struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewRedisBackend создаёт RedisBackend. TTL продлевается при каждой записи.
func NewRedisBackend(c *cache.Cache, ttl time.Duration) *RedisBackend {
	return &RedisBackend{cache: c, ttl: ttl}
}

// Scope возвращает хранилище сессии id.
func (b *RedisBackend) Scope(id string) Store {
	return &redisStore{backend: b, key: redisKey(id)}
}

// Create заводит сессию id с отметкой времени создания.
func (b *RedisBackend) Create(ctx context.Context, id string) error {
	return b.cache.HSet(ctx, redisKey(id), keyCreatedAt, time.Now().UTC().Format(time.RFC3339), b.ttl)
}

// Exists сообщает, хранится ли сессия id.
func (b *RedisBackend) Exists(ctx context.Context, id string) (bool, error) {
	return b.cache.Exists(ctx, redisKey(id))
}

func redisKey(id string) string {
	return "session:" + id
}

type redisStore struct {
	backend *RedisBackend
	key     string
}

func (s *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	return s.backend.cache.HGet(ctx, s.key, key)
}

func (s *redisStore) Set(ctx context.Context, key, value string) error {
	return s.backend.cache.HSet(ctx, s.key, key, value, s.backend.ttl)
}

func (s *redisStore) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.backend.cache.HDel(ctx, s.key, keys...)
}
