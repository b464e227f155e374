package mockdb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/magabrotheeeer/licence-portal/internal/models"
	"github.com/magabrotheeeer/licence-portal/internal/storage"
)

// Row — строка результата запроса в виде колонка → значение.
type Row map[string]any

// Repository — минимальный набор операций над таблицей users, на которые
// раскладываются поддерживаемые запросы.
type Repository interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, email, password string) (*models.User, error)
}

// ErrBadParams возвращается, если параметры запроса не подходят под его форму.
var ErrBadParams = errors.New("bad query params")

// Dispatch выполняет запрос по подстрокам, без разбора SQL.
// Правила проверяются по порядку:
//  1. SELECT ... users WHERE email → полная строка пользователя params[0] или пусто;
//     отсутствующий или нестроковый params[0] ни с чем не совпадает;
//  2. INSERT INTO users → создание (params[0], params[1]), результат [{id, email}];
//  3. SELECT id FROM users WHERE email → [{id}];
//  4. всё остальное → пусто.
//
// Третье правило недостижимо: любой такой запрос уже совпадает с первым.
func Dispatch(ctx context.Context, repo Repository, query string, params []any) ([]Row, error) {
	const op = "storage.mockdb.Dispatch"

	switch {
	case strings.Contains(query, "SELECT") && strings.Contains(query, "users WHERE email"):
		email, ok := emailParam(params)
		if !ok {
			return []Row{}, nil
		}
		user, err := lookup(ctx, repo, email)
		if err != nil || user == nil {
			return []Row{}, errOrNil(op, err)
		}
		return []Row{{
			"id":         user.ID,
			"email":      user.Email,
			"password":   user.Password,
			"created_at": user.CreatedAt.Format(time.RFC3339Nano),
		}}, nil

	case strings.Contains(query, "INSERT INTO users"):
		email, err := stringParam(params, 0)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		password, err := stringParam(params, 1)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		user, err := repo.CreateUser(ctx, email, password)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return []Row{{"id": user.ID, "email": user.Email}}, nil

	case strings.Contains(query, "SELECT id FROM users WHERE email"):
		email, ok := emailParam(params)
		if !ok {
			return []Row{}, nil
		}
		user, err := lookup(ctx, repo, email)
		if err != nil || user == nil {
			return []Row{}, errOrNil(op, err)
		}
		return []Row{{"id": user.ID}}, nil
	}

	return []Row{}, nil
}

// lookup возвращает nil без ошибки, если пользователь не найден.
func lookup(ctx context.Context, repo Repository, email string) (*models.User, error) {
	user, err := repo.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrUserNotFound) {
		return nil, nil
	}
	return user, err
}

func errOrNil(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

func stringParam(params []any, i int) (string, error) {
	if i >= len(params) {
		return "", fmt.Errorf("%w: missing param %d", ErrBadParams, i)
	}
	s, ok := params[i].(string)
	if !ok {
		return "", fmt.Errorf("%w: param %d is not a string", ErrBadParams, i)
	}
	return s, nil
}

// emailParam возвращает params[0], если это строка.
func emailParam(params []any) (string, bool) {
	if len(params) == 0 {
		return "", false
	}
	email, ok := params[0].(string)
	return email, ok
}
