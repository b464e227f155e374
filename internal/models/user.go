// Package models содержит доменные структуры портала: пользователя мок-таблицы,
// публичное представление пользователя в сессии, лицензионный токен,
// запись активированной лицензии и данные покупки.
package models

import "time"

// User представляет строку таблицы users.
// Password хранится так, как его отдаёт хранилище: в мок-таблице это открытый текст,
// в PostgreSQL — bcrypt-хэш.
type User struct {
	ID        int64     `json:"id"`         // Автоинкрементный идентификатор
	Email     string    `json:"email"`      // Электронная почта (уникальна)
	Password  string    `json:"password"`   // Пароль или его хэш
	CreatedAt time.Time `json:"created_at"` // Дата создания записи
}

// AuthUser — пользователь, сохраняемый в сессии под ключом auth_user.
type AuthUser struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Public возвращает представление пользователя без пароля.
func (u User) Public() AuthUser {
	return AuthUser{ID: u.ID, Email: u.Email}
}
