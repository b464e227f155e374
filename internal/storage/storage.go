// Package storage объявляет ошибки, общие для всех реализаций хранилища пользователей.
package storage

import "errors"

var (
	// ErrUserNotFound возвращается, если пользователь с указанным email отсутствует.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists возвращается при попытке создать пользователя с занятым email.
	ErrUserExists = errors.New("user already exists")
)
