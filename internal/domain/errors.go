package domain

import "errors"

var (
	// ErrNotFound ошибка, когда запись не найдена.
	ErrNotFound = errors.New("not found")
	// ErrInvalidType ошибка невалидного типа уведомления.
	ErrInvalidType = errors.New("invalid notification type")
	// ErrEmptyAccount ошибка пустого получателя.
	ErrEmptyAccount = errors.New("account is empty")
	// ErrEmptyURL ошибка пустого url уведомления.
	ErrEmptyURL = errors.New("url is empty")
	// ErrEmptyMessage ошибка пустого сообщения.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrInvalidRule ошибка невалидного правила уведомлений.
	ErrInvalidRule = errors.New("invalid notification rule")
)
