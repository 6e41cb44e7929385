package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// NotificationRepository интерфейс для работы с уведомлениями в базе данных.
type NotificationRepository interface {
	// Create сохраняет новое уведомление
	Create(ctx context.Context, n *Notification) error
	// GetByID получает уведомление по ID
	GetByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	// ListByAccount получает уведомления аккаунта.
	// Если limit или offset равны 0, они не включаются в запрос
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]Notification, error)
}

// ShopRepository интерфейс для чтения магазинов.
type ShopRepository interface {
	GetShop(ctx context.Context, shopID string) (*Shop, error)
}

// RuleReader читает правила уведомлений магазина.
type RuleReader interface {
	// GetNotificationRules возвращает правила в порядке их хранения
	GetNotificationRules(ctx context.Context, shopID string) ([]Rule, error)
}

// SettingsRepository интерфейс для работы с настройками уведомлений магазина.
type SettingsRepository interface {
	RuleReader
	// UpdateNotificationRules заменяет список правил магазина
	UpdateNotificationRules(ctx context.Context, shopID string, rules []Rule) error
}

// RedisRepository интерфейс для работы с Redis.
type RedisRepository interface {
	// Get получает значение по ключу
	Get(ctx context.Context, key string) (string, error)
	// SetWithExpiration устанавливает значение с временем жизни.
	SetWithExpiration(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// OrderEventPublisher публикует события новых заказов в очередь.
type OrderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, order Order) error
}
