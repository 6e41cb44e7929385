package domain

import (
	"context"

	"github.com/google/uuid"
)

// NotificationService интерфейс для работы с уведомлениями.
type NotificationService interface {
	// CreateNotification создает новое уведомление
	CreateNotification(ctx context.Context, params CreateNotificationParams) (*Notification, error)
	// GetNotificationByID получает уведомление по ID
	GetNotificationByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	// ListNotifications получает уведомления аккаунта, новые первыми
	ListNotifications(ctx context.Context, accountID string, limit, offset int) ([]Notification, error)
}

// CreateNotificationParams параметры для создания уведомления.
type CreateNotificationParams struct {
	AccountID string
	Type      NotificationType
	URL       string
	Details   string
	Message   string
}

// NotificationRecorder пишет запись аудита о попытке отправки.
type NotificationRecorder interface {
	// Record никогда не возвращает ошибку, сбои только логируются.
	Record(ctx context.Context, accountID, shopSlug, orderReferenceID, logText string)
}

// OrderDispatcher обрабатывает событие нового заказа.
type OrderDispatcher interface {
	OnNewOrder(ctx context.Context, order Order)
}
