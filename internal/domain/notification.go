package domain

import (
	"time"

	"github.com/google/uuid"
)

type Status string

// String возвращает строковое представление статуса.
func (s Status) String() string {
	return string(s)
}

// IsValid проверяет, является ли статус валидным.
func (s Status) IsValid() bool {
	switch s {
	case StatusUnread, StatusRead:
		return true
	default:
		return false
	}
}

type NotificationType string

// String возвращает строковое представление типа уведомления.
func (t NotificationType) String() string {
	return string(t)
}

// IsValid проверяет, является ли тип уведомления валидным.
func (t NotificationType) IsValid() bool {
	switch t {
	case TypeOrderCanceled, TypeForAdmin, TypeNewOrder,
		TypeOrderDelivered, TypeOrderProcessing, TypeOrderShipped:
		return true
	default:
		return false
	}
}

const (
	StatusUnread Status = "unread"
	StatusRead   Status = "read"
)

const (
	TypeOrderCanceled   NotificationType = "orderCanceled"
	TypeForAdmin        NotificationType = "forAdmin"
	TypeNewOrder        NotificationType = "newOrder"
	TypeOrderDelivered  NotificationType = "orderDelivered"
	TypeOrderProcessing NotificationType = "orderProcessing"
	TypeOrderShipped    NotificationType = "orderShipped"
)

// Notification запись журнала уведомлений.
type Notification struct {
	ID         uuid.UUID        `json:"_id"`
	To         string           `json:"to"`
	Type       NotificationType `json:"type"`
	URL        string           `json:"url"`
	HasDetails bool             `json:"hasDetails"`
	Details    string           `json:"details,omitempty"`
	Message    string           `json:"message"`
	Status     Status           `json:"status"`
	TimeSent   time.Time        `json:"timeSent"`
}
