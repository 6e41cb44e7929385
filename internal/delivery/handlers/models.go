package handlers

import (
	"time"

	"OrderNotifier/internal/domain"
	"github.com/google/uuid"
)

type CreateNotificationRequest struct {
	To      string `json:"to" validate:"required"`
	Type    string `json:"type" validate:"required,notificationtype"`
	URL     string `json:"url" validate:"required"`
	Details string `json:"details"`
	Message string `json:"message" validate:"required"`
}

type UpdateRulesRequest struct {
	Rules []domain.Rule `json:"rules" validate:"dive"`
}

type NotificationResponse struct {
	ID         uuid.UUID `json:"_id"`
	To         string    `json:"to"`
	Type       string    `json:"type"`
	URL        string    `json:"url"`
	HasDetails bool      `json:"hasDetails"`
	Details    string    `json:"details,omitempty"`
	Message    string    `json:"message"`
	Status     string    `json:"status"`
	TimeSent   time.Time `json:"timeSent"`
}

func toNotificationResponse(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:         n.ID,
		To:         n.To,
		Type:       n.Type.String(),
		URL:        n.URL,
		HasDetails: n.HasDetails,
		Details:    n.Details,
		Message:    n.Message,
		Status:     n.Status.String(),
		TimeSent:   n.TimeSent,
	}
}
