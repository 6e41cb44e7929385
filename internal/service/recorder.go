package service

import (
	"context"

	"OrderNotifier/internal/domain"
	"OrderNotifier/internal/metrics"
	"github.com/wb-go/wbf/zlog"
)

// Recorder пишет аудит уведомлений о новых заказах.
type Recorder struct {
	notifications domain.NotificationService
}

// NewRecorder создает новый экземпляр Recorder.
func NewRecorder(notifications domain.NotificationService) *Recorder {
	return &Recorder{notifications: notifications}
}

// Record создает уведомление типа newOrder. Ошибки только логируются.
func (r *Recorder) Record(ctx context.Context, accountID, shopSlug, orderReferenceID, logText string) {
	_, err := r.notifications.CreateNotification(ctx, domain.CreateNotificationParams{
		AccountID: accountID,
		Type:      domain.TypeNewOrder,
		URL:       NotificationsURL(shopSlug),
		Details:   orderReferenceID,
		Message:   logText,
	})
	if err != nil {
		metrics.RecordFailures.Inc()
		zlog.Logger.Error().Err(err).
			Str("account_id", accountID).
			Str("order_reference", orderReferenceID).
			Msg("Error in createNotification within new order notifications")
	}
}

// NotificationsURL путь к уведомлениям магазина.
func NotificationsURL(shopSlug string) string {
	if shopSlug == "" {
		return "/notifications"
	}
	return "/" + shopSlug + "/notifications"
}
