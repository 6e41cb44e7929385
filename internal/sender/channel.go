package sender

import (
	"context"
	"time"

	"OrderNotifier/internal/domain"
	"OrderNotifier/internal/metrics"
	"github.com/wb-go/wbf/zlog"
)

// ChannelSender выбирает реализацию по каналу правила.
type ChannelSender struct {
	sms domain.SMSSender
}

// NewChannelSender создает новый экземпляр ChannelSender.
func NewChannelSender(sms domain.SMSSender) *ChannelSender {
	return &ChannelSender{sms: sms}
}

// Send отправляет message получателю identifier через channel.
// Для неизвестного канала ничего не делает и возвращает пустую строку.
func (s *ChannelSender) Send(ctx context.Context, channel domain.Channel, identifier, message string) string {
	start := time.Now()
	var result string

	switch channel {
	case domain.ChannelSMS:
		result = s.sms.SendSMS(ctx, identifier, message)
	default:
		zlog.Logger.Debug().Msgf("unknown channel %q, nothing sent", channel.String())
		return ""
	}

	metrics.ChannelSendDuration.WithLabelValues(channel.String()).Observe(time.Since(start).Seconds())
	return result
}
