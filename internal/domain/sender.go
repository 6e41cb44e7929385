package domain

import "context"

// ChannelSender отправляет сообщение через канал и возвращает описание результата.
// Ошибки доставки не возвращаются, они становятся частью описания.
type ChannelSender interface {
	Send(ctx context.Context, channel Channel, identifier, message string) string
}

// SMSSender отправляет SMS через шлюз.
type SMSSender interface {
	SendSMS(ctx context.Context, recipient, message string) string
}
