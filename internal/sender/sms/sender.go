package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"OrderNotifier/internal/formatter"
	"OrderNotifier/internal/metrics"
	"github.com/wb-go/wbf/zlog"
)

// HTTPDoer минимальный HTTP клиент, нужен для подмены в тестах.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config параметры SMS-шлюза. Значения не валидируются:
// пустые поля дают некорректный, но не фатальный запрос.
type Config struct {
	Endpoint string
	Username string
	Password string
	Tag      string
	Timeout  time.Duration
}

// GatewaySender отправляет SMS одним GET запросом к шлюзу.
type GatewaySender struct {
	cfg    Config
	client HTTPDoer
}

// NewGatewaySender создает новый экземпляр GatewaySender.
func NewGatewaySender(cfg Config, client HTTPDoer) *GatewaySender {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &GatewaySender{cfg: cfg, client: client}
}

// SendSMS отправляет сообщение и возвращает описание результата.
// Любой HTTP ответ считается доставкой, ошибки транспорта попадают в описание.
func (s *GatewaySender) SendSMS(ctx context.Context, recipient, message string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.requestURL(recipient, message), nil)
	if err != nil {
		return errorDescriptor(err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		zlog.Logger.Warn().Err(err).Str("recipient", recipient).Msg("sms gateway request failed")
		return errorDescriptor(err)
	}
	defer func(body io.ReadCloser) {
		_ = body.Close()
	}(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		zlog.Logger.Warn().Err(err).Str("recipient", recipient).Msg("failed to read sms gateway response")
		return errorDescriptor(err)
	}

	zlog.Logger.Debug().Int("status", resp.StatusCode).Str("recipient", recipient).Msg("sms gateway responded")
	return fmt.Sprintf("(%d) %s", resp.StatusCode, serializeBody(body))
}

// requestURL собирает адрес запроса. Токены перевода строки в message
// уже закодированы и передаются как есть.
func (s *GatewaySender) requestURL(recipient, message string) string {
	return s.cfg.Endpoint +
		"?username=" + url.QueryEscape(s.cfg.Username) +
		"&pass=" + url.QueryEscape(s.cfg.Password) +
		"&header=" + url.QueryEscape(s.cfg.Tag) +
		"&recipient=" + url.QueryEscape(recipient) +
		"&message=" + escapeMessage(message)
}

func escapeMessage(message string) string {
	parts := strings.Split(message, formatter.NewLineToken)
	for i, p := range parts {
		parts[i] = url.QueryEscape(p)
	}
	return strings.Join(parts, formatter.NewLineToken)
}

// serializeBody возвращает тело ответа в JSON: JSON тело сжимается,
// остальное кодируется как строка.
func serializeBody(body []byte) string {
	if json.Valid(body) {
		var buf bytes.Buffer
		if err := json.Compact(&buf, body); err == nil {
			return buf.String()
		}
	}
	data, _ := json.Marshal(string(body))
	return string(data)
}

func errorDescriptor(err error) string {
	metrics.ChannelSendErrors.WithLabelValues("SMS").Inc()
	msg := "-"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return "SMS channel error: " + msg
}
