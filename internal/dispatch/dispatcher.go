package dispatch

import (
	"context"
	"errors"
	"fmt"

	"OrderNotifier/internal/domain"
	"OrderNotifier/internal/formatter"
	"OrderNotifier/internal/metrics"
	"OrderNotifier/internal/supervisor"
	"github.com/wb-go/wbf/zlog"
)

// NoOptionsMessage текст аудита, когда у магазина нет подходящего правила.
const NoOptionsMessage = "There is no notifications options"

const (
	taskSend   = "new-order-send"
	taskRecord = "new-order-record"
)

// TaskRunner запускает задачу в фоне, не дожидаясь ее завершения.
type TaskRunner interface {
	Go(ctx context.Context, name string, fn func(ctx context.Context) error)
}

// Dispatcher обрабатывает события новых заказов: выбирает правило магазина,
// отправляет уведомление и пишет ровно одну запись аудита.
type Dispatcher struct {
	shops    domain.ShopRepository
	rules    domain.RuleReader
	sender   domain.ChannelSender
	recorder domain.NotificationRecorder
	tasks    TaskRunner
}

// NewDispatcher создает новый экземпляр Dispatcher.
func NewDispatcher(shops domain.ShopRepository, rules domain.RuleReader, sender domain.ChannelSender,
	recorder domain.NotificationRecorder, tasks TaskRunner) *Dispatcher {
	return &Dispatcher{shops: shops, rules: rules, sender: sender, recorder: recorder, tasks: tasks}
}

// OnNewOrder не возвращает ошибок и не ждет доставки: отправка и запись аудита
// выполняются фоновыми задачами.
func (d *Dispatcher) OnNewOrder(ctx context.Context, order domain.Order) {
	if order.AccountID == "" {
		metrics.DispatchTotal.WithLabelValues(metrics.OutcomeSkipped).Inc()
		zlog.Logger.Debug().Str("order_id", order.ID).Msg("order has no account, skip notifications")
		return
	}

	// Поиск магазина и правил не зависит от отмены вызывающего.
	ctx = context.WithoutCancel(ctx)

	slug := d.shopSlug(ctx, order.ShopID)

	rule, ok := d.matchRule(ctx, order.ShopID)
	if !ok {
		metrics.DispatchTotal.WithLabelValues(metrics.OutcomeNoOptions).Inc()
		d.tasks.Go(ctx, taskRecord, func(ctx context.Context) error {
			d.recorder.Record(ctx, order.AccountID, slug, order.ReferenceID, NoOptionsMessage)
			return nil
		})
		return
	}

	message := formatter.FormatNewOrder(order)
	metrics.DispatchTotal.WithLabelValues(metrics.OutcomeSent).Inc()
	zlog.Logger.Debug().
		Str("order_id", order.ID).
		Str("channel", rule.Channel.String()).
		Msg("dispatching new order notification")

	d.tasks.Go(ctx, taskSend, func(ctx context.Context) error {
		var result string
		err := supervisor.Run(ctx, taskSend, func(ctx context.Context) error {
			result = d.sender.Send(ctx, rule.Channel, rule.Identifier, message)
			return nil
		})

		var logText string
		if err != nil {
			logText = fmt.Sprintf("Error ::: %s ::: %s ::: %s", rule.Identifier, rule.Channel, err.Error())
		} else {
			logText = fmt.Sprintf("%s ::: %s ::: %s ::: %s", result, rule.Identifier, rule.Channel, message)
		}
		d.recorder.Record(ctx, order.AccountID, slug, order.ReferenceID, logText)

		return err
	})
}

func (d *Dispatcher) shopSlug(ctx context.Context, shopID string) string {
	shop, err := d.shops.GetShop(ctx, shopID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			zlog.Logger.Warn().Err(err).Str("shop_id", shopID).Msg("failed to load shop")
		}
		return ""
	}
	return shop.Slug
}

func (d *Dispatcher) matchRule(ctx context.Context, shopID string) (domain.Rule, bool) {
	rules, err := d.rules.GetNotificationRules(ctx, shopID)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("shop_id", shopID).Msg("failed to load notification options")
		return domain.Rule{}, false
	}
	return domain.FirstEnabledRule(rules, domain.HookAfterOrderCreated)
}
