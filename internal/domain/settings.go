package domain

type Hook string

// String возвращает строковое представление хука.
func (h Hook) String() string {
	return string(h)
}

// IsValid проверяет, является ли хук известным.
func (h Hook) IsValid() bool {
	switch h {
	case HookAfterOrderCreated:
		return true
	default:
		return false
	}
}

type Channel string

// String возвращает строковое представление канала.
func (c Channel) String() string {
	return string(c)
}

// IsValid проверяет, является ли канал валидным.
func (c Channel) IsValid() bool {
	switch c {
	case ChannelSMS:
		return true
	default:
		return false
	}
}

const (
	HookAfterOrderCreated Hook = "AFTER_ORDER_CREATED"
)

const (
	ChannelSMS Channel = "SMS"
)

// Rule правило уведомлений магазина: хук -> канал и адрес получателя.
type Rule struct {
	Hook       Hook    `json:"hook" validate:"required,oneof=AFTER_ORDER_CREATED"`
	State      bool    `json:"state"`
	Channel    Channel `json:"channel" validate:"required,oneof=SMS"`
	Identifier string  `json:"identifier" validate:"required"`
}

// FirstEnabledRule возвращает первое включенное правило для хука.
// Порядок правил соответствует порядку в настройках магазина.
func FirstEnabledRule(rules []Rule, hook Hook) (Rule, bool) {
	for _, r := range rules {
		if r.Hook == hook && r.State {
			return r, true
		}
	}
	return Rule{}, false
}
