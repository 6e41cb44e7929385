package formatter

import (
	"strconv"
	"strings"

	"OrderNotifier/internal/domain"
)

// NewLineToken перевод строки в том виде, в каком его ожидает SMS-шлюз
// в параметре message запроса.
const NewLineToken = "%0a"

// FormatNewOrder формирует текст уведомления о новом заказе.
// Учитываются только первая группа доставки и первый платеж.
func FormatNewOrder(order domain.Order) string {
	var b strings.Builder

	writeLine(&b, "Proximcity  - Nova encomenda ("+order.ReferenceID+")")

	if len(order.Shipping) > 0 {
		group := order.Shipping[0]
		if group.Address.FullName != "" {
			writeLine(&b, " De: "+group.Address.FullName)
		}
		if group.Address.Phone != "" || order.Email != "" {
			writeLine(&b, " Contactos: "+group.Address.Phone+" - "+order.Email)
		}
		for _, it := range group.Items {
			writeLine(&b, "("+strconv.Itoa(it.Quantity)+") "+it.Title)
		}
	}

	if len(order.Payments) > 0 {
		writeLine(&b, "Total: "+strconv.FormatFloat(order.Payments[0].Amount, 'f', 2, 64))
	}

	return b.String()
}

func writeLine(b *strings.Builder, line string) {
	b.WriteString(line)
	b.WriteString(NewLineToken)
}
