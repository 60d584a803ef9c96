package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	domorder "example.com/mystic-prints/app/internal/domain/order"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends order confirmations through a plain SMTP relay such as Mailpit.
type Mailer struct {
	addr string
	from string
	auth smtp.Auth
	send sendFunc
}

type Config struct {
	Addr     string
	From     string
	Username string
	Password string
}

func NewMailer(cfg Config) *Mailer {
	var auth smtp.Auth
	if cfg.Username != "" {
		host := cfg.Addr
		if i := strings.LastIndex(host, ":"); i >= 0 {
			host = host[:i]
		}
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, host)
	}
	return &Mailer{addr: cfg.Addr, from: cfg.From, auth: auth, send: smtp.SendMail}
}

// OrderPlaced mails the shopper a confirmation. Orders without an email are skipped.
func (m *Mailer) OrderPlaced(ctx context.Context, ev domorder.PlacedEvent) error {
	if ev.Email == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.send(m.addr, m.auth, m.from, []string{ev.Email}, confirmation(m.from, ev))
}

func confirmation(from string, ev domorder.PlacedEvent) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", ev.Email)
	fmt.Fprintf(&b, "Subject: Your Mystic Prints order %s\r\n", ev.FulfillmentOrderID)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Hi %s,\r\n\r\n", ev.Shipping.Name)
	b.WriteString("Your order has been submitted for processing.\r\n\r\n")
	fmt.Fprintf(&b, "Order: %s\r\n", ev.FulfillmentOrderID)
	fmt.Fprintf(&b, "Items: %d\r\n", ev.ItemCount)
	fmt.Fprintf(&b, "Total: $%s\r\n", ev.Total.StringFixed(2))
	fmt.Fprintf(&b, "Ship to: %s, %s, %s %s, %s\r\n",
		ev.Shipping.Address, ev.Shipping.City, ev.Shipping.State, ev.Shipping.Zip, ev.Shipping.Country)
	return []byte(b.String())
}
