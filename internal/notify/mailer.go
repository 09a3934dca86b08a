package notify

import (
	"context"
	"fmt"

	"github.com/talkincode/storefront/config"
	"github.com/talkincode/storefront/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/gomail.v2"
)

// Mailer sends the order notifications
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, user *domain.User, order *domain.Order) error
	SendPaymentLink(ctx context.Context, user *domain.User, paymentURL string) error
}

// Dialer is satisfied by *gomail.Dialer
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer plain-text notifications over SMTP
type SMTPMailer struct {
	dialer   Dialer
	from     string
	printer  *message.Printer
	currency currency.Unit
}

func NewSMTPMailer(cfg config.MailConfig, currencyCode string) *SMTPMailer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return NewMailerWithDialer(d, cfg.From, cfg.Lang, currencyCode)
}

func NewMailerWithDialer(d Dialer, from, lang, currencyCode string) *SMTPMailer {
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		zap.L().Warn("unknown currency code, falling back to RUB",
			zap.String("namespace", "notify"),
			zap.String("currency", currencyCode),
		)
		unit = currency.MustParseISO("RUB")
	}
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.Russian
	}
	return &SMTPMailer{
		dialer:   d,
		from:     from,
		printer:  message.NewPrinter(tag),
		currency: unit,
	}
}

func (m *SMTPMailer) SendOrderConfirmation(ctx context.Context, user *domain.User, order *domain.Order) error {
	subject := fmt.Sprintf("Your order #%d has been created", order.ID)
	body := fmt.Sprintf("Hello, %s!\n\nYour order #%d has been created. Total: %s.",
		user.Username, order.ID, m.formatTotal(order))
	return m.send(ctx, user.Email, subject, body)
}

func (m *SMTPMailer) SendPaymentLink(ctx context.Context, user *domain.User, paymentURL string) error {
	body := fmt.Sprintf("Pay for your order by following the link: %s", paymentURL)
	return m.send(ctx, user.Email, "Payment link", body)
}

// formatTotal keeps the amount exact; x/text only supplies the currency symbol
func (m *SMTPMailer) formatTotal(order *domain.Order) string {
	symbol := m.printer.Sprint(currency.Symbol(m.currency))
	return symbol + " " + order.TotalPrice.StringFixed(2)
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		zap.L().Error("send mail failed",
			zap.String("namespace", "notify"),
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err),
		)
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	zap.L().Info("mail sent",
		zap.String("namespace", "notify"),
		zap.String("to", to),
		zap.String("subject", subject),
	)
	return nil
}
