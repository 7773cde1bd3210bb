package email

import (
	"context"
	"fmt"

	gomail "gopkg.in/gomail.v2"
)

func (s smtpSender) message(m Message) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)
	switch {
	case m.HTML != "" && m.Text != "":
		msg.SetBody("text/plain", m.Text)
		msg.AddAlternative("text/html", m.HTML)
	case m.HTML != "":
		msg.SetBody("text/html", m.HTML)
	default:
		msg.SetBody("text/plain", m.Text)
	}
	return msg
}

// gomail 不接受 context，这里只在拨号前检查一次。
func (s smtpSender) Send(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d := gomail.NewDialer(s.host, s.port, s.user, s.pass)
	if err := d.DialAndSend(s.message(m)); err != nil {
		return fmt.Errorf("email: smtp send: %w", err)
	}
	return nil
}

func (s smtpSender) Name() string { return "smtp" }
