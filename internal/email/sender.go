package email

import (
	"context"
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
)

// ServiceName 是邮件服务在服务注册表中的名字。
const ServiceName = "mailer"

var ErrNoRecipient = errors.New("email: recipient required")

type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender 是邮件发送策略接口
type Sender interface {
	Send(ctx context.Context, m Message) error
	Name() string
}

// NewSenderFromEnv 根据 EMAIL_STRATEGY 选择策略：smtp | log | none
func NewSenderFromEnv() Sender {
	strategy := strings.ToLower(strings.TrimSpace(os.Getenv("EMAIL_STRATEGY")))
	switch strategy {
	case "smtp":
		return newSMTPSenderFromEnv()
	case "log":
		return logSender{}
	default:
		return noneSender{}
	}
}

// ---------- none 策略（禁用邮件，什么也不做） ----------
type noneSender struct{}

func (noneSender) Send(context.Context, Message) error { return nil }
func (noneSender) Name() string                        { return "none" }

// ---------- log 策略（开发态打印） ----------
type logSender struct{}

func (logSender) Send(_ context.Context, m Message) error {
	log.Printf("[email/log] to=%s subject=%q html=%dB text=%dB", m.To, m.Subject, len(m.HTML), len(m.Text))
	return nil
}
func (logSender) Name() string { return "log" }

// ---------- smtp 策略（在 strategy_smtp.go） ----------
type smtpSender struct {
	host, user, pass, from string
	port                   int
}

func newSMTPSenderFromEnv() Sender {
	host := strings.TrimSpace(os.Getenv("SMTP_HOST"))
	port, _ := strconv.Atoi(strings.TrimSpace(os.Getenv("SMTP_PORT")))
	user := strings.TrimSpace(os.Getenv("SMTP_USERNAME"))
	pass := strings.TrimSpace(os.Getenv("SMTP_PASSWORD"))
	from := strings.TrimSpace(os.Getenv("SMTP_FROM"))
	if host == "" || port == 0 || user == "" || pass == "" || from == "" {
		log.Printf("[email] smtp settings incomplete; falling back to none")
		return noneSender{}
	}
	return smtpSender{host: host, port: port, user: user, pass: pass, from: from}
}

// Mailer 是注入到插件的邮件服务。
type Mailer struct {
	sender Sender
}

func NewMailer(s Sender) *Mailer {
	if s == nil {
		s = noneSender{}
	}
	return &Mailer{sender: s}
}

// NewMailerFromEnv 按 EMAIL_STRATEGY 构造。
func NewMailerFromEnv() *Mailer {
	m := NewMailer(NewSenderFromEnv())
	log.Printf("[email] strategy=%s", m.Strategy())
	return m
}

func (m *Mailer) Strategy() string { return m.sender.Name() }

func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.sender.Send(ctx, msg)
}
