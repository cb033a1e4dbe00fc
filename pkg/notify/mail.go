package notify

import (
	"context"

	"github.com/Snassy-icp/app-sneeddao-sub001/models"
	"github.com/mailjet/mailjet-apiv3-go/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

type MailjetNotifier struct {
	client *mailjet.Client
	from   string
	to     string
}

func NewMailjet(cfg Config) *MailjetNotifier {
	return &MailjetNotifier{
		client: mailjet.NewMailjetClient(cfg.MailjetKey, cfg.MailjetSecret),
		from:   cfg.From,
		to:     cfg.To,
	}
}

func (n *MailjetNotifier) ClaimFinished(_ context.Context, claim models.Claim) error {
	body, err := render(claim)
	if err != nil {
		return errors.Wrap(err, "render claim email")
	}

	messages := &mailjet.MessagesV31{Info: []mailjet.InfoMessagesV31{
		{
			From:     &mailjet.RecipientV31{Email: n.from, Name: "Wallet"},
			To:       &mailjet.RecipientsV31{{Email: n.to}},
			Subject:  subject(claim),
			HTMLPart: body,
		},
	}}
	res, err := n.client.SendMailV31(messages)
	if err != nil {
		return errors.Wrapf(err, "mailjet send for claim %d", claim.ID)
	}
	logrus.Debugf("mailjet response: %+v", res)
	return nil
}

type SMTPNotifier struct {
	dialer *gomail.Dialer
	from   string
	to     string
}

func NewSMTP(cfg Config) *SMTPNotifier {
	return &SMTPNotifier{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:   cfg.From,
		to:     cfg.To,
	}
}

func (n *SMTPNotifier) ClaimFinished(_ context.Context, claim models.Claim) error {
	body, err := render(claim)
	if err != nil {
		return errors.Wrap(err, "render claim email")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", n.to)
	m.SetHeader("Subject", subject(claim))
	m.SetBody("text/html", body)

	if err := n.dialer.DialAndSend(m); err != nil {
		return errors.Wrapf(err, "smtp send for claim %d", claim.ID)
	}
	return nil
}
