package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/Snassy-icp/app-sneeddao-sub001/models"
	"github.com/sirupsen/logrus"
)

// Notifier announces claims that reached a final outcome of their polling.
type Notifier interface {
	ClaimFinished(ctx context.Context, claim models.Claim) error
}

type Config struct {
	Provider      string // none, mailjet or smtp
	From          string
	To            string
	MailjetKey    string
	MailjetSecret string
	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
}

// New picks the notifier for cfg.Provider. Anything unknown or unconfigured
// falls back to logging only.
func New(cfg Config) Notifier {
	switch cfg.Provider {
	case "mailjet":
		if cfg.MailjetKey == "" || cfg.MailjetSecret == "" {
			logrus.Warn("MAILJET_API_KEY or MAILJET_SECRET_KEY not set, claim emails disabled")
			return LogNotifier{}
		}
		return NewMailjet(cfg)
	case "smtp":
		if cfg.SMTPPassword == "" {
			logrus.Warn("SMTP_PASSWORD not set, claim emails disabled")
			return LogNotifier{}
		}
		return NewSMTP(cfg)
	default:
		return LogNotifier{}
	}
}

type LogNotifier struct{}

func (LogNotifier) ClaimFinished(_ context.Context, claim models.Claim) error {
	logrus.WithFields(logrus.Fields{
		"request_id": claim.ID,
		"owner":      claim.Owner,
		"state":      claim.State,
	}).Info("claim finished")
	return nil
}

var claimTemplate = template.Must(template.New("claim").Parse(`<body style="margin:0;padding:0;background:#f6f6f6;">
  <table width="100%" cellpadding="0" cellspacing="0" border="0" style="max-width:600px;background:#f3f2f0;border-radius:28px;">
    <tr>
      <td style="padding:32px;font-family:Arial,sans-serif;">
        <h1 style="margin:0 0 12px 0;font-size:28px;color:#111;">Claim {{.ID}}: {{.State}}</h1>
        <table cellpadding="0" cellspacing="0" border="0" style="width:100%;">
          <tr><td style="color:#555;padding:6px 0;">Owner:</td><td style="color:#111;font-weight:bold;">{{.Owner}}</td></tr>
          <tr><td style="color:#555;padding:6px 0;">Position:</td><td style="color:#111;font-weight:bold;">{{.PositionID}}</td></tr>
          {{if .Reason}}<tr><td style="color:#555;padding:6px 0;">Reason:</td><td style="color:#111;font-weight:bold;">{{.Reason}}</td></tr>{{end}}
          {{if .AmountWithdrawn}}<tr><td style="color:#555;padding:6px 0;">Withdrawn:</td><td style="color:#111;font-weight:bold;">{{.AmountWithdrawn}}</td></tr>{{end}}
        </table>
      </td>
    </tr>
  </table>
</body>`))

type claimView struct {
	ID              uint64
	State           string
	Owner           string
	PositionID      string
	Reason          string
	AmountWithdrawn uint64
}

func subject(claim models.Claim) string {
	return fmt.Sprintf("Claim %d %s", claim.ID, claim.State)
}

func render(claim models.Claim) (string, error) {
	view := claimView{
		ID:         claim.ID,
		State:      string(claim.State),
		Owner:      claim.Owner,
		PositionID: claim.PositionID,
	}
	if claim.Reason != nil {
		view.Reason = *claim.Reason
	}
	if claim.AmountWithdrawn != nil {
		view.AmountWithdrawn = *claim.AmountWithdrawn
	}

	var buf bytes.Buffer
	if err := claimTemplate.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}
