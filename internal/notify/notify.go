// Package notify reacts to account events: it emails verification codes,
// reset links and contact notifications, and archives contact messages.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/ibcoder/portfolio/internal/accounts"
	"github.com/ibcoder/portfolio/internal/domain"
	"github.com/ibcoder/portfolio/internal/logging"
	"github.com/ibcoder/portfolio/internal/pubsub"
	"github.com/spf13/afero"
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

// Config holds the addresses and locations the notifier needs.
type Config struct {
	BaseURL    string
	Inbox      string
	ArchiveDir string
}

// Notifier subscribes to account events.
type Notifier struct {
	sender domain.EmailSender
	fs     afero.Fs
	cfg    Config
}

// New returns a Notifier writing its archive to fs.
func New(sender domain.EmailSender, fs afero.Fs, cfg Config) *Notifier {
	return &Notifier{sender: sender, fs: fs, cfg: cfg}
}

// Start registers the event handlers on sub.
func (n *Notifier) Start(ctx context.Context, sub pubsub.Subscriber) error {
	if err := pubsub.Subscribe(ctx, sub, accounts.UserRegistered, n.OnUserRegistered); err != nil {
		return err
	}
	if err := pubsub.Subscribe(ctx, sub, accounts.PasswordResetRequested, n.OnPasswordResetRequested); err != nil {
		return err
	}
	return pubsub.Subscribe(ctx, sub, accounts.ContactReceived, n.OnContactReceived)
}

// OnUserRegistered emails the verification code.
func (n *Notifier) OnUserRegistered(ctx context.Context, e accounts.UserRegisteredEvent) error {
	body := emailLayout("Verify your email",
		h.P(g.Textf("Hi %s, thanks for signing up.", e.Username)),
		h.P(g.Text("Your verification code is:")),
		h.P(h.Strong(g.Text(e.VerificationCode))),
		h.P(g.Text("Enter it on the "), h.A(h.Href(n.cfg.BaseURL+"/auth/verify"), g.Text("verification page")), g.Text(" within 15 minutes.")),
	)
	return n.send(ctx, e.Email, "Verify your email", body)
}

// OnPasswordResetRequested emails the reset link.
func (n *Notifier) OnPasswordResetRequested(ctx context.Context, e accounts.PasswordResetRequestedEvent) error {
	link := n.cfg.BaseURL + "/auth/reset-password?token=" + url.QueryEscape(e.Token)
	body := emailLayout("Reset your password",
		h.P(g.Text("Click the link below to reset your password:")),
		h.P(h.A(h.Href(link), g.Text("Reset Password"))),
		h.P(g.Text("If you did not ask for this, you can ignore this email.")),
	)
	return n.send(ctx, e.Email, "Reset Your Password", body)
}

// OnContactReceived archives the message and forwards it to the inbox when
// one is configured.
func (n *Notifier) OnContactReceived(ctx context.Context, e accounts.ContactReceivedEvent) error {
	if err := n.archive(e); err != nil {
		return err
	}
	if n.cfg.Inbox == "" {
		return nil
	}
	body := emailLayout("New contact message",
		h.P(g.Textf("From: %s <%s>", e.Name, e.Email)),
		h.P(g.Textf("Subject: %s", e.Subject)),
		h.Pre(g.Text(e.Message)),
	)
	return n.send(ctx, n.cfg.Inbox, "Contact: "+e.Subject, body)
}

func (n *Notifier) archive(e accounts.ContactReceivedEvent) error {
	if n.fs == nil || n.cfg.ArchiveDir == "" {
		return nil
	}
	if err := n.fs.MkdirAll(n.cfg.ArchiveDir, 0o755); err != nil {
		return fmt.Errorf("failed to create archive dir: %w", err)
	}
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return err
	}
	name := filepath.Join(n.cfg.ArchiveDir, e.CreatedAt.Format("20060102T150405")+"-"+e.ID+".json")
	if err := afero.WriteFile(n.fs, name, data, 0o644); err != nil {
		return fmt.Errorf("failed to archive contact message: %w", err)
	}
	return nil
}

func (n *Notifier) send(ctx context.Context, to, subject string, body g.Node) error {
	var buf bytes.Buffer
	if err := body.Render(&buf); err != nil {
		return fmt.Errorf("failed to render email: %w", err)
	}
	if err := n.sender.Send(ctx, to, subject, buf.String()); err != nil {
		return fmt.Errorf("failed to send %q: %w", subject, err)
	}
	logging.FromContext(ctx).Debug("Email sent", "subject", subject)
	return nil
}

func emailLayout(title string, children ...g.Node) g.Node {
	return h.Doctype(
		h.HTML(
			h.Head(h.Meta(h.Charset("utf-8")), h.TitleEl(g.Text(title))),
			h.Body(
				h.Style("font-family: sans-serif; color: #1f2937;"),
				h.H1(g.Text(title)),
				g.Group(children),
			),
		),
	)
}
