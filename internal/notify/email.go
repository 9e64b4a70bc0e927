package notify

import (
	"context"
	"fmt"
	"os"

	"github.com/wneessen/go-mail"

	"github.com/vedang2003/tax-calculator-form/internal/leads"
	"github.com/vedang2003/tax-calculator-form/pkg/logging"
)

const (
	subject        = "Your Tax Calculator is Ready!"
	attachmentName = "Tax_Calculator_2025.xlsx"
)

// Sender delivers the tax calculator email to a submitter.
// Implementations can be swapped (SMTP, API-based, stub) without changing callers.
type Sender interface {
	SendTaxCalculator(ctx context.Context, lead *leads.Lead) error
}

// SMTPConfig holds configuration for the SMTP sender.
type SMTPConfig struct {
	Host           string
	Port           int
	Address        string
	Password       string
	AttachmentPath string
}

// SMTPSender sends the tax calculator email through an authenticated SMTP
// relay with mandatory STARTTLS. One delivery attempt per call.
type SMTPSender struct {
	cfg    SMTPConfig
	logger *logging.Logger

	// deliver is swapped out in tests to avoid a live relay
	deliver func(ctx context.Context, msg *mail.Msg) error
}

// NewSMTPSender creates an SMTP sender. Returns nil when relay credentials
// are not configured.
func NewSMTPSender(cfg SMTPConfig, logger *logging.Logger) *SMTPSender {
	if cfg.Address == "" || cfg.Password == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	s := &SMTPSender{cfg: cfg, logger: logger}
	s.deliver = s.dialAndSend
	return s
}

// SendTaxCalculator composes the email and relays it. The attachment is
// checked first: when the file is missing nothing is sent and no connection
// is opened.
func (s *SMTPSender) SendTaxCalculator(ctx context.Context, lead *leads.Lead) error {
	if _, err := os.Stat(s.cfg.AttachmentPath); err != nil {
		s.logger.Error("tax calculator file not found", "path", s.cfg.AttachmentPath, "error", err)
		return fmt.Errorf("notify: attachment missing: %w", err)
	}

	msg := mail.NewMsg()
	if err := msg.From(s.cfg.Address); err != nil {
		return fmt.Errorf("notify: set sender: %w", err)
	}
	if err := msg.To(lead.Email); err != nil {
		s.logger.Error("invalid recipient address", "to", lead.Email, "error", err)
		return fmt.Errorf("notify: set recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, emailBody(lead.FullName))
	msg.AttachFile(s.cfg.AttachmentPath, mail.WithFileName(attachmentName))

	if err := s.deliver(ctx, msg); err != nil {
		s.logger.Error("failed to send tax calculator email", "to", lead.Email, "error", err)
		return fmt.Errorf("notify: send to %s: %w", lead.Email, err)
	}

	s.logger.Info("tax calculator email sent", "to", lead.Email)
	return nil
}

func (s *SMTPSender) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	client, err := mail.NewClient(s.cfg.Host,
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.Address),
		mail.WithPassword(s.cfg.Password),
	)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, msg)
}

func emailBody(recipientName string) string {
	return fmt.Sprintf(`Hi %s,

Thank you for requesting our free tax calculator!
Your tax calculator Excel file is attached to this email.

This comprehensive Excel spreadsheet will help you:
- Calculate your estimated tax liability
- Track deductions and credits
- Plan for next year's taxes
- Organize your financial information

The spreadsheet is easy to use - just fill in your information in the highlighted cells and the formulas will do the rest!

How to use:
1. Download the attachment from this email
2. Save the file to your computer
3. Open in Excel or Google Sheets
4. Follow the instructions in the first tab

If you have any questions or need tax planning assistance, feel free to reply to this email.

Best regards,
Tax Calculator Team
`, recipientName)
}

// StubSender is a no-op sender for testing or when email is disabled.
type StubSender struct {
	logger *logging.Logger
}

// NewStubSender creates a stub sender that logs but doesn't send.
func NewStubSender(logger *logging.Logger) *StubSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubSender{logger: logger}
}

// SendTaxCalculator logs the email but doesn't actually send it.
func (s *StubSender) SendTaxCalculator(_ context.Context, lead *leads.Lead) error {
	s.logger.Info("stub sender: would send tax calculator email", "to", lead.Email)
	return nil
}

var _ Sender = (*SMTPSender)(nil)
var _ Sender = (*StubSender)(nil)
