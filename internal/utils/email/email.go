package email

import (
	"bytes"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/autosmc/internal/config"
	"github.com/Dan9191/autosmc/internal/models"
	"github.com/Dan9191/autosmc/internal/utils"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   func(e *email.Email, addr string, auth smtp.Auth) error
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// SendReport emails the market report summary with the cost table attached
func (s *Sender) SendReport(to string, report *models.Report, csv []byte) error {
	e, err := s.buildReport(to, report, csv)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := s.send(e, addr, auth); err != nil {
		s.logger.Errorf("Failed to send report to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}

func (s *Sender) buildReport(to string, report *models.Report, csv []byte) (*email.Email, error) {
	v := report.Valuation

	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Relatório AutoSMC: %s %s", v.BrandName, v.ModelName)

	var body strings.Builder
	fmt.Fprintf(&body, "Relatório de mercado - %s\n\n", report.City)
	fmt.Fprintf(&body, "Veículo: %s %s\n", v.BrandName, v.ModelName)
	fmt.Fprintf(&body, "Tabela FIPE: %s\n", v.PriceText)
	fmt.Fprintf(&body, "Referência: %s\n", v.ReferenceMonth)
	fmt.Fprintf(&body, "Código FIPE: %s\n\n", v.FipeCode)
	for _, line := range report.CostTable {
		fmt.Fprintf(&body, "%s: %s\n", line.Service, utils.FormatBRL(line.Value))
	}
	if q := report.Financing; q != nil {
		fmt.Fprintf(&body, "\nFinanciamento: %dx de %s (%.2f%% a.m.)\n", q.InstallmentCount, utils.FormatBRL(q.InstallmentAmount), q.MonthlyRate)
	}
	body.WriteString("\nAtenciosamente,\nAutoSMC")
	e.Text = []byte(body.String())

	if _, err := e.Attach(bytes.NewReader(csv), models.ReportFileName, "text/csv; charset=utf-8"); err != nil {
		return nil, fmt.Errorf("failed to attach report: %w", err)
	}
	return e, nil
}
