package email

import (
	"errors"
	"io"
	"net/smtp"
	"testing"

	jwemail "github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/autosmc/internal/config"
	"github.com/Dan9191/autosmc/internal/models"
)

func testReport() *models.Report {
	return &models.Report{
		City: "São Miguel dos Campos - AL",
		Valuation: models.VehicleValuation{
			BrandName:      "VW - VolksWagen",
			ModelName:      "Polo 1.0",
			ReferenceMonth: "outubro de 2026",
			FipeCode:       "005530-1",
			PriceText:      "R$ 100.000,00",
			PriceValue:     100000,
		},
		CostTable: []models.CostLine{
			{Service: "Licenciamento", Value: 180},
			{Service: "IPVA 2026", Value: 3000},
		},
		Financing: &models.FinancingQuote{MonthlyRate: 1.95, InstallmentCount: 48, InstallmentAmount: 3227.10},
	}
}

func newTestSender(cfg *config.Config) *Sender {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewSender(cfg, log)
}

func TestSendReport(t *testing.T) {
	cfg := &config.Config{SMTPHost: "smtp.example.com", SMTPPort: "587", SMTPUsername: "user", SMTPPassword: "pw", SenderEmail: "relatorios@autosmc.com.br"}
	s := newTestSender(cfg)

	var sent *jwemail.Email
	var gotAddr string
	var gotAuth smtp.Auth
	s.send = func(e *jwemail.Email, addr string, auth smtp.Auth) error {
		sent, gotAddr, gotAuth = e, addr, auth
		return nil
	}

	require.NoError(t, s.SendReport("cliente@example.com", testReport(), []byte("Serviço,Valor (R$)\n")))
	require.NotNil(t, sent)

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.NotNil(t, gotAuth)
	assert.Equal(t, []string{"cliente@example.com"}, sent.To)
	assert.Equal(t, "Relatório AutoSMC: VW - VolksWagen Polo 1.0", sent.Subject)

	text := string(sent.Text)
	assert.Contains(t, text, "Tabela FIPE: R$ 100.000,00")
	assert.Contains(t, text, "IPVA 2026: R$ 3.000,00")
	assert.Contains(t, text, "48x de R$ 3.227,10")

	require.Len(t, sent.Attachments, 1)
	assert.Equal(t, models.ReportFileName, sent.Attachments[0].Filename)
}

func TestSendReport_Failure(t *testing.T) {
	s := newTestSender(&config.Config{SMTPHost: "smtp.example.com", SMTPPort: "25"})
	s.send = func(*jwemail.Email, string, smtp.Auth) error { return errors.New("connection refused") }

	err := s.SendReport("cliente@example.com", testReport(), nil)
	assert.Error(t, err)
}
