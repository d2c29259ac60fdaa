package bootstrap

import (
	"context"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/macspp/lead-intake/internal/config"
	"github.com/macspp/lead-intake/internal/notify"
	"github.com/macspp/lead-intake/internal/observability/metrics"
	"github.com/macspp/lead-intake/pkg/logging"
)

// BuildEmailSender picks the email provider named by EMAIL_PROVIDER and
// falls back to the logging stub when the provider is not usable.
func BuildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	switch cfg.EmailProvider {
	case "ses":
		awsCfg, err := LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config for SES; emails will be logged only", "error", err)
			return notify.NewStubEmailSender(logger)
		}
		return notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger)
	case "sendgrid":
		if sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger); sender != nil {
			return sender
		}
		logger.Warn("SENDGRID_API_KEY not set; emails will be logged only")
	}
	return notify.NewStubEmailSender(logger)
}

// BuildChannels assembles the five notification channels in dispatch order.
// Channels without configuration are still built and report themselves as
// skipped on every delivery.
func BuildChannels(cfg *appconfig.Config, sender notify.EmailSender) []notify.Channel {
	business := notify.Business{
		Name:       cfg.BusinessName,
		Phone:      cfg.BusinessPhone,
		OwnerEmail: cfg.OwnerEmail,
	}
	httpClient := &http.Client{Timeout: cfg.ChannelTimeout + time.Second}

	return []notify.Channel{
		notify.NewOwnerEmailChannel(sender, business),
		notify.NewCustomerEmailChannel(sender, business),
		notify.NewWebhookChannel(cfg.WebhookURL, httpClient),
		notify.NewHubSpotChannel(notify.HubSpotConfig{
			APIKey:  cfg.HubSpotAPIKey,
			BaseURL: cfg.HubSpotBaseURL,
		}, httpClient),
		notify.NewSheetsChannel(notify.SheetsConfig{
			Credentials:   []byte(cfg.GoogleSheetsCredentials),
			SpreadsheetID: cfg.GoogleSheetsSpreadsheet,
			Range:         cfg.GoogleSheetsRange,
		}, httpClient),
	}
}

// BuildFanout wires the channels behind a bounded concurrent dispatcher.
func BuildFanout(cfg *appconfig.Config, channels []notify.Channel, logger *logging.Logger, m *metrics.LeadMetrics) *notify.Fanout {
	return notify.NewFanout(channels, notify.FanoutConfig{
		Timeout:     cfg.ChannelTimeout,
		Concurrency: cfg.FanoutConcurrency,
	}, logger, m)
}
