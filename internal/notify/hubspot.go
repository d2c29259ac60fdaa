package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/macspp/lead-intake/internal/leads"
)

const defaultHubSpotBaseURL = "https://api.hubapi.com"

// HubSpotChannel creates a CRM contact for each lead.
type HubSpotChannel struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// HubSpotConfig holds configuration for the HubSpot channel.
type HubSpotConfig struct {
	APIKey  string
	BaseURL string
}

// NewHubSpotChannel creates a channel that records each lead as a HubSpot contact.
func NewHubSpotChannel(cfg HubSpotConfig, httpClient *http.Client) *HubSpotChannel {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultHubSpotBaseURL
	}
	return &HubSpotChannel{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// Name implements Channel.
func (c *HubSpotChannel) Name() string { return ChannelHubSpot }

type hubSpotContact struct {
	Properties map[string]string `json:"properties"`
}

func contactProperties(sub *leads.Submission) map[string]string {
	props := map[string]string{
		"firstname":      sub.FirstName(),
		"lastname":       sub.LastName(),
		"email":          sub.Email,
		"phone":          sub.Phone,
		"city":           sub.City,
		"hs_lead_status": "NEW",
		"project_type":   string(sub.ProjectType),
		"message":        sub.Message,
	}
	if sub.UTMSource != "" {
		props["hs_analytics_source"] = sub.UTMSource
	}
	if sub.UTMMedium != "" {
		props["hs_analytics_source_data_1"] = sub.UTMMedium
	}
	if sub.UTMCampaign != "" {
		props["hs_analytics_source_data_2"] = sub.UTMCampaign
	}
	return props
}

// Deliver creates the contact. A non-2xx response, including a conflict for
// an existing contact, is a failure.
func (c *HubSpotChannel) Deliver(ctx context.Context, sub *leads.Submission) error {
	if c.apiKey == "" {
		return fmt.Errorf("%w: hubspot api key", ErrChannelNotConfigured)
	}
	url := c.baseURL + "/crm/v3/objects/contacts"
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}
	if err := postJSON(ctx, c.httpClient, url, headers, hubSpotContact{Properties: contactProperties(sub)}); err != nil {
		return fmt.Errorf("notify: hubspot: %w", err)
	}
	return nil
}

var _ Channel = (*HubSpotChannel)(nil)
