package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/macspp/lead-intake/internal/leads"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const defaultSheetsRange = "Sheet1!A:M"

// SheetsConfig holds configuration for the Google Sheets channel.
type SheetsConfig struct {
	// Credentials is the service-account JSON bundle.
	Credentials   []byte
	SpreadsheetID string
	Range         string
	// Endpoint overrides the Sheets API base URL.
	Endpoint string
}

// SheetsChannel appends one row per lead to a spreadsheet using a service
// account.
type SheetsChannel struct {
	cfg        SheetsConfig
	httpClient *http.Client
}

// NewSheetsChannel creates a Google Sheets channel. A nil httpClient uses
// the default client for token and API calls.
func NewSheetsChannel(cfg SheetsConfig, httpClient *http.Client) *SheetsChannel {
	cfg.SpreadsheetID = strings.TrimSpace(cfg.SpreadsheetID)
	if strings.TrimSpace(cfg.Range) == "" {
		cfg.Range = defaultSheetsRange
	}
	return &SheetsChannel{cfg: cfg, httpClient: httpClient}
}

// Name implements Channel.
func (c *SheetsChannel) Name() string { return ChannelSheets }

// sheetRow lays out the 13 columns A through M.
func sheetRow(sub *leads.Submission) []interface{} {
	return []interface{}{
		sub.Name,
		sub.Email,
		sub.Phone,
		sub.City,
		string(sub.ProjectType),
		sub.Message,
		sub.UTMSource,
		sub.UTMMedium,
		sub.UTMCampaign,
		sub.UTMContent,
		sub.UTMTerm,
		sub.Status,
		leads.FormatTimestamp(sub.CreatedAt),
	}
}

// Deliver exchanges a signed service-account assertion for an access token
// and appends the row with RAW value input.
func (c *SheetsChannel) Deliver(ctx context.Context, sub *leads.Submission) error {
	if len(c.cfg.Credentials) == 0 || c.cfg.SpreadsheetID == "" {
		return fmt.Errorf("%w: google sheets", ErrChannelNotConfigured)
	}

	conf, err := google.JWTConfigFromJSON(c.cfg.Credentials, sheets.SpreadsheetsScope)
	if err != nil {
		return &CredentialError{Channel: ChannelSheets, Err: err}
	}

	if c.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	}
	source := conf.TokenSource(ctx)
	token, err := source.Token()
	if err != nil {
		return &CredentialError{Channel: ChannelSheets, Err: err}
	}

	opts := []option.ClientOption{
		option.WithHTTPClient(oauth2.NewClient(ctx, oauth2.ReuseTokenSource(token, source))),
	}
	if c.cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.cfg.Endpoint))
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return fmt.Errorf("notify: sheets client: %w", err)
	}

	values := &sheets.ValueRange{Values: [][]interface{}{sheetRow(sub)}}
	if _, err := svc.Spreadsheets.Values.Append(c.cfg.SpreadsheetID, c.cfg.Range, values).
		ValueInputOption("RAW").
		Context(ctx).
		Do(); err != nil {
		return fmt.Errorf("notify: sheets append: %w", err)
	}
	return nil
}

var _ Channel = (*SheetsChannel)(nil)
