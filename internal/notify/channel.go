package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/macspp/lead-intake/internal/leads"
)

// Channel names as they appear in logs, metrics and reports.
const (
	ChannelOwnerEmail    = "owner_email"
	ChannelCustomerEmail = "customer_email"
	ChannelWebhook       = "webhook"
	ChannelHubSpot       = "hubspot"
	ChannelSheets        = "sheets"
)

// ErrChannelNotConfigured is returned by channels whose credentials or
// destination are absent.
var ErrChannelNotConfigured = errors.New("notify: channel not configured")

// Channel delivers a stored submission to one downstream destination.
type Channel interface {
	Name() string
	Deliver(ctx context.Context, sub *leads.Submission) error
}

// CredentialError reports malformed or rejected channel credentials.
type CredentialError struct {
	Channel string
	Err     error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("notify: %s credentials: %v", e.Channel, e.Err)
}

func (e *CredentialError) Unwrap() error { return e.Err }

// OwnerEmailChannel notifies the business owner about a new lead.
type OwnerEmailChannel struct {
	sender   EmailSender
	business Business
}

// NewOwnerEmailChannel creates the channel that alerts the business owner.
func NewOwnerEmailChannel(sender EmailSender, business Business) *OwnerEmailChannel {
	return &OwnerEmailChannel{sender: sender, business: business}
}

// Name implements Channel.
func (c *OwnerEmailChannel) Name() string { return ChannelOwnerEmail }

// Deliver sends the lead summary to the owner with reply-to set to the lead.
func (c *OwnerEmailChannel) Deliver(ctx context.Context, sub *leads.Submission) error {
	if c.sender == nil || c.business.OwnerEmail == "" {
		return fmt.Errorf("%w: owner email", ErrChannelNotConfigured)
	}
	html, err := renderHTML(ownerEmailTemplate, sub, c.business)
	if err != nil {
		return err
	}
	return c.sender.Send(ctx, EmailMessage{
		To:      c.business.OwnerEmail,
		ReplyTo: sub.Email,
		Subject: "New Quote Request from " + sub.Name,
		Body:    ownerText(sub),
		HTML:    html,
	})
}

// CustomerEmailChannel sends the lead a confirmation of their request.
type CustomerEmailChannel struct {
	sender   EmailSender
	business Business
}

// NewCustomerEmailChannel creates the channel that confirms receipt to the lead.
func NewCustomerEmailChannel(sender EmailSender, business Business) *CustomerEmailChannel {
	return &CustomerEmailChannel{sender: sender, business: business}
}

// Name implements Channel.
func (c *CustomerEmailChannel) Name() string { return ChannelCustomerEmail }

// Deliver sends the confirmation with reply-to set to the owner.
func (c *CustomerEmailChannel) Deliver(ctx context.Context, sub *leads.Submission) error {
	if c.sender == nil {
		return fmt.Errorf("%w: customer email", ErrChannelNotConfigured)
	}
	html, err := renderHTML(customerEmailTemplate, sub, c.business)
	if err != nil {
		return err
	}
	return c.sender.Send(ctx, EmailMessage{
		To:      sub.Email,
		ToName:  sub.Name,
		ReplyTo: c.business.OwnerEmail,
		Subject: "Your Quote Request - " + c.business.Name,
		Body:    customerText(sub, c.business),
		HTML:    html,
	})
}

var (
	_ Channel = (*OwnerEmailChannel)(nil)
	_ Channel = (*CustomerEmailChannel)(nil)
)
