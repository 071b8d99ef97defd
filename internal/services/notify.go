package services

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/vendora-labs/partner-backend/internal/models"
)

// Notifier sends SMS alerts to partners about account events. It is an
// explicitly constructed, injected client; a nil Notifier is a no-op, so
// every caller can fire-and-forget without checking configuration.
type Notifier struct {
	client *twilio.RestClient
	from   string
}

// NewNotifier creates a notifier from TWILIO_* environment variables
func NewNotifier() (*Notifier, error) {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	from := os.Getenv("TWILIO_PHONE_NUMBER")

	if accountSid == "" || authToken == "" || from == "" {
		return nil, fmt.Errorf("missing Twilio credentials in environment variables")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})

	return &Notifier{client: client, from: from}, nil
}

// SendSMS sends a plain SMS via Twilio
func (n *Notifier) SendSMS(to, body string) error {
	if n == nil || n.client == nil || to == "" {
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(n.from)
	params.SetTo(to)
	params.SetBody(body)

	resp, err := n.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("Failed to send SMS to %s: %v", to, err)
		return err
	}

	log.Printf("SMS sent, SID: %s", *resp.Sid)
	return nil
}

// NotifyAccountLocked alerts a partner that repeated failed logins locked
// their account until the given time.
func (n *Notifier) NotifyAccountLocked(partner *models.Partner, until time.Time) {
	if n == nil || partner.Phone == "" {
		return
	}
	body := fmt.Sprintf(
		"Your partner account %s has been locked after repeated failed login attempts. Try again after %s.",
		partner.PartnerID, until.Format("15:04 MST"),
	)
	_ = n.SendSMS(partner.Phone, body)
}

// NotifyStatusChange alerts a partner that an administrator blocked or
// unblocked their account.
func (n *Notifier) NotifyStatusChange(partner *models.Partner, action, reason string) {
	if n == nil || partner.Phone == "" {
		return
	}
	body := fmt.Sprintf("Your partner account %s has been %sed.", partner.PartnerID, action)
	if reason != "" {
		body += " Reason: " + reason
	}
	_ = n.SendSMS(partner.Phone, body)
}
