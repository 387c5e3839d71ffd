package notify

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"aptwatch/internal/domain"
	"aptwatch/internal/secrets"
)

// SMSNotifier sends a compact digest of new listings as a single text
// message through the Twilio REST API. Credentials live in the OS keychain,
// never in the config file.
type SMSNotifier struct {
	HC *http.Client

	// BaseURL overrides the Twilio endpoint in tests.
	BaseURL string
}

func (s *SMSNotifier) Name() string { return "sms" }

// Deliver returns 0 on any failure: the listings stay unnotified and are
// retried on the next run.
func (s *SMSNotifier) Deliver(listings []domain.RawListing) (int, error) {
	creds, err := secrets.GetTwilioCredentials()
	if err != nil {
		return 0, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d new listings:\n", len(listings))
	for _, l := range listings {
		b.WriteString(formatListingSMS(l))
		b.WriteByte('\n')
	}

	base := s.BaseURL
	if base == "" {
		base = "https://api.twilio.com"
	}
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", base, creds.AccountSID)

	form := url.Values{}
	form.Set("To", creds.To)
	form.Set("From", creds.From)
	form.Set("Body", b.String())

	req, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, err
	}
	req.SetBasicAuth(creds.AccountSID, creds.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	hc := s.HC
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	res, err := hc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("twilio send: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		return 0, errors.New("twilio status " + res.Status)
	}
	return len(listings), nil
}

// formatListingSMS squeezes one listing onto a couple of lines.
func formatListingSMS(l domain.RawListing) string {
	var parts []string
	if l.Title != "" {
		parts = append(parts, l.Title)
	}
	if l.Price != nil {
		parts = append(parts, fmt.Sprintf("$%.0f/mo", *l.Price))
	}
	var bb []string
	if l.Bedrooms != nil {
		if *l.Bedrooms == 0 {
			bb = append(bb, "studio")
		} else {
			bb = append(bb, fmt.Sprintf("%gbd", *l.Bedrooms))
		}
	}
	if l.Bathrooms != nil {
		bb = append(bb, fmt.Sprintf("%gba", *l.Bathrooms))
	}
	if len(bb) > 0 {
		parts = append(parts, strings.Join(bb, " "))
	}
	parts = append(parts, l.URL)
	return strings.Join(parts, " | ")
}
