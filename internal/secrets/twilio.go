package secrets

import (
	"errors"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService groups this app's secrets in the OS keychain.
const KeyringService = "aptwatch"

const (
	accountSIDKey = "twilio:account_sid"
	authTokenKey  = "twilio:auth_token"
	fromKey       = "twilio:from"
	toKey         = "twilio:to"
)

type TwilioCredentials struct {
	AccountSID string
	AuthToken  string
	From       string // sending phone number
	To         string // recipient phone number
}

// GetTwilioCredentials loads the SMS credentials from the keychain. All
// four entries are required; a partial set is an error so a misconfigured
// channel fails loudly instead of half-sending.
func GetTwilioCredentials() (TwilioCredentials, error) {
	var c TwilioCredentials
	var err error
	if c.AccountSID, err = get(accountSIDKey); err != nil {
		return c, err
	}
	if c.AuthToken, err = get(authTokenKey); err != nil {
		return c, err
	}
	if c.From, err = get(fromKey); err != nil {
		return c, err
	}
	if c.To, err = get(toKey); err != nil {
		return c, err
	}
	return c, nil
}

// SetTwilioCredentials stores the SMS credentials in the keychain.
func SetTwilioCredentials(c TwilioCredentials) error {
	pairs := map[string]string{
		accountSIDKey: c.AccountSID,
		authTokenKey:  c.AuthToken,
		fromKey:       c.From,
		toKey:         c.To,
	}
	for account, value := range pairs {
		if strings.TrimSpace(value) == "" {
			return errors.New("twilio credential " + account + " is empty")
		}
		if err := keyring.Set(KeyringService, account, value); err != nil {
			return err
		}
	}
	return nil
}

// DeleteTwilioCredentials removes the SMS credentials from the keychain.
func DeleteTwilioCredentials() error {
	for _, account := range []string{accountSIDKey, authTokenKey, fromKey, toKey} {
		if err := keyring.Delete(KeyringService, account); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return err
		}
	}
	return nil
}

func get(account string) (string, error) {
	v, err := keyring.Get(KeyringService, account)
	if err != nil {
		return "", errors.New("twilio credential " + account + " not found in keychain")
	}
	if strings.TrimSpace(v) == "" {
		return "", errors.New("twilio credential " + account + " is empty")
	}
	return v, nil
}
