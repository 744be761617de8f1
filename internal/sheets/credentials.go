package sheets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var ErrMissingCredential = errors.New("spreadsheet credential missing")

// Credentials is the subset of a service-account JSON key checked before the
// key is handed to the oauth2 JWT flow.
type Credentials struct {
	Type         string `json:"type"`
	ClientEmail  string `json:"client_email"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	TokenURI     string `json:"token_uri"`
}

// LoadCredentials reads and checks a service-account key file, returning the
// raw JSON for the oauth2 config.
func LoadCredentials(path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no credentials file configured", ErrMissingCredential)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingCredential, err)
	}
	if _, err := ParseCredentials(b); err != nil {
		return nil, err
	}
	return b, nil
}

func ParseCredentials(data []byte) (Credentials, error) {
	var c Credentials
	if err := json.Unmarshal(data, &c); err != nil {
		return Credentials{}, fmt.Errorf("parse credentials: %w", err)
	}
	if c.ClientEmail == "" || c.PrivateKey == "" {
		return Credentials{}, fmt.Errorf("%w: client_email and private_key are required", ErrMissingCredential)
	}
	return c, nil
}
