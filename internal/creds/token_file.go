package creds

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2"
)

// readTokenFile loads the persisted token. Fields this package does not know
// about are left untouched in the file; only the oauth2 fields are read here.
func readTokenFile(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw struct {
		AccessToken  string `json:"access_token"`
		TokenType    string `json:"token_type"`
		RefreshToken string `json:"refresh_token"`
		Expiry       string `json:"expiry"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse token file: %w", err)
	}

	tok := &oauth2.Token{
		AccessToken:  raw.AccessToken,
		TokenType:    raw.TokenType,
		RefreshToken: raw.RefreshToken,
	}
	if raw.Expiry != "" {
		if expiry, err := time.Parse(time.RFC3339, raw.Expiry); err == nil {
			tok.Expiry = expiry
		}
	}
	return tok, nil
}

// persist merges the token into the existing file, preserving unknown fields.
// A refresh response without a refresh token keeps the persisted one.
func (s *Store) persist(tok *oauth2.Token) error {
	merged := map[string]json.RawMessage{}
	if data, err := os.ReadFile(s.Path); err == nil {
		// Ignore a corrupt existing file; the merge starts empty.
		_ = json.Unmarshal(data, &merged)
	}

	setString := func(key, val string) error {
		enc, err := json.Marshal(val)
		if err != nil {
			return err
		}
		merged[key] = enc
		return nil
	}

	if err := setString("access_token", tok.AccessToken); err != nil {
		return err
	}
	if tok.TokenType != "" {
		if err := setString("token_type", tok.TokenType); err != nil {
			return err
		}
	}
	if tok.RefreshToken != "" {
		if err := setString("refresh_token", tok.RefreshToken); err != nil {
			return err
		}
	}
	if !tok.Expiry.IsZero() {
		if err := setString("expiry", tok.Expiry.UTC().Format(time.RFC3339)); err != nil {
			return err
		}
	}

	out, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path, append(out, '\n'), 0o600)
}
