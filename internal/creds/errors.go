package creds

import "errors"

var (
	// ErrReauthRequired means the persisted credential is missing or revoked
	// and an operator must re-run the interactive authorization flow.
	ErrReauthRequired = errors.New("reauthentication required")

	// ErrNoRefreshToken means the authorization exchange did not grant a
	// refresh token, so the credential cannot survive access-token expiry.
	ErrNoRefreshToken = errors.New("authorization did not grant a refresh token")
)
