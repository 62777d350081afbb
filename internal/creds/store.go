package creds

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
)

// Out-of-band redirect: the provider displays the code for the operator to paste.
const redirectOOB = "urn:ietf:wg:oauth:2.0:oob"

// Store persists and refreshes the offline-access OAuth credential for the
// storage provider. The token file is merged on every refresh, never replaced.
type Store struct {
	Config *oauth2.Config
	Path   string

	// OnUpdate, if set, is invoked after every persisted token refresh.
	OnUpdate func(tok *oauth2.Token)
}

// New builds a Store for the storage provider's offline-access flow.
func New(clientID, clientSecret, tokenPath string) *Store {
	return &Store{
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectOOB,
			Scopes:       []string{drive.DriveScope},
			Endpoint:     google.Endpoint,
		},
		Path: tokenPath,
	}
}

// Acquire loads the persisted credential, proactively refreshes it, and
// returns a token source that persists every future refresh immediately.
// A missing file, missing refresh token, or revoked grant yields
// ErrReauthRequired; the operator must run the authorize command.
func (s *Store) Acquire(ctx context.Context) (oauth2.TokenSource, error) {
	tok, err := readTokenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("load credential %s: %w", s.Path, errors.Join(err, ErrReauthRequired))
	}
	if tok.RefreshToken == "" {
		return nil, fmt.Errorf("credential %s has no refresh token: %w", s.Path, ErrReauthRequired)
	}

	base := s.Config.TokenSource(ctx, tok)
	fresh, err := base.Token()
	if err != nil {
		if isInvalidGrant(err) {
			return nil, fmt.Errorf("refresh token rejected: %w", ErrReauthRequired)
		}
		return nil, fmt.Errorf("refresh credential: %w", err)
	}

	if err := s.persist(fresh); err != nil {
		return nil, fmt.Errorf("persist refreshed credential: %w", err)
	}

	return &persistingSource{
		store: s,
		src:   oauth2.ReuseTokenSource(fresh, base),
		last:  fresh.AccessToken,
	}, nil
}

// Authorize runs the one-time interactive authorization-code exchange and
// writes the credential file. It reads the code from in and prompts on out.
func (s *Store) Authorize(ctx context.Context, in io.Reader, out io.Writer) error {
	authURL := s.Config.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Fprintf(out, "Visit the following URL, authorize access, then paste the code:\n%s\n> ", authURL)

	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("read authorization code: %w", err)
		}
		return fmt.Errorf("read authorization code: unexpected end of input")
	}
	code := strings.TrimSpace(scanner.Text())
	if code == "" {
		return fmt.Errorf("authorization code is empty")
	}

	tok, err := s.Config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange authorization code: %w", err)
	}
	if tok.RefreshToken == "" {
		return ErrNoRefreshToken
	}

	if err := s.persist(tok); err != nil {
		return fmt.Errorf("persist credential: %w", err)
	}
	fmt.Fprintf(out, "Credential saved to %s\n", s.Path)
	return nil
}

// persistingSource hands out tokens from the wrapped source and writes every
// refreshed token back to the store before returning it.
type persistingSource struct {
	store *Store
	src   oauth2.TokenSource

	mu   sync.Mutex
	last string
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := p.src.Token()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	changed := tok.AccessToken != p.last
	if changed {
		p.last = tok.AccessToken
	}
	p.mu.Unlock()

	if changed {
		if err := p.store.persist(tok); err != nil {
			return nil, fmt.Errorf("persist refreshed credential: %w", err)
		}
		if p.store.OnUpdate != nil {
			p.store.OnUpdate(tok)
		}
	}
	return tok, nil
}

func isInvalidGrant(err error) bool {
	var rErr *oauth2.RetrieveError
	if !errors.As(err, &rErr) {
		return false
	}
	if rErr.ErrorCode == "invalid_grant" {
		return true
	}
	return strings.Contains(string(rErr.Body), "invalid_grant")
}
