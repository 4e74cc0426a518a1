package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/sceneyard/sceneyard/internal/config"
)

var ErrNoEmail = errors.New("provider profile has no email")

// Profile is the subset of the provider's userinfo response this system
// persists.
type Profile struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Provider wraps the OAuth identity provider. Protocol details (code
// exchange, token refresh) are delegated to golang.org/x/oauth2.
type Provider struct {
	oauth       *oauth2.Config
	userinfoURL string
	name        string
}

func NewProvider(cfg *config.Config) *Provider {
	return &Provider{
		oauth: &oauth2.Config{
			ClientID:     cfg.OAuthClientID,
			ClientSecret: cfg.OAuthClientSecret,
			RedirectURL:  cfg.OAuthRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.OAuthAuthURL,
				TokenURL: cfg.OAuthTokenURL,
			},
		},
		userinfoURL: cfg.OAuthUserinfoURL,
		name:        "oauth",
	}
}

// Name identifies the provider in persisted user rows.
func (p *Provider) Name() string {
	return p.name
}

// AuthCodeURL builds the provider authorization URL for a state nonce.
func (p *Provider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades an authorization code for a token.
func (p *Provider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return p.oauth.Exchange(ctx, code)
}

// FetchProfile loads the userinfo document for an exchanged token. A profile
// without an email is rejected; sign-in cannot proceed without one.
func (p *Provider) FetchProfile(ctx context.Context, token *oauth2.Token) (*Profile, error) {
	client := p.oauth.Client(ctx, token)

	resp, err := client.Get(p.userinfoURL)
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request returned status %d", resp.StatusCode)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo response: %w", err)
	}

	if profile.Email == "" {
		return nil, ErrNoEmail
	}

	return &profile, nil
}
