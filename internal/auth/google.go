package auth

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"

	"github.com/sakif/student-portal/internal/apperror"
)

// Scopes requested from Google. "openid" makes it an OpenID Connect flow,
// which is what exposes the stable "sub" identifier used as the user ID.
var Scopes = []string{"openid", "email", "profile"}

// GoogleUser is the part of the OpenID Connect userinfo response the portal uses.
//
// Userinfo docs: https://developers.google.com/identity/openid-connect/openid-connect#obtainuserinfo
type GoogleUser struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	GivenName     string `json:"given_name"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// DisplayName is the given name, or the full name when Google omits it.
func (u *GoogleUser) DisplayName() string {
	if u.GivenName != "" {
		return u.GivenName
	}
	return u.Name
}

// discovery is the subset of the provider's discovery document we need.
type discovery struct {
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	UserinfoEndpoint      string `json:"userinfo_endpoint"`
}

// GoogleConfig configures a GoogleProvider.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	DiscoveryURL string
	// DiscoveryTTL bounds how long a fetched discovery document is reused.
	// Zero means it is fetched on every login.
	DiscoveryTTL time.Duration
	// HTTPClient makes every provider call. It must carry a timeout.
	HTTPClient *http.Client
}

// GoogleProvider runs the OpenID Connect Authorization Code flow against Google.
//
// NO SHARED CLIENT STATE:
// Nothing in GoogleProvider changes per request except the discovery cache.
// Each call builds its own oauth2.Config from the current discovery document
// and the redirect URI the handler passes in, so two logins in flight never
// see each other's tokens or redirect URIs.
type GoogleProvider struct {
	clientID     string
	clientSecret string
	discoveryURL string
	ttl          time.Duration
	client       *http.Client
	now          func() time.Time

	mu        sync.Mutex
	doc       *discovery
	fetchedAt time.Time
}

func NewGoogleProvider(cfg GoogleConfig) *GoogleProvider {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &GoogleProvider{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		discoveryURL: cfg.DiscoveryURL,
		ttl:          cfg.DiscoveryTTL,
		client:       client,
		now:          time.Now,
	}
}

// AuthURL returns the Google authorization URL for state and redirectURI.
func (p *GoogleProvider) AuthURL(ctx context.Context, state, redirectURI string) (string, error) {
	doc, err := p.discover(ctx)
	if err != nil {
		return "", err
	}
	return p.oauthConfig(doc, redirectURI).AuthCodeURL(state), nil
}

// Exchange trades an authorization code for the user's userinfo claims.
//
// Steps:
//  1. POST the code to the token endpoint, client credentials in HTTP Basic
//  2. GET the userinfo endpoint with the access token
//  3. Decode the claims
//
// Any failure is an apperror.ErrUpstream. Exchange does NOT check
// email_verified; that decision belongs to the caller.
func (p *GoogleProvider) Exchange(ctx context.Context, code, redirectURI string) (*GoogleUser, error) {
	doc, err := p.discover(ctx)
	if err != nil {
		return nil, err
	}
	cfg := p.oauthConfig(doc, redirectURI)

	// oauth2 picks the HTTP client up from the context, for both the token
	// request and the client returned by cfg.Client.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client)

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, apperror.Upstream("exchanging authorization code", err)
	}

	resp, err := cfg.Client(ctx, token).Get(doc.UserinfoEndpoint)
	if err != nil {
		return nil, apperror.Upstream("calling userinfo endpoint", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperror.Upstream("calling userinfo endpoint",
			fmt.Errorf("status %d", resp.StatusCode))
	}

	var user GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, apperror.Upstream("decoding userinfo response", err)
	}
	if user.Subject == "" {
		return nil, apperror.Upstream("decoding userinfo response",
			fmt.Errorf("missing sub claim"))
	}

	return &user, nil
}

func (p *GoogleProvider) oauthConfig(doc *discovery, redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.clientID,
		ClientSecret: p.clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   doc.AuthorizationEndpoint,
			TokenURL:  doc.TokenEndpoint,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}

// discover returns the cached discovery document, refetching it once the
// TTL has passed. The mutex is held across the fetch so concurrent logins
// after expiry cause a single request.
func (p *GoogleProvider) discover(ctx context.Context) (*discovery, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.doc != nil && p.ttl > 0 && p.now().Sub(p.fetchedAt) < p.ttl {
		return p.doc, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.discoveryURL, nil)
	if err != nil {
		return nil, apperror.Upstream("building discovery request", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, apperror.Upstream("fetching discovery document", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperror.Upstream("fetching discovery document",
			fmt.Errorf("status %d", resp.StatusCode))
	}

	var doc discovery
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, apperror.Upstream("decoding discovery document", err)
	}
	if doc.AuthorizationEndpoint == "" || doc.TokenEndpoint == "" || doc.UserinfoEndpoint == "" {
		return nil, apperror.Upstream("decoding discovery document",
			fmt.Errorf("missing endpoint"))
	}

	p.doc = &doc
	p.fetchedAt = p.now()
	return p.doc, nil
}
