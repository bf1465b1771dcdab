package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jumbler/jumbler/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
)

// TokenSet is the normalized result of a token-endpoint call.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // seconds, 0 when the server omitted an expiry
}

// Exchanger performs the two token-endpoint grants. Both return
// [shared.ErrAuthFailed] when the server rejected the request or the
// response carried no access token, and [shared.ErrTransport] when no
// response arrived at all. Callers treat either the same way: the
// authorization attempt failed.
type Exchanger interface {
	Refresh(ctx context.Context, refreshToken string) (*TokenSet, error)
	Exchange(ctx context.Context, code, verifier string) (*TokenSet, error)
}

// SpotifyExchanger implements [Exchanger] on [oauth2.Config] as a public
// PKCE client: no client secret, client_id carried in the request body.
type SpotifyExchanger struct {
	config *oauth2.Config
}

// NewSpotifyExchanger creates an exchanger against the Spotify accounts service.
func NewSpotifyExchanger(clientID, redirectURI, scopes string) *SpotifyExchanger {
	return NewExchanger(clientID, redirectURI, scopes, oauth2.Endpoint{
		AuthURL:   spotifyAuthURL,
		TokenURL:  spotifyTokenURL,
		AuthStyle: oauth2.AuthStyleInParams,
	})
}

// NewExchanger creates an exchanger against an explicit endpoint.
func NewExchanger(clientID, redirectURI, scopes string, endpoint oauth2.Endpoint) *SpotifyExchanger {
	return &SpotifyExchanger{
		config: &oauth2.Config{
			ClientID:    clientID,
			RedirectURL: redirectURI,
			Scopes:      strings.Fields(scopes),
			Endpoint:    endpoint,
		},
	}
}

// AuthCodeURL builds the remote authorization URL carrying the S256 code
// challenge for the given [Challenge].
func (e *SpotifyExchanger) AuthCodeURL(challenge string) string {
	return e.config.AuthCodeURL("",
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
		oauth2.SetAuthURLParam("code_challenge", challenge),
	)
}

// Exchange performs the authorization_code grant with the PKCE verifier.
func (e *SpotifyExchanger) Exchange(ctx context.Context, code, verifier string) (*TokenSet, error) {
	token, err := e.config.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, classify(err)
	}
	return normalize(token)
}

// Refresh performs the refresh_token grant.
func (e *SpotifyExchanger) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	token, err := e.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, classify(err)
	}
	return normalize(token)
}

// classify maps oauth2 failures onto the shared taxonomy: an explicit
// server rejection is [shared.ErrAuthFailed], a request that never got a
// response is [shared.ErrTransport], and anything else (malformed body,
// missing fields) counts as a rejection.
func classify(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		msg := retrieveErr.ErrorCode
		if msg == "" {
			msg = fmt.Sprintf("status %d", retrieveErr.Response.StatusCode)
		}
		return fmt.Errorf("%w: %s", shared.ErrAuthFailed, msg)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%w: %v", shared.ErrTransport, urlErr)
	}

	return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
}

// normalize converts an [oauth2.Token] into a [TokenSet], rejecting
// responses without an access token.
func normalize(token *oauth2.Token) (*TokenSet, error) {
	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: response missing access token", shared.ErrAuthFailed)
	}

	set := &TokenSet{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	if !token.Expiry.IsZero() {
		set.ExpiresIn = int64(time.Until(token.Expiry).Round(time.Second).Seconds())
	}
	return set, nil
}
