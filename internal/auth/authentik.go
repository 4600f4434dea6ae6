package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/Billy-Davies-2/fc-draft-simulator/internal/logger"
)

// AuthentikConfig holds the configuration for Authentik OAuth2/OIDC
type AuthentikConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	// AppSlug is the Authentik application slug used for end-session
	AppSlug string
}

// endpoint builds an Authentik OAuth provider URL, e.g. "token/"
func (c *AuthentikConfig) endpoint(path string) string {
	return strings.TrimRight(c.BaseURL, "/") + "/application/o/" + path
}

// AuthentikAuth manages authentication with Authentik
type AuthentikAuth struct {
	config       *AuthentikConfig
	oauth2Config *oauth2.Config
	httpClient   *http.Client
	sessions     *sessionStore
}

// NewAuthentikAuth creates a new Authentik authentication handler
func NewAuthentikAuth(config *AuthentikConfig) *AuthentikAuth {
	if len(config.Scopes) == 0 {
		config.Scopes = []string{"openid", "profile", "email"}
	}
	if config.AppSlug == "" {
		config.AppSlug = "fc-draft"
	}

	return &AuthentikAuth{
		config: config,
		oauth2Config: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Scopes:       config.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  config.endpoint("authorize/"),
				TokenURL: config.endpoint("token/"),
			},
		},
		httpClient: &http.Client{Timeout: 10 * time.Second},
		sessions:   newSessionStore(),
	}
}

// LoginHandler initiates the OAuth2 login flow
func (a *AuthentikAuth) LoginHandler(w http.ResponseWriter, r *http.Request) {
	state := randomToken()
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: state, Path: "/", MaxAge: 300,
		HttpOnly: true, Secure: true, SameSite: http.SameSiteLaxMode})
	http.Redirect(w, r, a.oauth2Config.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// CallbackHandler handles the OAuth2 callback from Authentik
func (a *AuthentikAuth) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(stateCookie)
	if err != nil {
		http.Error(w, "Missing state cookie", http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("state") != cookie.Value {
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	ctx := context.WithValue(r.Context(), oauth2.HTTPClient, a.httpClient)
	token, err := a.oauth2Config.Exchange(ctx, r.URL.Query().Get("code"))
	if err != nil {
		logger.Error("Authentik token exchange failed", "error", err)
		http.Error(w, "Failed to exchange token", http.StatusInternalServerError)
		return
	}

	claims, err := a.fetchClaims(ctx, token)
	if err != nil {
		logger.Error("Authentik userinfo failed", "error", err)
		http.Error(w, "Failed to get user info", http.StatusInternalServerError)
		return
	}
	user := claims.user()

	now := time.Now()
	session := &Session{ID: randomToken(), User: user, Token: token, CreatedAt: now, ExpiresAt: token.Expiry}
	if session.ExpiresAt.IsZero() {
		session.ExpiresAt = now.Add(time.Hour)
	}
	a.sessions.put(session)

	setSessionCookie(w, session, true)
	clearCookie(w, stateCookie)
	logger.Info("User logged in", "username", user.Username)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// LogoutHandler drops the session and ends it at Authentik too
func (a *AuthentikAuth) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		a.sessions.remove(cookie.Value)
	}
	clearCookie(w, sessionCookie)

	http.Redirect(w, r, a.config.endpoint(a.config.AppSlug+"/end-session/"), http.StatusSeeOther)
}

// Middleware protects routes requiring authentication
func (a *AuthentikAuth) Middleware(next http.Handler) http.Handler {
	return a.sessions.middleware(next)
}

// oidcClaims is the subset of the userinfo response we keep
type oidcClaims struct {
	Sub               string   `json:"sub"`
	Email             string   `json:"email"`
	Name              string   `json:"name"`
	PreferredUsername string   `json:"preferred_username"`
	Groups            []string `json:"groups"`
}

func (c oidcClaims) user() *User {
	username := c.PreferredUsername
	if username == "" {
		username = c.Email
	}
	return &User{ID: c.Sub, Email: c.Email, Name: c.Name, Username: username, Groups: c.Groups}
}

// fetchClaims calls the userinfo endpoint with the access token attached
func (a *AuthentikAuth) fetchClaims(ctx context.Context, token *oauth2.Token) (oidcClaims, error) {
	var claims oidcClaims
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.config.endpoint("userinfo/"), nil)
	if err != nil {
		return claims, err
	}
	resp, err := a.oauth2Config.Client(ctx, token).Do(req)
	if err != nil {
		return claims, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return claims, fmt.Errorf("userinfo: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	err = json.NewDecoder(resp.Body).Decode(&claims)
	return claims, err
}
