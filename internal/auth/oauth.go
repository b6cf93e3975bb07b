package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tgienger/synergy/internal/models"
)

const callbackPath = "/oauth-callback"

// OAuthConfig describes an OAuth 2.0 authorization-code provider
type OAuthConfig struct {
	Name         string
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
	CallbackAddr string // host:port of the local redirect listener
	Scopes       []string
}

// OAuth runs the authorization-code flow with PKCE. The browser is opened
// through Open and the code arrives on a local callback server.
type OAuth struct {
	cfg    OAuthConfig
	open   func(string) error
	client *http.Client
	log    *zap.Logger
}

func NewOAuth(cfg OAuthConfig, open func(string) error, client *http.Client, log *zap.Logger) *OAuth {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Name == "" {
		cfg.Name = "Google"
	}
	return &OAuth{cfg: cfg, open: open, client: client, log: log}
}

func (o *OAuth) Name() string { return o.cfg.Name }

type token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type userInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

func (o *OAuth) SignIn(ctx context.Context) (models.User, error) {
	if o.cfg.ClientID == "" || o.cfg.AuthURL == "" || o.cfg.TokenURL == "" {
		return models.User{}, ErrNotConfigured
	}
	verifier, challenge, err := pkce()
	if err != nil {
		return models.User{}, err
	}
	state, err := randomString(16)
	if err != nil {
		return models.User{}, err
	}

	ln, err := net.Listen("tcp", o.cfg.CallbackAddr)
	if err != nil {
		return models.User{}, fmt.Errorf("callback listener: %w", err)
	}
	redirect := "http://" + ln.Addr().String() + callbackPath
	authURL := o.authURL(redirect, state, challenge)

	var code string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := waitForCallback(gctx, ln, state)
		code = c
		return err
	})
	g.Go(func() error {
		o.log.Debug("opening browser", zap.String("url", authURL))
		return o.open(authURL)
	})
	if err := g.Wait(); err != nil {
		return models.User{}, err
	}

	tok, err := o.exchange(ctx, code, verifier, redirect)
	if err != nil {
		return models.User{}, err
	}
	info, err := o.userInfo(ctx, tok)
	if err != nil {
		return models.User{}, err
	}
	return models.User{Name: info.Name, Email: info.Email, PhotoURL: info.Picture}, nil
}

func (o *OAuth) authURL(redirect, state, challenge string) string {
	q := url.Values{}
	q.Set("client_id", o.cfg.ClientID)
	q.Set("redirect_uri", redirect)
	q.Set("response_type", "code")
	q.Set("scope", strings.Join(o.cfg.Scopes, " "))
	q.Set("state", state)
	q.Set("code_challenge", challenge)
	q.Set("code_challenge_method", "S256")
	q.Set("prompt", "select_account")

	sep := "?"
	if strings.Contains(o.cfg.AuthURL, "?") {
		sep = "&"
	}
	return o.cfg.AuthURL + sep + q.Encode()
}

func (o *OAuth) exchange(ctx context.Context, code, verifier, redirect string) (token, error) {
	data := url.Values{}
	data.Set("client_id", o.cfg.ClientID)
	if o.cfg.ClientSecret != "" {
		data.Set("client_secret", o.cfg.ClientSecret)
	}
	data.Set("code", code)
	data.Set("code_verifier", verifier)
	data.Set("grant_type", "authorization_code")
	data.Set("redirect_uri", redirect)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.cfg.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return token{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := o.client.Do(req)
	if err != nil {
		return token{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return token{}, fmt.Errorf("token exchange failed: %s", strings.TrimSpace(string(body)))
	}

	var tok token
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return token{}, err
	}
	if tok.AccessToken == "" {
		return token{}, fmt.Errorf("token exchange returned no access token")
	}
	return tok, nil
}

func (o *OAuth) userInfo(ctx context.Context, tok token) (userInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.cfg.UserInfoURL, nil)
	if err != nil {
		return userInfo{}, err
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)

	resp, err := o.client.Do(req)
	if err != nil {
		return userInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return userInfo{}, fmt.Errorf("user info failed: %s", strings.TrimSpace(string(body)))
	}
	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return userInfo{}, err
	}
	if info.Name == "" {
		info.Name = DisplayName(info.Email)
	}
	return info, nil
}

// waitForCallback serves the redirect on ln until a code arrives, the
// provider reports an error, or ctx ends.
func waitForCallback(ctx context.Context, ln net.Listener, expectedState string) (string, error) {
	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		if q.Get("state") != expectedState {
			http.Error(w, "Invalid state", http.StatusBadRequest)
			sendErr(errChan, ErrStateMismatch)
			return
		}
		if e := q.Get("error"); e != "" {
			http.Error(w, "Sign-in failed: "+e, http.StatusBadRequest)
			sendErr(errChan, fmt.Errorf("%w: %s", ErrDenied, e))
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "No code received", http.StatusBadRequest)
			sendErr(errChan, ErrNoCode)
			return
		}

		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>Signed in</title></head>
<body style="font-family: sans-serif; text-align: center; padding: 50px;">
<h1>You are signed in to SynergySphere</h1>
<p>You can close this tab and return to the terminal.</p>
<script>window.close();</script>
</body></html>`))

		select {
		case codeChan <- code:
		default:
		}
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			sendErr(errChan, err)
		}
	}()

	select {
	case code := <-codeChan:
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return code, nil
	case err := <-errChan:
		server.Close()
		return "", err
	case <-ctx.Done():
		server.Close()
		return "", ctx.Err()
	}
}

func sendErr(ch chan<- error, err error) {
	select {
	case ch <- err:
	default:
	}
}

func pkce() (verifier, challenge string, err error) {
	verifier, err = randomString(32)
	if err != nil {
		return "", "", err
	}
	sum := sha256.Sum256([]byte(verifier))
	return verifier, base64.RawURLEncoding.EncodeToString(sum[:]), nil
}

func randomString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
