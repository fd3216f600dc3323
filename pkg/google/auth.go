package google

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/klokku/calinvoice/internal/config"
	"github.com/klokku/calinvoice/internal/event_bus"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/calendar/v3"
)

var (
	ErrListenerBind = errors.New("unable to start the OAuth redirect listener")
	ErrTimedOut     = errors.New("timed out waiting for authorization")
	ErrDenied       = errors.New("authorization was denied")
)

type AuthState int32

const (
	AuthIdle AuthState = iota
	AuthListenerStarting
	AuthAwaitingUser
	AuthTokenAcquired
	AuthFailed
)

func (s AuthState) String() string {
	switch s {
	case AuthIdle:
		return "idle"
	case AuthListenerStarting:
		return "listener starting"
	case AuthAwaitingUser:
		return "awaiting user authorization"
	case AuthTokenAcquired:
		return "token acquired"
	case AuthFailed:
		return "failed"
	}
	return fmt.Sprintf("AuthState(%d)", int32(s))
}

const callbackPage = `<!doctype html><html><body><p>%s</p><p>You may close this window.</p></body></html>`

// GoogleAuth runs the installed-app OAuth flow: a local listener receives the redirect,
// the code is exchanged for a token and the token is handed back through a one-shot
// channel.
type GoogleAuth struct {
	oauthConfig *oauth2.Config
	listenAddr  string
	timeout     time.Duration
	state       atomic.Int32
}

func NewGoogleAuth(cfg config.Application) *GoogleAuth {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.Google.ClientId,
		ClientSecret: cfg.Google.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{calendar.CalendarReadonlyScope},
	}
	return &GoogleAuth{
		oauthConfig: oauthConfig,
		listenAddr:  cfg.Auth.Listen,
		timeout:     cfg.Auth.Timeout,
	}
}

func (g *GoogleAuth) State() AuthState {
	return AuthState(g.state.Load())
}

func (g *GoogleAuth) setState(s AuthState) {
	log.Debugf("google auth: %s", s)
	g.state.Store(int32(s))
}

// Run performs the whole flow and reports through sender: first an OauthURL, then
// either an AuthToken or an AuthFailed. It returns when the flow has finished.
func (g *GoogleAuth) Run(ctx context.Context, sender event_bus.Sender) {
	token, err := g.authorize(ctx, sender)
	if err != nil {
		g.setState(AuthFailed)
		log.Errorf("google authorization failed: %v", err)
		send(sender, event_bus.AuthFailed{Err: err})
		return
	}
	g.setState(AuthTokenAcquired)
	log.Info("Google auth token received")
	send(sender, event_bus.AuthToken{Token: token.AccessToken})
}

type callbackResult struct {
	token *oauth2.Token
	err   error
}

func (g *GoogleAuth) authorize(ctx context.Context, sender event_bus.Sender) (*oauth2.Token, error) {
	g.setState(AuthListenerStarting)
	listener, err := net.Listen("tcp", g.listenAddr)
	if err != nil {
		return nil, fmt.Errorf("%w on %s: %v", ErrListenerBind, g.listenAddr, err)
	}

	oauthConfig := *g.oauthConfig
	oauthConfig.RedirectURL = "http://" + listener.Addr().String()
	stateNonce := uuid.New().String()

	results := make(chan callbackResult, 1)
	router := mux.NewRouter()
	router.HandleFunc("/", g.callbackHandler(&oauthConfig, stateNonce, results)).Methods(http.MethodGet)
	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	waitCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	var token *oauth2.Token
	group, groupCtx := errgroup.WithContext(waitCtx)
	group.Go(func() error {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("redirect listener stopped: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		defer shutdown(srv)

		g.setState(AuthAwaitingUser)
		u := oauthConfig.AuthCodeURL(stateNonce)
		log.Infof("Waiting for authorization, redirect listener on %s", oauthConfig.RedirectURL)
		send(sender, event_bus.OauthURL{URL: u})

		select {
		case res := <-results:
			token = res.token
			return res.err
		case <-groupCtx.Done():
			if errors.Is(waitCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
				return fmt.Errorf("%w after %s", ErrTimedOut, g.timeout)
			}
			return fmt.Errorf("authorization aborted: %w", groupCtx.Err())
		}
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return token, nil
}

// callbackHandler accepts the provider redirect. Requests with a foreign state are
// rejected and do not end the flow; the first valid redirect resolves it exactly once.
func (g *GoogleAuth) callbackHandler(oauthConfig *oauth2.Config, stateNonce string, results chan<- callbackResult) http.HandlerFunc {
	var once sync.Once
	resolve := func(res callbackResult) bool {
		resolved := false
		once.Do(func() {
			results <- res
			resolved = true
		})
		return resolved
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if r.FormValue("state") != stateNonce {
			log.Warnf("ignoring OAuth redirect with unexpected state from %s", r.RemoteAddr)
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, callbackPage, "Invalid authorization state.")
			return
		}

		if errParam := r.FormValue("error"); errParam != "" {
			resolve(callbackResult{err: fmt.Errorf("%w: %s", ErrDenied, errParam)})
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprintf(w, callbackPage, "Authorization was denied.")
			return
		}

		code := r.FormValue("code")
		if code == "" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, callbackPage, "Missing authorization code.")
			return
		}

		token, err := oauthConfig.Exchange(r.Context(), code)
		if err != nil {
			err := fmt.Errorf("unable to exchange code for token: %w", err)
			log.Error(err)
			resolve(callbackResult{err: err})
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprintf(w, callbackPage, "Authorization failed.")
			return
		}
		if !resolve(callbackResult{token: token}) {
			fmt.Fprintf(w, callbackPage, "Already authorized.")
			return
		}
		fmt.Fprintf(w, callbackPage, "Authorization complete.")
	}
}

func shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warnf("redirect listener shutdown: %v", err)
	}
}

// send delivers msg and only logs when the receiver is gone.
func send(sender event_bus.Sender, msg event_bus.Message) {
	if err := sender.Send(msg); err != nil {
		log.Warnf("unable to deliver %T: %v", msg, err)
	}
}
