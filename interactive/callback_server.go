// Package interactive runs the browser-based authorization code sign-in for
// native and CLI applications: a loopback HTTP listener catches the redirect
// from the authorization endpoint while the system browser shows the
// platform's sign-in UI.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-msauth/identity"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// CallbackServer is a loopback HTTP listener that captures one authorization
// response. It answers the browser with a small HTML page and hands the
// parsed response to WaitForResponse. Both the query and form_post response
// modes are handled; fragment responses never reach a server by design of
// the user agent.
type CallbackServer struct {
	host     string
	path     string
	server   *http.Server
	listener net.Listener

	results chan *identity.AuthorizationQueryResponse
	errs    chan error

	stopOnce sync.Once
}

// NewCallbackServer builds a server for redirectURI, which must be an http
// URL on a loopback host. Port 0 selects a free port; the effective redirect
// URI is available from RedirectURI after Start.
func NewCallbackServer(redirectURI string) (*CallbackServer, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", identity.ErrMalformedURL, redirectURI, err)
	}
	if u.Scheme != "http" {
		return nil, identity.InvalidValue("redirect_uri", "loopback redirects must use http")
	}
	host := u.Hostname()
	if host != "localhost" && !net.ParseIP(host).IsLoopback() {
		return nil, identity.InvalidValue("redirect_uri", "redirect host must be a loopback address")
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	addr := u.Host
	if u.Port() == "" {
		addr = net.JoinHostPort(host, "0")
	}

	return &CallbackServer{
		host:    host,
		path:    path,
		results: make(chan *identity.AuthorizationQueryResponse, 1),
		errs:    make(chan error, 1),
		server: &http.Server{
			Addr:              addr,
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}, nil
}

// Start binds the listener and begins serving in the background. The
// returned error covers bind failures; serve failures surface through
// WaitForResponse.
func (cs *CallbackServer) Start() error {
	listener, err := net.Listen("tcp", cs.server.Addr)
	if err != nil {
		return fmt.Errorf("bind callback listener on %q: %w", cs.server.Addr, err)
	}
	cs.listener = listener

	mux := http.NewServeMux()
	mux.HandleFunc(cs.path, cs.handleRedirect)
	if cs.path != "/" {
		mux.HandleFunc("/", cs.handleInfo)
	}
	cs.server.Handler = mux

	go func() {
		log.Debug().Str("addr", listener.Addr().String()).Msg("callback server listening")
		if err := cs.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cs.errs <- fmt.Errorf("callback server: %w", err)
		}
	}()
	return nil
}

// RedirectURI returns the URI the authorization request should redirect to:
// the configured host with the port the listener actually bound. The host is
// kept as configured so the URI matches the application's registered
// loopback redirect.
func (cs *CallbackServer) RedirectURI() string {
	_, port, err := net.SplitHostPort(cs.listener.Addr().String())
	if err != nil {
		return "http://" + cs.listener.Addr().String() + cs.path
	}
	return "http://" + net.JoinHostPort(cs.host, port) + cs.path
}

// WaitForResponse blocks until the browser delivers an authorization
// response, the server fails, or ctx ends. A deadline expiry is reported as
// a timeout.
func (cs *CallbackServer) WaitForResponse(ctx context.Context) (*identity.AuthorizationQueryResponse, error) {
	select {
	case response := <-cs.results:
		return response, nil
	case err := <-cs.errs:
		return nil, err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: waiting for the authorization redirect: %v", identity.ErrTimeout, ctx.Err())
		}
		return nil, ctx.Err()
	}
}

// Stop shuts the listener down, letting an in-flight response write finish.
func (cs *CallbackServer) Stop() {
	cs.stopOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := cs.server.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("callback server shutdown")
		}
	})
}

func (cs *CallbackServer) handleRedirect(w http.ResponseWriter, r *http.Request) {
	var response *identity.AuthorizationQueryResponse
	switch r.Method {
	case http.MethodGet:
		parsed, err := identity.ParseAuthorizationResponse(r.URL.String())
		if err != nil {
			cs.deliverError(w, err)
			return
		}
		response = parsed
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			cs.deliverError(w, fmt.Errorf("%w: parsing form_post body: %v", identity.ErrMissingRedirectPayload, err))
			return
		}
		response = identity.ParseAuthorizationValues(r.PostForm)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := response.Err(); err != nil {
		cs.writeErrorPage(w, err)
	} else {
		cs.writeSuccessPage(w)
	}

	select {
	case cs.results <- response:
	default:
	}
}

func (cs *CallbackServer) handleInfo(w http.ResponseWriter, _ *http.Request) {
	setSecurityHeaders(w)
	page := `<!DOCTYPE html>
<html>
<head>
    <title>Waiting for sign-in</title>
    <meta charset="utf-8">
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; text-align: center; }
        .message { max-width: 600px; margin: 0 auto; padding: 20px; border-radius: 5px;
                   background-color: #e7f3ff; border: 1px solid #b3d9ff; color: #0066cc; }
    </style>
</head>
<body>
    <div class="message">
        <h1>Waiting for sign-in</h1>
        <p>Complete the sign-in in your browser. This page can be closed.</p>
    </div>
</body>
</html>`
	if _, err := w.Write([]byte(page)); err != nil {
		log.Warn().Err(err).Msg("writing callback info page")
	}
}

func (cs *CallbackServer) deliverError(w http.ResponseWriter, err error) {
	cs.writeErrorPage(w, err)
	select {
	case cs.errs <- err:
	default:
	}
}

func setSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'unsafe-inline'; script-src 'none'; object-src 'none';")
}

func (cs *CallbackServer) writeSuccessPage(w http.ResponseWriter) {
	setSecurityHeaders(w)
	page := `<!DOCTYPE html>
<html>
<head>
    <title>Sign-in complete</title>
    <meta charset="utf-8">
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; text-align: center; }
        .message { max-width: 600px; margin: 0 auto; padding: 20px; border-radius: 5px;
                   background-color: #e7f6e7; border: 1px solid #b3e6b3; color: #006600; }
    </style>
</head>
<body>
    <div class="message">
        <h1>Sign-in complete</h1>
        <p>You can close this window and return to the application.</p>
    </div>
</body>
</html>`
	if _, err := w.Write([]byte(page)); err != nil {
		log.Warn().Err(err).Msg("writing callback success page")
	}
}

func (cs *CallbackServer) writeErrorPage(w http.ResponseWriter, cause error) {
	setSecurityHeaders(w)
	w.WriteHeader(http.StatusBadRequest)
	page := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <title>Sign-in failed</title>
    <meta charset="utf-8">
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; text-align: center; }
        .message { max-width: 600px; margin: 0 auto; padding: 20px; border-radius: 5px;
                   background-color: #ffe7e7; border: 1px solid #ffb3b3; color: #cc0000; }
    </style>
</head>
<body>
    <div class="message">
        <h1>Sign-in failed</h1>
        <p>%s</p>
        <p>Close this window and try again.</p>
    </div>
</body>
</html>`, html.EscapeString(cause.Error()))
	if _, err := w.Write([]byte(page)); err != nil {
		log.Warn().Err(err).Msg("writing callback error page")
	}
}
