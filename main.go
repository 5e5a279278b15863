package main

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log/slog"
	"math/big"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/wadahiro/weblogin/internal/config"
	"github.com/wadahiro/weblogin/internal/login"
	"github.com/wadahiro/weblogin/internal/protocol"
	"github.com/wadahiro/weblogin/internal/store"
)

func main() {
	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		slog.Error("CONFIG_FILE environment variable is required")
		os.Exit(1)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	setupLogger(cfg.LogLevel)

	httpClient := &http.Client{Timeout: 10 * time.Second}

	var verifier *login.IDTokenVerifier
	if cfg.App.VerificationEnabled() {
		verifier, err = login.NewIDTokenVerifier(
			context.Background(),
			cfg.App.Issuer, cfg.App.JWKSURL, cfg.App.AppID,
			cfg.App.IssuerHosts, httpClient,
		)
		if err != nil {
			slog.Error("Failed to initialize identity token verifier", "error", err)
			os.Exit(1)
		}
		slog.Info("Identity token verification enabled", "issuer", cfg.App.Issuer)
	}

	tokens := store.New(cfg.App.TokenCacheTTL)
	handler := login.NewWebHandler(cfg.App, tokens, verifier)
	handler.SetCookieJar(loggingCookieJar{})
	pending := login.NewPendingStore()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})

	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		req := newLoginRequest(cfg.App)
		dialogURL, err := handler.DialogURL(req)
		if err != nil {
			slog.Error("Failed to build dialog URL", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		pending.Put(req)
		slog.Info("Dialog request", "auth_id", req.AuthID, "url", redactedURL(dialogURL))
		http.Redirect(w, r, dialogURL, http.StatusFound)
	})

	mux.HandleFunc(cfg.App.CallbackPath, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery == "" {
			// Token response types return parameters in the URL fragment,
			// which never reaches the server. Re-navigate with the fragment
			// as the query string.
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, fragmentRelay)
			return
		}

		state := r.URL.Query().Get("state")
		cs, err := protocol.DecodeClientState(state)
		if err != nil {
			slog.Error("Redirect with unusable state", "error", err)
			http.Error(w, "Unknown login attempt", http.StatusBadRequest)
			return
		}
		req := pending.Take(cs.AuthID)
		if req == nil {
			slog.Error("Redirect for unknown login attempt", "auth_id", cs.AuthID)
			http.Error(w, "Unknown login attempt", http.StatusBadRequest)
			return
		}

		result := handler.Complete(r.Context(), req, r.URL.String())
		writeResult(w, result)
	})

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		var err error
		if cfg.TLSSelfSigned {
			tlsCert, certErr := generateSelfSignedTLSCert()
			if certErr != nil {
				slog.Error("Failed to generate self-signed TLS certificate", "error", certErr)
				os.Exit(1)
			}
			server.TLSConfig = &tls.Config{Certificates: []tls.Certificate{tlsCert}}
			slog.Info("Listening (TLS, self-signed)", "addr", cfg.ListenAddr)
			err = server.ListenAndServeTLS("", "")
		} else if cfg.TLSCertPath != "" && cfg.TLSKeyPath != "" {
			slog.Info("Listening (TLS)", "addr", cfg.ListenAddr)
			err = server.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
		} else {
			slog.Info("Listening", "addr", cfg.ListenAddr)
			err = server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-shutdown
	slog.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Shutdown failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped")
}

// fragmentRelay re-submits fragment parameters as a query string so the
// callback handler can see them.
const fragmentRelay = `<!DOCTYPE html>
<html><body><script>
if (location.hash.length > 1) {
  location.replace(location.pathname + "?" + location.hash.substring(1));
} else {
  document.body.appendChild(document.createTextNode("No login response received."));
}
</script></body></html>
`

// redactedURL masks the access_token query parameter. Dialog URLs may carry
// the previously granted token for cookie-session reuse.
func redactedURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if q.Has(protocol.ParamAccessToken) {
		q.Set(protocol.ParamAccessToken, "redacted")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func newLoginRequest(app config.AppConfig) *login.Request {
	req := login.NewRequest(app.AppID, app.RedirectURI, app.Permissions)
	if app.DefaultAudience != "" {
		req.Audience = login.Audience(app.DefaultAudience)
	}
	if app.AuthType != "" {
		req.AuthType = app.AuthType
	}
	if app.LoginBehavior != "" {
		req.Behavior = login.Behavior(app.LoginBehavior)
	}
	req.TargetApp = app.TargetApp
	req.FamilyLogin = app.FamilyLogin
	req.SkipDedupe = app.SkipDedupe
	req.MessengerPageID = app.MessengerPageID
	return req
}

func writeResult(w http.ResponseWriter, result *login.Result) {
	switch result.Status {
	case login.StatusSuccess:
		at := result.AccessToken
		slog.Info("Login succeeded",
			"auth_id", result.Request.AuthID,
			"user_id", at.UserID,
			"permissions", strings.Join(at.Permissions, ","),
			"declined", strings.Join(at.DeclinedPermissions, ","),
			"expires", at.Expires,
			"source", at.Source.String(),
			"has_identity_token", result.AuthenticationToken != nil,
		)
		fmt.Fprintf(w, "Login succeeded for user %s\n", at.UserID)
		if idt := result.AuthenticationToken; idt != nil {
			slog.Info("Identity token",
				"kid", idt.Header.Kid,
				"sub", idt.Claims.Sub,
				"iss", idt.Claims.Iss,
			)
			fmt.Fprintf(w, "Identity token subject: %s\n", idt.Claims.Sub)
		}
	case login.StatusCancel:
		slog.Info("Login canceled", "auth_id", result.Request.AuthID)
		fmt.Fprintln(w, "Login canceled.")
	default:
		slog.Error("Login failed",
			"auth_id", result.Request.AuthID,
			"code", result.Err.Code,
			"service_code", result.Err.ServiceCode,
			"error", result.Err.Error(),
		)
		http.Error(w, "Login failed: "+result.Err.Error(), http.StatusBadRequest)
	}
}

// loggingCookieJar reports cookie operations; a Go host process has no
// platform cookie manager to drive.
type loggingCookieJar struct{}

func (loggingCookieJar) Clear() { slog.Debug("Clearing dialog cookies") }
func (loggingCookieJar) Sync()  { slog.Debug("Syncing dialog cookies") }

func setupLogger(level string) {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))
}

func generateSelfSignedTLSCert() (tls.Certificate, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("generate RSA key: %w", err)
	}

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(365 * 24 * time.Hour),
		DNSNames:     []string{"localhost"},
		IPAddresses:  []net.IP{net.IPv4(127, 0, 0, 1)},
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("create certificate: %w", err)
	}

	return tls.Certificate{
		Certificate: [][]byte{certDER},
		PrivateKey:  key,
	}, nil
}
