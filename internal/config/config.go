package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the top-level configuration for the login helper.
type Config struct {
	ListenAddr    string    `toml:"listen_addr"`
	LogLevel      string    `toml:"log_level"`
	TLSCertPath   string    `toml:"tls_cert_path"`
	TLSKeyPath    string    `toml:"tls_key_path"`
	TLSSelfSigned bool      `toml:"tls_self_signed"`
	App           AppConfig `toml:"app"`
}

// AppConfig describes the app registration and dialog behavior.
type AppConfig struct {
	AppID           string   `toml:"app_id"`
	RedirectURI     string   `toml:"redirect_uri"`
	DialogURL       string   `toml:"dialog_url"`
	Permissions     []string `toml:"permissions"`
	DefaultAudience string   `toml:"default_audience"`
	AuthType        string   `toml:"auth_type"`
	LoginBehavior   string   `toml:"login_behavior"`
	SDKVersion      string   `toml:"sdk_version"`
	SSODevice       string   `toml:"sso_device"`
	AutoLogEvents   bool     `toml:"auto_log_events"`
	TabPrefetching  bool     `toml:"tab_prefetching"`
	TargetApp       string   `toml:"target_app"`
	FamilyLogin     bool     `toml:"family_login"`
	SkipDedupe      bool     `toml:"skip_dedupe"`
	MessengerPageID string   `toml:"messenger_page_id"`

	// Identity token verification (optional). When issuer and jwks_url are
	// set, redirect completion verifies id_token signatures and claims.
	Issuer      string   `toml:"issuer"`
	JWKSURL     string   `toml:"jwks_url"`
	IssuerHosts []string `toml:"issuer_hosts"`

	// TokenCacheTTL bounds how long a granted token stays reusable for
	// silent re-login. Zero keeps tokens until they are replaced.
	TokenCacheTTL    time.Duration `toml:"-"`
	TokenCacheTTLRaw string        `toml:"token_cache_ttl"`

	// Computed: the callback path of the redirect URI.
	CallbackPath string
}

// Load reads the configuration from a TOML file.
func Load(path string) (*Config, error) {
	cfg := &Config{
		ListenAddr: ":3000",
		LogLevel:   "info",
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	// Apply defaults
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":3000"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	// Validate TLS settings
	if cfg.TLSSelfSigned && (cfg.TLSCertPath != "" || cfg.TLSKeyPath != "") {
		return nil, fmt.Errorf("tls_self_signed and tls_cert_path/tls_key_path are mutually exclusive")
	}
	if (cfg.TLSCertPath != "") != (cfg.TLSKeyPath != "") {
		return nil, fmt.Errorf("both tls_cert_path and tls_key_path must be specified together")
	}

	if err := applyAppDefaults(&cfg.App); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyAppDefaults(c *AppConfig) error {
	if c.AppID == "" {
		return fmt.Errorf("app: app_id is required")
	}
	if c.DialogURL == "" {
		return fmt.Errorf("app: dialog_url is required")
	}
	if u, err := url.Parse(c.DialogURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("app: invalid dialog_url %q", c.DialogURL)
	}

	if c.RedirectURI == "" {
		c.RedirectURI = "http://localhost:3000/authorize/"
	}
	redirect, err := url.Parse(c.RedirectURI)
	if err != nil {
		return fmt.Errorf("app: invalid redirect_uri %q: %w", c.RedirectURI, err)
	}
	c.CallbackPath = redirect.Path
	if c.CallbackPath == "" {
		c.CallbackPath = "/"
	}

	if len(c.Permissions) == 0 {
		c.Permissions = []string{"public_profile", "email"}
	}
	if c.DefaultAudience == "" {
		c.DefaultAudience = "friends"
	}
	if c.AuthType == "" {
		c.AuthType = "rerequest"
	}
	if c.LoginBehavior == "" {
		c.LoginBehavior = "WEB_ONLY"
	}
	if c.SDKVersion == "" {
		c.SDKVersion = "dev"
	}

	if c.FamilyLogin && c.TargetApp == "" {
		return fmt.Errorf("app: family_login requires target_app")
	}

	if (c.Issuer == "") != (c.JWKSURL == "") {
		return fmt.Errorf("app: issuer and jwks_url must be specified together")
	}

	if c.TokenCacheTTLRaw != "" {
		ttl, err := time.ParseDuration(c.TokenCacheTTLRaw)
		if err != nil {
			return fmt.Errorf("app: invalid token_cache_ttl %q: %w", c.TokenCacheTTLRaw, err)
		}
		c.TokenCacheTTL = ttl
	}

	return nil
}

// VerificationEnabled returns true when identity token verification is
// configured.
func (c *AppConfig) VerificationEnabled() bool {
	return c.Issuer != "" && c.JWKSURL != ""
}

// TLSEnabled returns true if TLS is configured (self-signed or cert files).
func (c *Config) TLSEnabled() bool {
	return c.TLSSelfSigned || (c.TLSCertPath != "" && c.TLSKeyPath != "")
}
