// Package config loads dashboard and stub-backend settings from WOFLO_*
// environment variables (and any flags bound by the CLI).
package config

import (
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

const EnvPrefix = "WOFLO"

// Keys, lower-case; the environment form is WOFLO_<KEY upper-cased>.
const (
	KeyDashAddr    = "dash_addr"
	KeyAPIURL      = "api_url"
	KeyAPIToken    = "api_token"
	KeyAPITimeout  = "api_timeout"
	KeyRenderWait  = "render_wait"
	KeySessionTTL  = "session_ttl"
	KeyMaxSessions = "max_sessions"
	KeyLogJSON     = "log_json"
	KeyLogDebug    = "log_debug"
	KeyTraceStdout = "trace_stdout"
	KeyStubAddr    = "stub_addr"
	KeyStubDataDir = "stub_data_dir"
	KeyStubToken   = "stub_token"
)

type Config struct {
	DashAddr    string
	APIURL      string
	APIToken    string
	APITimeout  time.Duration
	RenderWait  time.Duration
	SessionTTL  time.Duration
	MaxSessions int
	LogJSON     bool
	LogDebug    bool
	TraceStdout bool

	StubAddr    string
	StubDataDir string
	StubToken   string
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDashAddr, ":3000")
	v.SetDefault(KeyAPIURL, "http://localhost:8000")
	v.SetDefault(KeyAPIToken, "")
	v.SetDefault(KeyAPITimeout, 15*time.Second)
	v.SetDefault(KeyRenderWait, 2*time.Second)
	v.SetDefault(KeySessionTTL, 30*time.Minute)
	v.SetDefault(KeyMaxSessions, 256)
	v.SetDefault(KeyLogJSON, false)
	v.SetDefault(KeyLogDebug, false)
	v.SetDefault(KeyTraceStdout, false)
	v.SetDefault(KeyStubAddr, ":8000")
	v.SetDefault(KeyStubDataDir, "local-data")
	v.SetDefault(KeyStubToken, "")
}

// New returns a viper instance reading WOFLO_* variables over the defaults.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

func Load() (Config, error) {
	return FromViper(New())
}

func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		DashAddr:    strings.TrimSpace(v.GetString(KeyDashAddr)),
		APIURL:      strings.TrimRight(strings.TrimSpace(v.GetString(KeyAPIURL)), "/"),
		APIToken:    v.GetString(KeyAPIToken),
		APITimeout:  v.GetDuration(KeyAPITimeout),
		RenderWait:  v.GetDuration(KeyRenderWait),
		SessionTTL:  v.GetDuration(KeySessionTTL),
		MaxSessions: v.GetInt(KeyMaxSessions),
		LogJSON:     v.GetBool(KeyLogJSON),
		LogDebug:    v.GetBool(KeyLogDebug),
		TraceStdout: v.GetBool(KeyTraceStdout),
		StubAddr:    strings.TrimSpace(v.GetString(KeyStubAddr)),
		StubDataDir: strings.TrimSpace(v.GetString(KeyStubDataDir)),
		StubToken:   v.GetString(KeyStubToken),
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.Newf("%s_API_URL: not an absolute URL: %q", EnvPrefix, c.APIURL)
	}
	if c.APITimeout <= 0 {
		return errors.Newf("%s_API_TIMEOUT must be positive", EnvPrefix)
	}
	if c.RenderWait < 0 {
		return errors.Newf("%s_RENDER_WAIT must not be negative", EnvPrefix)
	}
	if c.SessionTTL <= 0 {
		return errors.Newf("%s_SESSION_TTL must be positive", EnvPrefix)
	}
	if c.MaxSessions < 1 {
		return errors.Newf("%s_MAX_SESSIONS must be at least 1", EnvPrefix)
	}
	return nil
}
