package config

import (
	"fmt"
	"time"
)

// BaseConfig is the application configuration tree. The go-config
// container loads it from config files and environment overrides.
type BaseConfig struct {
	App         App         `json:"app" koanf:"app"`
	Server      Server      `json:"server" koanf:"server"`
	Auth        Auth        `json:"auth" koanf:"auth"`
	Persistence Persistence `json:"persistence" koanf:"persistence"`
}

func (a *BaseConfig) Validate() error {
	if a.Auth.SigningKey == "" {
		return fmt.Errorf("auth.signing_key is required")
	}
	return nil
}

func (a *BaseConfig) GetApp() App                 { return a.App }
func (a *BaseConfig) GetServer() Server           { return a.Server }
func (a *BaseConfig) GetAuth() Auth               { return a.Auth }
func (a *BaseConfig) GetPersistence() Persistence { return a.Persistence }

type App struct {
	Name  string `json:"name" koanf:"name"`
	Debug bool   `json:"debug" koanf:"debug"`
}

func (a App) GetName() string {
	if a.Name == "" {
		return "walks"
	}
	return a.Name
}

func (a App) GetDebug() bool { return a.Debug }

type Server struct {
	Addr string `json:"addr" koanf:"addr"`
}

func (s Server) GetAddr() string {
	if s.Addr == "" {
		return ":8080"
	}
	return s.Addr
}

// Auth satisfies the walks.Config interface.
type Auth struct {
	SigningKey      string   `json:"signing_key" koanf:"signing_key"`
	TokenExpiration int      `json:"token_expiration" koanf:"token_expiration"`
	Issuer          string   `json:"issuer" koanf:"issuer"`
	Audience        []string `json:"audience" koanf:"audience"`
	ContextKey      string   `json:"context_key" koanf:"context_key"`
	AuthScheme      string   `json:"auth_scheme" koanf:"auth_scheme"`
	TokenLookup     string   `json:"token_lookup" koanf:"token_lookup"`
}

func (a Auth) GetSigningKey() string { return a.SigningKey }

func (a Auth) GetTokenExpiration() int {
	if a.TokenExpiration <= 0 {
		return 24
	}
	return a.TokenExpiration
}

func (a Auth) GetIssuer() string {
	if a.Issuer == "" {
		return "walks"
	}
	return a.Issuer
}

func (a Auth) GetAudience() []string {
	if len(a.Audience) == 0 {
		return []string{"walks"}
	}
	return a.Audience
}

func (a Auth) GetContextKey() string {
	if a.ContextKey == "" {
		return "actor"
	}
	return a.ContextKey
}

func (a Auth) GetAuthScheme() string {
	if a.AuthScheme == "" {
		return "Bearer"
	}
	return a.AuthScheme
}

func (a Auth) GetTokenLookup() string {
	if a.TokenLookup == "" {
		return "header:Authorization"
	}
	return a.TokenLookup
}

type Persistence struct {
	Driver                string `json:"driver" koanf:"driver"`
	DSN                   string `json:"dsn" koanf:"dsn"`
	Debug                 bool   `json:"debug" koanf:"debug"`
	PingTimeoutExpression string `json:"ping_timeout" koanf:"ping_timeout"`
}

func (p Persistence) GetDriver() string {
	if p.Driver == "" {
		return "sqlite"
	}
	return p.Driver
}

func (p Persistence) GetDSN() string {
	if p.DSN == "" {
		return "file:walks.db?cache=shared&_pragma=foreign_keys(1)"
	}
	return p.DSN
}

func (p Persistence) GetDebug() bool { return p.Debug }

// GetServer and GetOtelIdentifier satisfy persistence.Config; the client
// never reads GetServer (the DSN is passed via sql.Open) and an empty otel
// identifier selects the library default.
func (p Persistence) GetServer() string { return p.GetDSN() }

func (p Persistence) GetOtelIdentifier() string { return "" }

func (p Persistence) GetPingTimeout() time.Duration {
	if p.PingTimeoutExpression == "" {
		return 5 * time.Second
	}
	dur, err := time.ParseDuration(p.PingTimeoutExpression)
	if err != nil {
		panic(
			fmt.Sprintf("unable to parse time: expr %s", p.PingTimeoutExpression),
		)
	}
	return dur
}
