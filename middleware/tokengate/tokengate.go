package tokengate

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-router"
	walks "github.com/goliatone/go-walks"
)

var (
	defaultTokenLookup = "header:" + router.HeaderAuthorization

	ErrTokenMissingOrMalformed = errors.New("missing or malformed bearer token")
)

// TokenValidator mirrors walks.TokenService.Validate so the gate stays
// decoupled from the token implementation.
type TokenValidator interface {
	Validate(tokenString string) (*walks.JWTClaims, error)
}

// PrincipalResolver loads the account behind a token subject. The gate
// re-resolves on every request so role and active status are always the
// stored values, never the issuance-time claims.
type PrincipalResolver interface {
	GetByIdentifier(ctx context.Context, identifier string) (*walks.User, error)
}

type Config struct {
	// Filter skips the gate entirely when it returns true.
	Filter func(router.Context) bool
	// TokenValidator is required.
	TokenValidator TokenValidator
	// Resolver is required.
	Resolver PrincipalResolver
	// ContextKey is the locals key the resolved actor is stored under.
	ContextKey string
	// TokenLookup is a comma separated list of "<source>:<name>" entries,
	// e.g. "header:Authorization,query:auth_token,cookie:jwt".
	TokenLookup string
	// AuthScheme is the expected header prefix, "Bearer" by default.
	AuthScheme string
	Logger     walks.Logger
}

// New builds the token gate middleware. The gate never rejects a request:
// any missing, malformed, invalid, or expired token, and any failure to
// re-resolve the principal, degrades the request to anonymous and lets the
// downstream authorization guards decide.
func New(config ...Config) router.MiddlewareFunc {
	cfg := getDefaultConfig(config...)

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			raw, err := extractRawToken(ctx, cfg.getExtractors())
			if err != nil || raw == "" {
				return ctx.Next()
			}

			actor, err := ResolveActor(ctx.Context(), raw, cfg)
			if err != nil {
				cfg.Logger.Debug("token gate proceeding anonymous", "error", err)
				return ctx.Next()
			}

			ctx.Locals(cfg.ContextKey, actor)
			ctx.SetContext(walks.WithActor(ctx.Context(), actor))

			return ctx.Next()
		}
	}
}

// ResolveActor turns a raw token into a request actor: validate the token,
// then load the account by subject and check it is still active. Errors
// mean "treat as anonymous", never "reject".
func ResolveActor(ctx context.Context, raw string, cfg Config) (*walks.Actor, error) {
	claims, err := cfg.TokenValidator.Validate(raw)
	if err != nil {
		return nil, err
	}

	user, err := cfg.Resolver.GetByIdentifier(ctx, claims.Subject())
	if err != nil {
		return nil, err
	}

	if user == nil || !user.IsActive {
		return nil, walks.ErrAccountDisabled
	}

	return walks.ActorFromUser(user), nil
}

func getDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.TokenValidator == nil {
		panic("WALKS: token gate configuration: TokenValidator is required.")
	}

	if cfg.Resolver == nil {
		panic("WALKS: token gate configuration: Resolver is required.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "actor"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.Logger == nil {
		cfg.Logger = walks.DefaultLogger()
	}

	return cfg
}

func (cfg *Config) getExtractors() []TokenExtractor {
	return GetExtractors(cfg.TokenLookup, cfg.AuthScheme)
}

func extractRawToken(ctx router.Context, extractors []TokenExtractor) (string, error) {
	var raw string
	var err error

	for _, extractor := range extractors {
		raw, err = extractor(ctx)
		if raw != "" && err == nil {
			break
		}
	}

	return raw, err
}

// TokenExtractor pulls a raw token out of the request.
type TokenExtractor func(c router.Context) (string, error)

func GetExtractors(tokenLookup string, authSchemes ...string) []TokenExtractor {
	extractors := make([]TokenExtractor, 0)

	authScheme := "Bearer"
	if len(authSchemes) > 0 {
		authScheme = authSchemes[0]
	}

	// header:Authorization,cookie:jwt,query:auth_token,param:token
	rootParts := strings.Split(tokenLookup, ",")
	for _, rootPart := range rootParts {
		parts := strings.Split(strings.TrimSpace(rootPart), ":")

		for i, el := range parts {
			parts[i] = strings.TrimSpace(el)
		}

		switch parts[0] {
		case "header":
			extractors = append(extractors, tokenFromHeader(parts[1], authScheme))
		case "query":
			extractors = append(extractors, tokenFromQuery(parts[1]))
		case "param":
			extractors = append(extractors, tokenFromParam(parts[1]))
		case "cookie":
			extractors = append(extractors, tokenFromCookie(parts[1]))
		}
	}

	return extractors
}

// tokenFromHeader returns a function that extracts the token from the
// request header.
func tokenFromHeader(header string, authScheme string) func(c router.Context) (string, error) {
	return func(c router.Context) (string, error) {
		a := c.GetString(header, "")
		l := len(authScheme)
		if l == 0 {
			return "", ErrTokenMissingOrMalformed
		}
		authScheme = strings.TrimSpace(authScheme)
		if len(a) > l+1 && strings.EqualFold(a[:l], authScheme) {
			return strings.TrimSpace(a[l:]), nil
		}
		return "", ErrTokenMissingOrMalformed
	}
}

// tokenFromQuery returns a function that extracts the token from the query
// string.
func tokenFromQuery(param string) func(c router.Context) (string, error) {
	return func(c router.Context) (string, error) {
		token := c.Query(param, "")
		if token == "" {
			return "", ErrTokenMissingOrMalformed
		}
		return token, nil
	}
}

// tokenFromParam returns a function that extracts the token from the url
// param string.
func tokenFromParam(param string) func(c router.Context) (string, error) {
	return func(c router.Context) (string, error) {
		token := c.Param(param)
		if token == "" {
			return "", ErrTokenMissingOrMalformed
		}
		return token, nil
	}
}

// tokenFromCookie returns a function that extracts the token from the
// named cookie.
func tokenFromCookie(name string) func(c router.Context) (string, error) {
	return func(c router.Context) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrTokenMissingOrMalformed
		}
		return token, nil
	}
}
