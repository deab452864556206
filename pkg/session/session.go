package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// CookieName is the name of the session cookie
	CookieName = "session"

	issuer = "flasky"
)

var (
	// ErrInvalidSession is returned when a session token cannot be verified
	ErrInvalidSession = errors.New("invalid session")

	// ErrMissingSecret is returned when a codec is built without a key
	ErrMissingSecret = errors.New("session secret key is required")
)

// State is the per-browser session state
type State struct {
	// Known reports whether the last submitted name was already stored
	Known bool `json:"known"`
	// Name is the last submitted name; empty means absent
	Name string `json:"name,omitempty"`
	// Flashes are one-shot messages shown on the next render
	Flashes []string `json:"flashes,omitempty"`
}

// Flash queues a message for the next page render
func (s *State) Flash(message string) {
	s.Flashes = append(s.Flashes, message)
}

// PopFlashes returns the pending flash messages and clears them
func (s *State) PopFlashes() []string {
	flashes := s.Flashes
	s.Flashes = nil
	return flashes
}

type claims struct {
	jwt.RegisteredClaims
	State
}

// Codec signs and verifies session cookies
type Codec struct {
	key        []byte
	cookieName string
	maxAge     time.Duration
	secure     bool
	now        func() time.Time
}

// Option configures a Codec
type Option func(*Codec)

// WithMaxAge makes the session expire after d. Zero keeps the session for
// the lifetime of the browser.
func WithMaxAge(d time.Duration) Option {
	return func(c *Codec) { c.maxAge = d }
}

// WithSecure sets the Secure attribute on the cookie
func WithSecure(secure bool) Option {
	return func(c *Codec) { c.secure = secure }
}

// WithCookieName overrides CookieName
func WithCookieName(name string) Option {
	return func(c *Codec) { c.cookieName = name }
}

// WithClock overrides the time source used for issuing and verifying tokens
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// NewCodec creates a Codec signing with secret
func NewCodec(secret string, opts ...Option) (*Codec, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	c := &Codec{
		key:        []byte(secret),
		cookieName: CookieName,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Encode signs s into a token
func (c *Codec) Encode(s State) (string, error) {
	now := c.now()
	cl := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   issuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
		State: s,
	}
	if c.maxAge > 0 {
		cl.ExpiresAt = jwt.NewNumericDate(now.Add(c.maxAge))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, cl)
	signed, err := token.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}
	return signed, nil
}

// Decode verifies token and returns the state it carries
func (c *Codec) Decode(token string) (State, error) {
	cl := &claims{}
	_, err := jwt.ParseWithClaims(token, cl, func(*jwt.Token) (interface{}, error) {
		return c.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	return cl.State, nil
}

// Load reads the session from the request cookie. Any verification
// failure yields the zero State.
func (c *Codec) Load(r *http.Request) State {
	cookie, err := r.Cookie(c.cookieName)
	if err != nil || cookie.Value == "" {
		return State{}
	}
	s, err := c.Decode(cookie.Value)
	if err != nil {
		return State{}
	}
	return s
}

// Save writes s as the session cookie. It must be called before the
// response header is written.
func (c *Codec) Save(w http.ResponseWriter, s State) error {
	value, err := c.Encode(s)
	if err != nil {
		return err
	}
	cookie := &http.Cookie{
		Name:     c.cookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if c.maxAge > 0 {
		cookie.MaxAge = int(c.maxAge / time.Second)
	}
	http.SetCookie(w, cookie)
	return nil
}
