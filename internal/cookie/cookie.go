// Package cookie implements tamper-evident, expiring cookie values.
//
// A value is encoded as
//
//	base64(value) "|" unix-seconds "|" hex(HMAC-SHA256(key, base64(value) || unix-seconds))
//
// Neither base64 nor a decimal timestamp can contain the delimiter, so a
// well-formed value always splits into exactly three parts.
package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/brizzai/moodlist/internal/logger"
	"go.uber.org/zap"
)

const (
	delimiter = "|"

	// DefaultMaxAge is the server-side validity window, regardless of the
	// expiry the browser was told.
	DefaultMaxAge = 30 * 24 * time.Hour
)

var (
	// ErrInvalid is wrapped by every decode failure.
	ErrInvalid   = errors.New("invalid cookie")
	ErrMalformed = fmt.Errorf("%w: malformed value", ErrInvalid)
	ErrSignature = fmt.Errorf("%w: signature mismatch", ErrInvalid)
	ErrExpired   = fmt.Errorf("%w: expired", ErrInvalid)
)

// Codec signs and verifies cookie values with a server-held key.
type Codec struct {
	key    []byte
	maxAge time.Duration
	domain string
	secure bool
	now    func() time.Time
}

// Option configures a Codec.
type Option func(*Codec)

// WithMaxAge overrides DefaultMaxAge.
func WithMaxAge(d time.Duration) Option {
	return func(c *Codec) { c.maxAge = d }
}

// WithDomain sets the Domain attribute on issued cookies.
func WithDomain(domain string) Option {
	return func(c *Codec) { c.domain = domain }
}

// WithSecure marks issued cookies Secure.
func WithSecure(secure bool) Option {
	return func(c *Codec) { c.secure = secure }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// New returns a Codec keyed with secret.
func New(secret []byte, opts ...Option) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("cookie signing key is required")
	}
	c := &Codec{
		key:    append([]byte(nil), secret...),
		maxAge: DefaultMaxAge,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Codec) signature(encoded, timestamp string) string {
	mac := hmac.New(sha256.New, c.key)
	mac.Write([]byte(encoded))
	mac.Write([]byte(timestamp))
	return hex.EncodeToString(mac.Sum(nil))
}

func (c *Codec) encodeAt(value string, issuedAt time.Time) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(value))
	timestamp := strconv.FormatInt(issuedAt.Unix(), 10)
	return strings.Join([]string{encoded, timestamp, c.signature(encoded, timestamp)}, delimiter)
}

// Encode signs value with the current time.
func (c *Codec) Encode(value string) string {
	return c.encodeAt(value, c.now())
}

// Decode verifies raw and returns the value it carries, trimmed of
// surrounding whitespace. All failures wrap ErrInvalid.
func (c *Codec) Decode(raw string) (string, error) {
	parts := strings.Split(raw, delimiter)
	if len(parts) != 3 {
		return "", ErrMalformed
	}
	encoded, timestamp, sig := parts[0], parts[1], parts[2]

	expected := c.signature(encoded, timestamp)
	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return "", ErrSignature
	}

	issued, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: timestamp: %v", ErrMalformed, err)
	}
	if c.now().Sub(time.Unix(issued, 0)) > c.maxAge {
		return "", ErrExpired
	}

	value, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: base64: %v", ErrMalformed, err)
	}
	return strings.TrimSpace(string(value)), nil
}

// Cookie builds a signed cookie. A non-zero expires is rendered as the
// browser-side Expires attribute only; server-side validity is governed by
// the codec's max age.
func (c *Codec) Cookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    c.Encode(value),
		Path:     "/",
		Domain:   c.domain,
		Expires:  expires,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Set attaches a signed session-lifetime cookie to the response.
func (c *Codec) Set(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, c.Cookie(name, value, time.Time{}))
}

// SetWithExpiry attaches a signed cookie with an explicit browser expiry.
func (c *Codec) SetWithExpiry(w http.ResponseWriter, name, value string, expires time.Time) {
	http.SetCookie(w, c.Cookie(name, value, expires))
}

// Expire replaces the named cookie with an empty value that is already
// outside the validity window and carries a past Expires, so browsers
// drop it. A previously issued cookie replayed directly is still accepted
// until its own window elapses.
func (c *Codec) Expire(w http.ResponseWriter, name string) {
	issued := c.now().Add(-c.maxAge - time.Second)
	cookie := c.Cookie(name, "", time.Unix(1, 0))
	cookie.Value = c.encodeAt("", issued)
	cookie.MaxAge = -1
	http.SetCookie(w, cookie)
}

// Read decodes the named request cookie. Missing and invalid cookies are
// both reported as absent.
func (c *Codec) Read(r *http.Request, name string) (string, bool) {
	raw, err := r.Cookie(name)
	if err != nil || raw.Value == "" {
		return "", false
	}
	value, err := c.Decode(raw.Value)
	if err != nil {
		logger.FromContext(r.Context()).Warn("Rejected cookie",
			zap.String("cookie", name),
			zap.Error(err),
		)
		return "", false
	}
	return value, true
}
