// Package session encodes a Principal into the vetri_session cookie and back.
//
// The cookie carries an HS256-signed JWT, percent-encoded. Any cookie that
// fails to decode (bad signature, expired, wrong algorithm, unknown role,
// garbage) is treated as no session at all.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vetri-dj/ops-api/internal/core/domain"
)

const (
	CookieName = "vetri_session"
	DefaultTTL = 7 * 24 * time.Hour
	issuer     = "vetri-ops-api"
)

// ErrNoSession is returned by Decode for every kind of unusable cookie.
var ErrNoSession = errors.New("no valid session")

// Options configure the cookie attributes.
type Options struct {
	TTL    time.Duration
	Secure bool
	Domain string
}

// Codec signs and verifies session cookies.
type Codec struct {
	secret []byte
	opts   Options
	now    func() time.Time
}

type claims struct {
	Name       string      `json:"name"`
	Phone      string      `json:"phone"`
	Role       domain.Role `json:"role"`
	MustRotate bool        `json:"rot,omitempty"`
	jwt.RegisteredClaims
}

func NewCodec(secret []byte, opts Options) *Codec {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	return &Codec{secret: secret, opts: opts, now: time.Now}
}

// Encode returns the cookie value for p.
func (c *Codec) Encode(p domain.Principal) (string, error) {
	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Name:       p.Name,
		Phone:      p.Phone,
		Role:       p.Role,
		MustRotate: p.MustRotatePassword,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.opts.TTL)),
		},
	})
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return url.QueryEscape(signed), nil
}

// Decode verifies a cookie value and returns its Principal.
func (c *Codec) Decode(value string) (*domain.Principal, error) {
	if value == "" {
		return nil, ErrNoSession
	}
	raw, err := url.QueryUnescape(value)
	if err != nil {
		return nil, ErrNoSession
	}

	var cl claims
	tkn, err := jwt.ParseWithClaims(raw, &cl, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !tkn.Valid {
		return nil, ErrNoSession
	}
	if cl.Subject == "" || !cl.Role.Valid() {
		return nil, ErrNoSession
	}

	return &domain.Principal{
		ID:                 cl.Subject,
		Name:               cl.Name,
		Phone:              cl.Phone,
		Role:               cl.Role,
		MustRotatePassword: cl.MustRotate,
	}, nil
}

// FromRequest decodes the session cookie of r, if any.
func (c *Codec) FromRequest(r *http.Request) (*domain.Principal, error) {
	ck, err := r.Cookie(CookieName)
	if err != nil {
		return nil, ErrNoSession
	}
	return c.Decode(ck.Value)
}

// Cookie builds the Set-Cookie for a freshly encoded value.
func (c *Codec) Cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Domain:   c.opts.Domain,
		MaxAge:   int(c.opts.TTL / time.Second),
		Expires:  c.now().Add(c.opts.TTL),
		HttpOnly: true,
		Secure:   c.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Clear builds a Set-Cookie that deletes the session.
func (c *Codec) Clear() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Domain:   c.opts.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   c.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Issue encodes p and returns the cookie carrying it.
func (c *Codec) Issue(p domain.Principal) (*http.Cookie, error) {
	value, err := c.Encode(p)
	if err != nil {
		return nil, err
	}
	return c.Cookie(value), nil
}
