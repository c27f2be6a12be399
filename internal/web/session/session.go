package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
)

const (
	defaultCookieName = "fashionshop_session"
	defaultCookiePath = "/"
	defaultLifetime   = 365 * 24 * time.Hour
)

// ErrInvalidConfig indicates the manager was initialised with missing or invalid options.
var ErrInvalidConfig = errors.New("session: invalid config")

// Data is the payload persisted in the session cookie. ProfileID identifies the
// browser profile whose storage slots the cart lives in.
type Data struct {
	ProfileID string    `json:"pid"`
	CSRFToken string    `json:"csrf"`
	Notice    string    `json:"notice,omitempty"`
	Tone      string    `json:"tone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session is the mutable per-request view of Data.
type Session struct {
	data  Data
	dirty bool
}

// Config controls cookie encoding.
type Config struct {
	CookieName string
	HashKey    []byte
	BlockKey   []byte
	Secure     bool
	Lifetime   time.Duration
	Now        func() time.Time
}

// Manager encodes sessions into signed, optionally encrypted, cookies.
type Manager struct {
	cfg   Config
	codec *securecookie.SecureCookie
	now   func() time.Time
}

// NewManager constructs a Manager. An empty hash key generates an ephemeral one,
// which invalidates sessions on restart; production configs must set it.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.HashKey) == 0 {
		cfg.HashKey = securecookie.GenerateRandomKey(32)
		if cfg.HashKey == nil {
			return nil, fmt.Errorf("%w: unable to generate hash key", ErrInvalidConfig)
		}
	}
	switch len(cfg.BlockKey) {
	case 0, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: block key must be 16, 24 or 32 bytes", ErrInvalidConfig)
	}
	if cfg.CookieName == "" {
		cfg.CookieName = defaultCookieName
	}
	if cfg.Lifetime <= 0 {
		cfg.Lifetime = defaultLifetime
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	var block []byte
	if len(cfg.BlockKey) > 0 {
		block = cfg.BlockKey
	}
	codec := securecookie.New(cfg.HashKey, block)
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(int(cfg.Lifetime.Seconds()))
	return &Manager{cfg: cfg, codec: codec, now: now}, nil
}

// CookieName returns the session cookie name.
func (m *Manager) CookieName() string { return m.cfg.CookieName }

// Load decodes the session from r. Missing or tampered cookies yield a fresh session.
func (m *Manager) Load(r *http.Request) *Session {
	cookie, err := r.Cookie(m.cfg.CookieName)
	if err != nil || cookie.Value == "" {
		return m.New()
	}
	var data Data
	if err := m.codec.Decode(m.cfg.CookieName, cookie.Value, &data); err != nil {
		return m.New()
	}
	sess := &Session{data: data}
	if _, err := uuid.Parse(data.ProfileID); err != nil {
		sess.data.ProfileID = uuid.NewString()
		sess.dirty = true
	}
	if sess.data.CSRFToken == "" {
		sess.data.CSRFToken = newToken()
		sess.dirty = true
	}
	return sess
}

// New returns a fresh session with a new profile id and CSRF token.
func (m *Manager) New() *Session {
	return &Session{
		data: Data{
			ProfileID: uuid.NewString(),
			CSRFToken: newToken(),
			CreatedAt: m.now().UTC(),
		},
		dirty: true,
	}
}

// Save writes the session cookie when it changed.
func (m *Manager) Save(w http.ResponseWriter, sess *Session) error {
	if sess == nil || !sess.dirty {
		return nil
	}
	encoded, err := m.codec.Encode(m.cfg.CookieName, sess.data)
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    encoded,
		Path:     defaultCookiePath,
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  m.now().Add(m.cfg.Lifetime).UTC(),
		MaxAge:   int(m.cfg.Lifetime.Seconds()),
	})
	sess.dirty = false
	return nil
}

// ProfileID returns the browser profile identifier.
func (s *Session) ProfileID() string { return s.data.ProfileID }

// CSRFToken returns the per-session CSRF token.
func (s *Session) CSRFToken() string { return s.data.CSRFToken }

// Dirty reports whether the session needs to be written.
func (s *Session) Dirty() bool { return s.dirty }

// Flash stores a one-shot notice shown on the next full page render.
func (s *Session) Flash(message, tone string) {
	s.data.Notice = strings.TrimSpace(message)
	s.data.Tone = tone
	s.dirty = true
}

// TakeFlash returns and clears the pending notice.
func (s *Session) TakeFlash() (message, tone string) {
	if s.data.Notice == "" {
		return "", ""
	}
	message, tone = s.data.Notice, s.data.Tone
	s.data.Notice, s.data.Tone = "", ""
	s.dirty = true
	return message, tone
}

func newToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
