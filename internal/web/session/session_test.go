package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(Config{HashKey: []byte(strings.Repeat("k", 32)), BlockKey: []byte(strings.Repeat("b", 16))})
	require.NoError(t, err)
	return m
}

func TestSessionRoundTrip(t *testing.T) {
	t.Parallel()

	m := newManager(t)
	sess := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(sess.ProfileID())
	require.NoError(t, err)
	require.NotEmpty(t, sess.CSRFToken())
	sess.Flash("Đặt hàng thành công!", "success")

	rec := httptest.NewRecorder()
	require.NoError(t, m.Save(rec, sess))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	again := m.Load(req)
	require.Equal(t, sess.ProfileID(), again.ProfileID())
	require.Equal(t, sess.CSRFToken(), again.CSRFToken())
	require.False(t, again.Dirty())

	msg, tone := again.TakeFlash()
	require.Equal(t, "Đặt hàng thành công!", msg)
	require.Equal(t, "success", tone)
	require.True(t, again.Dirty())
	msg, _ = again.TakeFlash()
	require.Empty(t, msg)
}

func TestTamperedCookieStartsFresh(t *testing.T) {
	t.Parallel()

	m := newManager(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: m.CookieName(), Value: "garbage"})
	sess := m.Load(req)
	require.True(t, sess.Dirty())
	require.NotEmpty(t, sess.ProfileID())

	rec := httptest.NewRecorder()
	require.NoError(t, m.Save(rec, sess))
	require.NoError(t, m.Save(rec, sess))
	require.Len(t, rec.Result().Cookies(), 1, "clean sessions are not rewritten")
}

func TestNewManagerRejectsBadBlockKey(t *testing.T) {
	t.Parallel()

	_, err := NewManager(Config{BlockKey: []byte("short")})
	require.ErrorIs(t, err, ErrInvalidConfig)

	m, err := NewManager(Config{})
	require.NoError(t, err)
	require.Equal(t, "fashionshop_session", m.CookieName())
}
