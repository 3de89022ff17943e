package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"Pumpsizer/internal/logging"
	"Pumpsizer/internal/repo"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memoryRepo struct {
	mu    sync.Mutex
	users map[string]repo.User
}

func (m *memoryRepo) CreateUser(_ context.Context, login, email, hash string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.users == nil {
		m.users = map[string]repo.User{}
	}
	if _, ok := m.users[login]; ok {
		return 0, errors.New("duplicate login")
	}
	u := repo.User{ID: len(m.users) + 1, Login: login, Email: email, PasswordHash: hash}
	m.users[login] = u
	return u.ID, nil
}

func (m *memoryRepo) UserByLogin(_ context.Context, login string) (repo.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[login]
	if !ok {
		return repo.User{}, repo.ErrUserNotFound
	}
	return u, nil
}

func newEnv() *Authenv {
	return &Authenv{JWTkey: []byte("test-key"), Repo: &memoryRepo{}, Cost: bcrypt.MinCost}
}

func post(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	return rec
}

func TestRegisterLoginAndAccess(t *testing.T) {
	env := newEnv()

	rec := post(env.RegisterHandler, `{"login":"hydro","email":"h@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = post(env.RegisterHandler, `{"login":"hydro","email":"h@example.com","password":"secret1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = post(env.AuthHandler, `{"login":"hydro","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var tok tokenResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&tok))
	require.NotEmpty(t, tok.Token)
	require.Len(t, rec.Result().Cookies(), 1)
	assert.Equal(t, cookieName, rec.Result().Cookies()[0].Name)

	var logs bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&logs, nil))
	protected := logging.RequestLogger(base)(env.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logging.FromContext(r.Context()).Info("sized")
		w.WriteHeader(http.StatusNoContent)
	})))

	req := httptest.NewRequest(http.MethodPost, "/api/user/tools/pump/calc", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	line, _, _ := strings.Cut(logs.String(), "\n")
	assert.Contains(t, line, `"msg":"sized"`)
	assert.Contains(t, line, `"login":"hydro"`)
	assert.Contains(t, line, `"user_id":1`)

	req = httptest.NewRequest(http.MethodPost, "/api/user/tools/pump/calc", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: tok.Token})
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/user/tools/pump/calc", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginFailures(t *testing.T) {
	env := newEnv()
	require.Equal(t, http.StatusCreated, post(env.RegisterHandler, `{"login":"a","email":"a@b","password":"secret1"}`).Code)

	assert.Equal(t, http.StatusUnauthorized, post(env.AuthHandler, `{"login":"a","password":"wrong!!"}`).Code)
	assert.Equal(t, http.StatusUnauthorized, post(env.AuthHandler, `{"login":"nobody","password":"secret1"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(env.AuthHandler, `{"login":" "}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(env.AuthHandler, `nope`).Code)
	assert.Equal(t, http.StatusBadRequest, post(env.RegisterHandler, `{"login":"b","email":"b@c","password":"123"}`).Code)
}

func TestParseToken(t *testing.T) {
	env := newEnv()
	s, exp, err := env.IssueToken(Identity{UserID: 7, Login: "eng"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), exp, time.Minute)

	id, err := env.ParseToken(s)
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: 7, Login: "eng"}, id)

	other := &Authenv{JWTkey: []byte("other-key")}
	_, err = other.ParseToken(s)
	assert.Error(t, err)

	past := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID:           7,
		Login:            "eng",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))},
	})
	s, err = past.SignedString(env.JWTkey)
	require.NoError(t, err)
	_, err = env.ParseToken(s)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": 7, "login": "eng"})
	s, err = none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = env.ParseToken(s)
	assert.Error(t, err)
}

func TestLimitMiddleware(t *testing.T) {
	limiter := NewIPRateLimiter(0.001, 2)
	h := limiter.LimitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	req.RemoteAddr = "10.0.0.2:4000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, "limits are per IP")
}

func TestIPRateLimiterEvictsIdleClients(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewIPRateLimiter(1, 1)
	limiter.now = func() time.Time { return now }

	limiter.getLimiter("10.0.0.1")
	limiter.getLimiter("10.0.0.2")
	require.Equal(t, 2, limiter.size())

	now = now.Add(idleTTL / 2)
	limiter.getLimiter("10.0.0.2")
	require.Equal(t, 2, limiter.size(), "no sweep before idleTTL has passed")

	now = now.Add(idleTTL/2 + time.Second)
	limiter.getLimiter("10.0.0.3")
	assert.Equal(t, 2, limiter.size(), "10.0.0.1 idle past idleTTL is dropped")
	_, kept := limiter.ips["10.0.0.2"]
	assert.True(t, kept)
	_, dropped := limiter.ips["10.0.0.1"]
	assert.False(t, dropped)
}
