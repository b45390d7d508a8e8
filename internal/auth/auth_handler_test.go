package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"leavehub/internal/auth"
	autherrors "leavehub/internal/auth/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubAuthService struct {
	tokens auth.TokenResponse
	me     auth.MeResponse
	err    error

	signupReq *auth.SignupRequest
	loginReq  *auth.LoginRequest
	refreshed string
	meUserID  string
}

func (s *stubAuthService) Signup(ctx context.Context, req auth.SignupRequest) (auth.TokenResponse, error) {
	s.signupReq = &req
	return s.tokens, s.err
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	s.loginReq = &req
	return s.tokens, s.err
}

func (s *stubAuthService) Refresh(ctx context.Context, refreshToken string) (auth.TokenResponse, error) {
	s.refreshed = refreshToken
	return s.tokens, s.err
}

func (s *stubAuthService) Me(ctx context.Context, userID string) (auth.MeResponse, error) {
	s.meUserID = userID
	return s.me, s.err
}

type handlerEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func runAuthHandler(t *testing.T, handler gin.HandlerFunc, body string, ctxKeys map[string]string) (*httptest.ResponseRecorder, handlerEnvelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	for k, v := range ctxKeys {
		c.Set(k, v)
	}

	handler(c)

	var env handlerEnvelope
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestAuthHandler_Signup(t *testing.T) {
	t.Run("created with token pair", func(t *testing.T) {
		svc := &stubAuthService{tokens: auth.TokenResponse{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer", ExpiresIn: 900}}
		h := auth.NewHandler(svc)

		w, env := runAuthHandler(t, h.Signup,
			`{"email":"ana@example.com","password":"correct horse","full_name":"Ana Lima","department":"engineering"}`, nil)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, env.Ok)
		assert.Equal(t, "ana@example.com", svc.signupReq.Email)

		var data auth.TokenResponse
		assert.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, "Bearer", data.TokenType)
	})

	t.Run("invalid email rejected by binding", func(t *testing.T) {
		svc := &stubAuthService{}
		h := auth.NewHandler(svc)

		w, env := runAuthHandler(t, h.Signup,
			`{"email":"not-an-email","password":"correct horse","full_name":"Ana","department":"engineering"}`, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, env.Ok)
		assert.Nil(t, svc.signupReq, "service must not be reached on invalid input")
	})

	t.Run("short password rejected by binding", func(t *testing.T) {
		svc := &stubAuthService{}
		h := auth.NewHandler(svc)

		w, _ := runAuthHandler(t, h.Signup,
			`{"email":"ana@example.com","password":"short","full_name":"Ana","department":"engineering"}`, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Nil(t, svc.signupReq)
	})

	t.Run("duplicate email maps to conflict", func(t *testing.T) {
		svc := &stubAuthService{err: autherrors.ErrEmailTaken}
		h := auth.NewHandler(svc)

		w, env := runAuthHandler(t, h.Signup,
			`{"email":"ana@example.com","password":"correct horse","full_name":"Ana","department":"engineering"}`, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "CONFLICT", env.Error.Code)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		svc := &stubAuthService{tokens: auth.TokenResponse{AccessToken: "a", TokenType: "Bearer"}}
		h := auth.NewHandler(svc)

		w, env := runAuthHandler(t, h.Login, `{"email":"ana@example.com","password":"correct horse"}`, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, env.Ok)
		assert.Equal(t, "ana@example.com", svc.loginReq.Email)
	})

	t.Run("bad credentials map to unauthorized", func(t *testing.T) {
		svc := &stubAuthService{err: autherrors.ErrInvalidCredentials}
		h := auth.NewHandler(svc)

		w, env := runAuthHandler(t, h.Login, `{"email":"ana@example.com","password":"wrong"}`, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
	})
}

func TestAuthHandler_Refresh(t *testing.T) {
	t.Run("token forwarded", func(t *testing.T) {
		svc := &stubAuthService{tokens: auth.TokenResponse{AccessToken: "new"}}
		h := auth.NewHandler(svc)

		w, _ := runAuthHandler(t, h.Refresh, `{"refresh_token":"old-token"}`, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "old-token", svc.refreshed)
	})

	t.Run("missing token rejected by binding", func(t *testing.T) {
		svc := &stubAuthService{}
		h := auth.NewHandler(svc)

		w, _ := runAuthHandler(t, h.Refresh, `{}`, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, svc.refreshed)
	})
}

func TestAuthHandler_Me(t *testing.T) {
	svc := &stubAuthService{me: auth.MeResponse{UserID: "user-1", Department: "engineering"}}
	h := auth.NewHandler(svc)

	w, env := runAuthHandler(t, h.Me, "", map[string]string{"user_id": "user-1"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Ok)
	assert.Equal(t, "user-1", svc.meUserID)
}
