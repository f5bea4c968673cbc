package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lengsovandara168/Agri-Tech-2/models"
	"github.com/lengsovandara168/Agri-Tech-2/repositories"
	"github.com/lengsovandara168/Agri-Tech-2/services"
	"github.com/lengsovandara168/Agri-Tech-2/utils"
)

type memoryUserStore struct {
	mu    sync.Mutex
	users []*models.User
}

func (m *memoryUserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memoryUserStore) FindByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email || u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memoryUserStore) Create(ctx context.Context, username, email, passwordHash string, isVerified bool) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email || u.Username == username {
			return nil, repositories.ErrDuplicateUser
		}
	}
	user := &models.User{
		ID:         primitive.NewObjectID(),
		Username:   username,
		Email:      email,
		Password:   passwordHash,
		IsVerified: isVerified,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	m.users = append(m.users, user)
	copied := *user
	return &copied, nil
}

type recordingSender struct {
	mu    sync.Mutex
	codes map[string]string
}

func (r *recordingSender) SendOTP(email, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.codes == nil {
		r.codes = map[string]string{}
	}
	r.codes[email] = code
	return nil
}

func (r *recordingSender) codeFor(t *testing.T, email string) string {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	code, ok := r.codes[email]
	require.True(t, ok, "no code sent to %s", email)
	return code
}

type authHarness struct {
	e      *echo.Echo
	ac     *AuthController
	users  *memoryUserStore
	sender *recordingSender
}

func newAuthHarness(t *testing.T) *authHarness {
	t.Helper()
	users := &memoryUserStore{}
	sender := &recordingSender{}
	svc := services.NewAuthService(users, repositories.NewPendingRegistrationStore(), sender)
	return &authHarness{
		e:      echo.New(),
		ac:     NewAuthController(svc),
		users:  users,
		sender: sender,
	}
}

func (h *authHarness) do(t *testing.T, handler echo.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, handler(h.e.NewContext(req, rec)))
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) models.Response {
	t.Helper()
	var resp models.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// signUp walks a user through send-otp and verify-otp.
func (h *authHarness) signUp(t *testing.T, username, email, password string) {
	t.Helper()
	rec := h.do(t, h.ac.SendOTP, fmt.Sprintf(`{"username":%q,"email":%q,"password":%q}`, username, email, password))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(t, h.ac.VerifyOTP, fmt.Sprintf(`{"email":%q,"otp":%q}`, email, h.sender.codeFor(t, email)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestSendOTP_StatusMapping(t *testing.T) {
	t.Parallel()
	h := newAuthHarness(t)

	rec := h.do(t, h.ac.SendOTP, `{"username":"","email":"a@x.com","password":"secret1"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "All fields are required", decodeResponse(t, rec).Error)

	rec = h.do(t, h.ac.SendOTP, `{"username":"alice","email":"bad","password":"secret1"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Invalid email format", decodeResponse(t, rec).Error)

	h.signUp(t, "alice", "a@x.com", "secret1")

	rec = h.do(t, h.ac.SendOTP, `{"username":"bob","email":"a@x.com","password":"secret1"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "Email already registered", decodeResponse(t, rec).Error)

	rec = h.do(t, h.ac.SendOTP, `{"username":"alice","email":"b@x.com","password":"secret1"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "Username already taken", decodeResponse(t, rec).Error)
}

func TestVerifyOTP_StatusMapping(t *testing.T) {
	t.Parallel()
	h := newAuthHarness(t)

	rec := h.do(t, h.ac.VerifyOTP, `{"email":"","otp":"123456"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Missing email or OTP", decodeResponse(t, rec).Error)

	rec = h.do(t, h.ac.VerifyOTP, `{"email":"nobody@x.com","otp":"123456"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, services.ErrOTPNotFound.Error(), decodeResponse(t, rec).Error)

	rec = h.do(t, h.ac.SendOTP, `{"username":"alice","email":"a@x.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, h.ac.VerifyOTP, `{"email":"a@x.com","otp":"000000"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, services.ErrOTPMismatch.Error(), decodeResponse(t, rec).Error)

	rec = h.do(t, h.ac.VerifyOTP, fmt.Sprintf(`{"email":"a@x.com","otp":%q}`, h.sender.codeFor(t, "a@x.com")))
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)
	require.Equal(t, "Account verified and created successfully", resp.Message)
}

func TestLogin_SuccessSetsSessionCookie(t *testing.T) {
	t.Parallel()
	h := newAuthHarness(t)
	h.signUp(t, "alice", "a@x.com", "secret1")

	rec := h.do(t, h.ac.Login, `{"username":"alice","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)
	require.NotNil(t, resp.User)
	require.Equal(t, "alice", resp.User.Username)
	require.Equal(t, "a@x.com", resp.User.Email)

	cookie := sessionCookie(t, rec)
	require.Equal(t, resp.User.UserID, cookie.Value)
	require.True(t, cookie.HttpOnly)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	t.Parallel()
	h := newAuthHarness(t)
	h.signUp(t, "alice", "a@x.com", "secret1")

	unknown := h.do(t, h.ac.Login, `{"username":"nobody","password":"secret1"}`)
	wrongPass := h.do(t, h.ac.Login, `{"username":"alice","password":"wrong"}`)

	require.Equal(t, http.StatusUnauthorized, unknown.Code)
	require.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	require.Equal(t, unknown.Body.String(), wrongPass.Body.String())

	require.Empty(t, unknown.Result().Cookies())
	require.Empty(t, wrongPass.Result().Cookies())
}

func TestLogin_UnverifiedAccountForbidden(t *testing.T) {
	t.Parallel()
	h := newAuthHarness(t)

	hash, err := utils.HashPassword("secret1")
	require.NoError(t, err)
	_, err = h.users.Create(context.Background(), "alice", "a@x.com", hash, false)
	require.NoError(t, err)

	rec := h.do(t, h.ac.Login, `{"username":"alice","password":"secret1"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, services.ErrAccountNotVerified.Error(), decodeResponse(t, rec).Error)
	require.Empty(t, rec.Result().Cookies(), "no session for unverified accounts")
}

func TestLogout_AlwaysClearsCookie(t *testing.T) {
	t.Parallel()
	h := newAuthHarness(t)

	// No prior session; logout still succeeds.
	rec := h.do(t, h.ac.Logout, `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, decodeResponse(t, rec).Success)

	cookie := sessionCookie(t, rec)
	require.Equal(t, "", cookie.Value)
	require.Equal(t, -1, cookie.MaxAge)
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == utils.SessionCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", utils.SessionCookieName)
	return nil
}

// errors.Is/As mapping is exercised above per status; this pins the opaque
// 500 path for errors the controller does not recognize.
func TestErrorResponse_UnknownErrorIsOpaque(t *testing.T) {
	t.Parallel()
	h := newAuthHarness(t)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := h.e.NewContext(req, rec)

	require.NoError(t, h.ac.errorResponse(c, errors.New("mongo: socket closed"), "Login failed"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "Login failed", decodeResponse(t, rec).Error)
	require.NotContains(t, rec.Body.String(), "socket", "internals must not leak")
}
