package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lengsovandara168/Agri-Tech-2/models"
	"github.com/lengsovandara168/Agri-Tech-2/utils"
)

type fakeUserFinder struct {
	users map[string]*models.User
	err   error
}

func (f *fakeUserFinder) FindByID(ctx context.Context, id string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[id], nil
}

func runGuarded(t *testing.T, finder *fakeUserFinder, cookie *http.Cookie) (*httptest.ResponseRecorder, *models.User) {
	t.Helper()

	var seen *models.User
	handler := RequireSession(finder)(func(c echo.Context) error {
		seen = SessionUser(c)
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	require.NoError(t, handler(echo.New().NewContext(req, rec)))
	return rec, seen
}

func TestRequireSession_MissingCookie(t *testing.T) {
	t.Parallel()
	rec, seen := runGuarded(t, &fakeUserFinder{}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Nil(t, seen)
}

func TestRequireSession_UnknownUser(t *testing.T) {
	t.Parallel()
	cookie := utils.NewSessionCookie(primitive.NewObjectID().Hex())
	rec, seen := runGuarded(t, &fakeUserFinder{}, cookie)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Nil(t, seen)
}

func TestRequireSession_StoreError(t *testing.T) {
	t.Parallel()
	cookie := utils.NewSessionCookie(primitive.NewObjectID().Hex())
	rec, seen := runGuarded(t, &fakeUserFinder{err: errors.New("db down")}, cookie)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Nil(t, seen)
	require.NotContains(t, rec.Body.String(), "db down")
}

func TestRequireSession_ValidSessionStashesUser(t *testing.T) {
	t.Parallel()
	user := &models.User{
		ID:         primitive.NewObjectID(),
		Username:   "alice",
		Email:      "a@x.com",
		IsVerified: true,
	}
	finder := &fakeUserFinder{users: map[string]*models.User{user.ID.Hex(): user}}

	rec, seen := runGuarded(t, finder, utils.NewSessionCookie(user.ID.Hex()))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, user, seen)
}
