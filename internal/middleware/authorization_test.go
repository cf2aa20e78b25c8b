package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/troop127/portal/internal/errdef"
	"github.com/troop127/portal/pkg/model"
)

func TestAuthorizationMiddleware_RequireAdministrator(t *testing.T) {
	newContext := func(user *model.User) (*gin.Context, *httptest.ResponseRecorder) {
		recorder := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(recorder)
		c.Request = httptest.NewRequest(http.MethodGet, "/portal/trips-events", nil)
		if user != nil {
			c.Set("user", user)
		}
		return c, recorder
	}

	t.Run("administrator passes", func(t *testing.T) {
		userService := &mockUserService{}
		userService.
			On("FindById", mock.Anything, uint(1)).
			Return(&model.User{ID: 1, Role: model.RoleAdmin}, nil)
		m := NewAuthorization(newTestLogger(), userService)

		c, _ := newContext(&model.User{ID: 1, Role: model.RoleAdmin})

		m.RequireAdministrator(c)

		require.False(t, c.IsAborted())
		userService.AssertExpectations(t)
	})

	t.Run("no user on context aborts with 401", func(t *testing.T) {
		m := NewAuthorization(newTestLogger(), &mockUserService{})

		c, recorder := newContext(nil)

		m.RequireAdministrator(c)

		assert.True(t, c.IsAborted())
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("deleted user aborts with 401", func(t *testing.T) {
		userService := &mockUserService{}
		userService.
			On("FindById", mock.Anything, uint(1)).
			Return((*model.User)(nil), errdef.NewNotFound("failed to find user with id %d", 1))
		m := NewAuthorization(newTestLogger(), userService)

		c, recorder := newContext(&model.User{ID: 1, Role: model.RoleAdmin})

		m.RequireAdministrator(c)

		assert.True(t, c.IsAborted())
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("non-administrator aborts with 403", func(t *testing.T) {
		userService := &mockUserService{}
		userService.
			On("FindById", mock.Anything, uint(2)).
			Return(&model.User{ID: 2, Role: model.RoleScout}, nil)
		m := NewAuthorization(newTestLogger(), userService)

		c, recorder := newContext(&model.User{ID: 2, Role: model.RoleScout})

		m.RequireAdministrator(c)

		assert.True(t, c.IsAborted())
		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})

	t.Run("role lookup failure aborts the chain", func(t *testing.T) {
		userService := &mockUserService{}
		userService.
			On("FindById", mock.Anything, uint(1)).
			Return((*model.User)(nil), errors.New("connection refused"))
		m := NewAuthorization(newTestLogger(), userService)

		c, _ := newContext(&model.User{ID: 1, Role: model.RoleAdmin})

		m.RequireAdministrator(c)

		assert.True(t, c.IsAborted())
		require.Len(t, c.Errors, 1)
	})

	t.Run("role lookup failure keeps the handler from running", func(t *testing.T) {
		userService := &mockUserService{}
		userService.
			On("FindById", mock.Anything, uint(1)).
			Return((*model.User)(nil), errors.New("connection refused"))
		m := NewAuthorization(newTestLogger(), userService)

		handlerRan := false
		recorder := httptest.NewRecorder()
		_, engine := gin.CreateTestContext(recorder)
		engine.GET("/portal/trips-events",
			func(c *gin.Context) { c.Set("user", &model.User{ID: 1, Role: model.RoleAdmin}) },
			m.RequireAdministrator,
			func(c *gin.Context) {
				handlerRan = true
				c.Status(http.StatusOK)
			})

		engine.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/portal/trips-events", nil))

		assert.False(t, handlerRan)
	})
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockUserService struct{ mock.Mock }

func (m *mockUserService) FindById(ctx context.Context, id uint) (*model.User, error) {
	called := m.Called(ctx, id)
	return called.Get(0).(*model.User), called.Error(1)
}
