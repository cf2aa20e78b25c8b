package user

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/troop127/portal/internal/handler"
	"github.com/troop127/portal/pkg/config"
	"github.com/troop127/portal/pkg/model"
)

func TestHandler_SignIn_Cookie(t *testing.T) {
	userService := &mockUserService{}
	user := &model.User{ID: 123, Email: "someone@troop127.org"}
	sessionService := &mockSessionService{}
	session := &model.Session{Token: "some-token", UserID: 123}
	sessionService.
		On("Create", mock.Anything, user).
		Return(session, nil)
	cfg := config.Config{Hostname: "hostname", SecureCookies: true, SessionExpirationSeconds: 604800}
	h := NewHandler(cfg, userService, sessionService)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Set("user", user)
	c.Request = newPost(t, "/portal/sign-in", nil)

	h.SignIn(c)

	require.Len(t, c.Errors.Errors(), 0)
	assert.Equal(t, http.StatusCreated, recorder.Code)
	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	expectedCookie := "session_token=some-token; Path=/; Domain=hostname; Max-Age=604800; HttpOnly; Secure; SameSite=Lax"
	assert.Equal(t, expectedCookie, cookies[0].Raw)
	sessionService.AssertExpectations(t)
}

func TestHandler_Me(t *testing.T) {
	userService := &mockUserService{}
	user := &model.User{ID: 123, Email: "someone@troop127.org", Role: model.RoleScout}
	userService.
		On("FindById", mock.Anything, uint(123)).
		Return(user, nil)
	h := NewHandler(config.Config{}, userService, &mockSessionService{})

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Set("user", &model.User{ID: 123})
	c.Request = httptest.NewRequest(http.MethodGet, "/me", nil)

	h.Me(c)

	require.Len(t, c.Errors.Errors(), 0)
	assert.Equal(t, http.StatusOK, recorder.Code)
	var body model.User
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "someone@troop127.org", body.Email)
	assert.Equal(t, model.RoleScout, body.Role)
	userService.AssertExpectations(t)
}

func TestHandler_FindAll(t *testing.T) {
	userService := &mockUserService{}
	users := []*model.User{{ID: 1, Role: model.RoleAdmin}, {ID: 2, Role: model.RoleScout}}
	userService.
		On("FindAll", mock.Anything).
		Return(users, nil)
	sessionService := &mockSessionService{}
	sessionService.
		On("FindAll", mock.Anything).
		Return([]*model.Session{{UserID: 1}}, nil)
	sessionService.
		On("ListAccounts", mock.Anything).
		Return([]*model.Account{{UserID: 1, Provider: "google"}}, nil)
	h := NewHandler(config.Config{}, userService, sessionService)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/users", nil)

	h.FindAll(c)

	require.Len(t, c.Errors.Errors(), 0)
	assert.Equal(t, http.StatusOK, recorder.Code)
	var body struct {
		Users    []*model.User    `json:"users"`
		Sessions []*model.Session `json:"sessions"`
		Accounts []*model.Account `json:"accounts"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Len(t, body.Users, 2)
	assert.Len(t, body.Sessions, 1)
	assert.Len(t, body.Accounts, 1)
	userService.AssertExpectations(t)
	sessionService.AssertExpectations(t)
}

func TestHandler_UpdateRole(t *testing.T) {
	require.NoError(t, handler.RegisterValidation())

	userService := &mockUserService{}
	user := &model.User{ID: 123, Role: model.RoleAdult}
	userService.
		On("UpdateRole", mock.Anything, uint(123), "ADULT").
		Return(user, nil)
	h := NewHandler(config.Config{}, userService, &mockSessionService{})

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.AddParam("id", "123")
	c.Request = newPost(t, "/users/123/role", &UpdateRoleRequest{Role: "ADULT"})

	h.UpdateRole(c)

	require.Len(t, c.Errors.Errors(), 0)
	assert.Equal(t, http.StatusOK, recorder.Code)
	userService.AssertExpectations(t)
}

func TestHandler_UpdateRole_RejectsUnknownRole(t *testing.T) {
	require.NoError(t, handler.RegisterValidation())

	userService := &mockUserService{}
	h := NewHandler(config.Config{}, userService, &mockSessionService{})

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.AddParam("id", "123")
	c.Request = newPost(t, "/users/123/role", &UpdateRoleRequest{Role: "SUPERUSER"})

	h.UpdateRole(c)

	require.Len(t, c.Errors.Errors(), 1)
	userService.AssertNotCalled(t, "UpdateRole", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_UpdateAnnotation(t *testing.T) {
	userService := &mockUserService{}
	user := &model.User{ID: 123, Annotation: "patrol leader"}
	userService.
		On("UpdateAnnotation", mock.Anything, uint(123), "patrol leader").
		Return(user, nil)
	h := NewHandler(config.Config{}, userService, &mockSessionService{})

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.AddParam("id", "123")
	c.Request = newPost(t, "/users/123/annotation", &UpdateAnnotationRequest{Annotation: "patrol leader"})

	h.UpdateAnnotation(c)

	require.Len(t, c.Errors.Errors(), 0)
	assert.Equal(t, http.StatusOK, recorder.Code)
	userService.AssertExpectations(t)
}

func TestHandler_RevokeSessions(t *testing.T) {
	userService := &mockUserService{}
	userService.
		On("FindById", mock.Anything, uint(123)).
		Return(&model.User{ID: 123}, nil)
	sessionService := &mockSessionService{}
	sessionService.
		On("RevokeAllForUser", mock.Anything, uint(123)).
		Return(int64(3), nil)
	h := NewHandler(config.Config{}, userService, sessionService)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.AddParam("id", "123")
	c.Request = httptest.NewRequest(http.MethodDelete, "/users/123/sessions", nil)

	h.RevokeSessions(c)

	require.Len(t, c.Errors.Errors(), 0)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"success": true, "deletedCount": 3}`, recorder.Body.String())
	userService.AssertExpectations(t)
	sessionService.AssertExpectations(t)
}

func TestHandler_RevokeOwnSessions_ClearsCookie(t *testing.T) {
	sessionService := &mockSessionService{}
	sessionService.
		On("RevokeAllForUser", mock.Anything, uint(123)).
		Return(int64(2), nil)
	cfg := config.Config{Hostname: "hostname", SecureCookies: true}
	h := NewHandler(cfg, &mockUserService{}, sessionService)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Set("user", &model.User{ID: 123})
	c.Request = newPost(t, "/auth/revoke-all-sessions", nil)

	h.RevokeOwnSessions(c)

	require.Len(t, c.Errors.Errors(), 0)
	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	expectedCookie := "session_token=; Path=/; Domain=hostname; Max-Age=0; HttpOnly; Secure; SameSite=Lax"
	assert.Equal(t, expectedCookie, cookies[0].Raw)
	sessionService.AssertExpectations(t)
}

type mockUserService struct{ mock.Mock }

func (m *mockUserService) FindById(ctx context.Context, id uint) (*model.User, error) {
	called := m.Called(ctx, id)
	return called.Get(0).(*model.User), called.Error(1)
}

func (m *mockUserService) FindAll(ctx context.Context) ([]*model.User, error) {
	called := m.Called(ctx)
	return called.Get(0).([]*model.User), called.Error(1)
}

func (m *mockUserService) UpdateRole(ctx context.Context, id uint, role string) (*model.User, error) {
	called := m.Called(ctx, id, role)
	return called.Get(0).(*model.User), called.Error(1)
}

func (m *mockUserService) UpdateAnnotation(ctx context.Context, id uint, annotation string) (*model.User, error) {
	called := m.Called(ctx, id, annotation)
	return called.Get(0).(*model.User), called.Error(1)
}

type mockSessionService struct{ mock.Mock }

func (m *mockSessionService) Create(ctx context.Context, user *model.User) (*model.Session, error) {
	called := m.Called(ctx, user)
	return called.Get(0).(*model.Session), called.Error(1)
}

func (m *mockSessionService) FindAll(ctx context.Context) ([]*model.Session, error) {
	called := m.Called(ctx)
	return called.Get(0).([]*model.Session), called.Error(1)
}

func (m *mockSessionService) RevokeAllForUser(ctx context.Context, userID uint) (int64, error) {
	called := m.Called(ctx, userID)
	return called.Get(0).(int64), called.Error(1)
}

func (m *mockSessionService) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	called := m.Called(ctx)
	return called.Get(0).([]*model.Account), called.Error(1)
}

func newPost(t *testing.T, path string, jsonBody any) *http.Request {
	body, err := json.Marshal(jsonBody)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	require.NoError(t, err)

	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	return req
}
