package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l2h-tech/blog-backend/internal/models"
	"github.com/l2h-tech/blog-backend/internal/storage"
)

func TestRegisterAndLogin(t *testing.T) {
	store := storage.NewMemoryStore()
	app := newTestApp(t, store, &fakeBlob{})

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/register", map[string]any{
		"name":     "New User",
		"email":    "New.User@Example.com",
		"password": "password123",
		"role":     "admin", // must be ignored for self-registration
	}, ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	assert.NotEmpty(t, data["accessToken"])
	assert.NotEmpty(t, data["refreshToken"])

	user, err := store.GetUserByEmail("new.user@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role, "self-registration cannot grant admin")
	assert.NotEqual(t, "password123", user.Password, "password must be hashed")

	// Login with the normalized email
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]any{
		"email": "new.user@example.com", "password": "password123",
	}, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Wrong password
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]any{
		"email": "new.user@example.com", "password": "wrong-password",
	}, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := storage.NewMemoryStore()
	app := newTestApp(t, store, &fakeBlob{})
	seedUser(t, store, "taken@example.com", models.RoleUser)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/register", map[string]any{
		"name": "Copy", "email": "taken@example.com", "password": "password123",
	}, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLoginDeactivatedAccount(t *testing.T) {
	store := storage.NewMemoryStore()
	app := newTestApp(t, store, &fakeBlob{})

	user, _ := seedUser(t, store, "locked@example.com", models.RoleUser)
	user.IsActive = false
	require.NoError(t, store.UpdateUser(user))

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]any{
		"email": "locked@example.com", "password": "password123",
	}, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRefreshToken(t *testing.T) {
	store := storage.NewMemoryStore()
	app := newTestApp(t, store, &fakeBlob{})

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/register", map[string]any{
		"name": "User", "email": "user@example.com", "password": "password123",
	}, ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	data := decodeBody(t, resp)["data"].(map[string]any)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/auth/refresh-token", map[string]any{
		"refreshToken": data["refreshToken"],
	}, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Malformed tokens are rejected
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/auth/refresh-token", map[string]any{
		"refreshToken": "garbage.token.value",
	}, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProfileRoundTrip(t *testing.T) {
	store := storage.NewMemoryStore()
	app := newTestApp(t, store, &fakeBlob{})
	_, token := seedUser(t, store, "me@example.com", models.RoleAuthor)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/auth/profile", nil, token))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodPut, "/api/auth/profile", map[string]any{
		"bio": "Writes about Go.", "twitter": "https://twitter.com/example",
	}, token))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	user, err := store.GetUserByEmail("me@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Writes about Go.", user.Bio)
	assert.Equal(t, "https://twitter.com/example", user.Twitter)

	// No token
	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/auth/profile", nil, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
