package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l2h-tech/blog-backend/internal/models"
	"github.com/l2h-tech/blog-backend/internal/storage"
)

func TestDeleteUserWithPostsIsBlocked(t *testing.T) {
	store := storage.NewMemoryStore()
	app := newTestApp(t, store, &fakeBlob{})
	_, adminToken := seedUser(t, store, "admin@example.com", models.RoleAdmin)
	author, _ := seedUser(t, store, "author@example.com", models.RoleAuthor)

	category := &models.BlogCategory{Name: "Tech"}
	require.NoError(t, store.CreateCategory(category))
	require.NoError(t, store.CreateBlog(&models.Blog{
		Title: "Keeps the author around", Description: "<p>x</p>",
		CategoryID: category.ID, AuthorID: author.ID, Status: models.BlogPublished,
	}))

	resp, err := app.Test(jsonRequest(t, http.MethodDelete, "/api/admin/users/"+itoa(author.ID), nil, adminToken))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "Cannot delete user with 1 existing posts", body["error"])

	// The author must still exist
	_, err = store.GetUserByID(author.ID)
	assert.NoError(t, err)
}

func TestDeleteUserWithoutPosts(t *testing.T) {
	store := storage.NewMemoryStore()
	app := newTestApp(t, store, &fakeBlob{})
	_, adminToken := seedUser(t, store, "admin@example.com", models.RoleAdmin)
	idle, _ := seedUser(t, store, "idle@example.com", models.RoleAuthor)

	resp, err := app.Test(jsonRequest(t, http.MethodDelete, "/api/admin/users/"+itoa(idle.ID), nil, adminToken))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, err = store.GetUserByID(idle.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteOwnAccountIsBlocked(t *testing.T) {
	store := storage.NewMemoryStore()
	app := newTestApp(t, store, &fakeBlob{})
	admin, adminToken := seedUser(t, store, "admin@example.com", models.RoleAdmin)

	resp, err := app.Test(jsonRequest(t, http.MethodDelete, "/api/admin/users/"+itoa(admin.ID), nil, adminToken))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUserManagementRequiresAdmin(t *testing.T) {
	store := storage.NewMemoryStore()
	app := newTestApp(t, store, &fakeBlob{})
	_, authorToken := seedUser(t, store, "author@example.com", models.RoleAuthor)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/admin/users/", nil, authorToken))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestUserStats(t *testing.T) {
	store := storage.NewMemoryStore()
	app := newTestApp(t, store, &fakeBlob{})
	_, adminToken := seedUser(t, store, "admin@example.com", models.RoleAdmin)
	seedUser(t, store, "author@example.com", models.RoleAuthor)

	inactive := &models.User{Email: "gone@example.com", Name: "Gone", Role: models.RoleUser}
	require.NoError(t, inactive.SetPassword("password123"))
	require.NoError(t, store.CreateUser(inactive))

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/admin/users/stats", nil, adminToken))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(3), data["total"])
	assert.Equal(t, float64(1), data["inactive"])
}
