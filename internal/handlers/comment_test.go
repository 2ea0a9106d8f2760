package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l2h-tech/blog-backend/internal/models"
	"github.com/l2h-tech/blog-backend/internal/storage"
)

func seedPublishedBlog(t *testing.T, store storage.Store) *models.Blog {
	t.Helper()
	author, _ := seedUser(t, store, "author@example.com", models.RoleAuthor)
	category := &models.BlogCategory{Name: "Tech"}
	require.NoError(t, store.CreateCategory(category))

	blog := &models.Blog{
		Title: "Commented Post", Description: "<p>Body.</p>",
		CategoryID: category.ID, AuthorID: author.ID, Status: models.BlogPublished,
	}
	require.NoError(t, store.CreateBlog(blog))
	return blog
}

func TestCommentSubmitVerifyFlow(t *testing.T) {
	store := storage.NewMemoryStore()
	app := newTestApp(t, store, &fakeBlob{})
	blog := seedPublishedBlog(t, store)

	payload := map[string]any{
		"name":    "Reader",
		"email":   "reader@example.com",
		"comment": "This helped me a lot, thank you!",
		"blogId":  blog.ID,
	}

	// Step 1: submit issues a code, no comment yet
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/comments/submit", payload, ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	comments, err := store.ListCommentsByBlog(blog.ID, "all")
	require.NoError(t, err)
	assert.Empty(t, comments)

	otp, err := store.GetLatestPendingOTP("reader@example.com", models.PurposeComment)
	require.NoError(t, err)

	// Step 2: verify creates the comment in pending state
	payload["otp"] = otp.Code
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/comments/verify", payload, ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	comments, err = store.ListCommentsByBlog(blog.ID, "all")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, models.CommentPending, comments[0].Status)

	// Pending comments are invisible to the public listing
	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/comments/blog/"+itoa(blog.ID), nil, ""))
	require.NoError(t, err)
	body := decodeBody(t, resp)
	assert.Empty(t, body["data"])
}

func TestCommentVerifyRejectsReplay(t *testing.T) {
	store := storage.NewMemoryStore()
	app := newTestApp(t, store, &fakeBlob{})
	blog := seedPublishedBlog(t, store)

	payload := map[string]any{
		"name":    "Reader",
		"email":   "reader@example.com",
		"comment": "First comment, long enough to pass.",
		"blogId":  blog.ID,
	}
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/comments/submit", payload, ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	otp, err := store.GetLatestPendingOTP("reader@example.com", models.PurposeComment)
	require.NoError(t, err)
	payload["otp"] = otp.Code

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/comments/verify", payload, ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Replaying the consumed code must not create a second comment
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/comments/verify", payload, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	comments, err := store.ListCommentsByBlog(blog.ID, "all")
	require.NoError(t, err)
	assert.Len(t, comments, 1)
}

func TestCommentValidation(t *testing.T) {
	store := storage.NewMemoryStore()
	app := newTestApp(t, store, &fakeBlob{})
	blog := seedPublishedBlog(t, store)

	// Too short
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/comments/submit", map[string]any{
		"name": "Reader", "email": "reader@example.com", "comment": "short", "blogId": blog.ID,
	}, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Unknown blog
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/comments/submit", map[string]any{
		"name": "Reader", "email": "reader@example.com",
		"comment": "Long enough comment body here.", "blogId": 9999,
	}, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// No code issued for either bad request
	_, err = store.GetLatestPendingOTP("reader@example.com", models.PurposeComment)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCommentModeration(t *testing.T) {
	store := storage.NewMemoryStore()
	app := newTestApp(t, store, &fakeBlob{})
	blog := seedPublishedBlog(t, store)
	_, adminToken := seedUser(t, store, "admin@example.com", models.RoleAdmin)

	comment := &models.BlogComment{
		Name: "Reader", Email: "reader@example.com",
		Comment: "Waiting for moderation here.", BlogID: blog.ID,
	}
	require.NoError(t, store.CreateComment(comment))

	resp, err := app.Test(jsonRequest(t, http.MethodPut, "/api/comments/"+itoa(comment.ID)+"/moderate",
		map[string]any{"status": models.CommentApproved}, adminToken))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	approved, err := store.ListCommentsByBlog(blog.ID, models.CommentApproved)
	require.NoError(t, err)
	assert.Len(t, approved, 1)

	// Garbage status is rejected
	resp, err = app.Test(jsonRequest(t, http.MethodPut, "/api/comments/"+itoa(comment.ID)+"/moderate",
		map[string]any{"status": "maybe"}, adminToken))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
