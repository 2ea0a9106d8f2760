package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l2h-tech/blog-backend/internal/models"
	"github.com/l2h-tech/blog-backend/internal/storage"
)

func postCount(t *testing.T, store storage.Store, id uint) int {
	t.Helper()
	category, err := store.GetCategoryByID(id)
	require.NoError(t, err)
	return category.PostCount
}

func TestBlogPostCountBookkeeping(t *testing.T) {
	store := storage.NewMemoryStore()
	app := newTestApp(t, store, &fakeBlob{})
	_, token := seedUser(t, store, "author@example.com", models.RoleAuthor)

	tech := &models.BlogCategory{Name: "Tech"}
	require.NoError(t, store.CreateCategory(tech))
	life := &models.BlogCategory{Name: "Lifestyle"}
	require.NoError(t, store.CreateCategory(life))

	// Creating a published blog bumps its category
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/blogs/", map[string]any{
		"title":       "Go Generics in Practice",
		"description": "<p>A long enough body about generics.</p>",
		"categoryId":  tech.ID,
		"status":      models.BlogPublished,
	}, token))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 1, postCount(t, store, tech.ID))

	// A draft does not count
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/blogs/", map[string]any{
		"title":       "Unfinished Thoughts",
		"description": "<p>Still writing this one.</p>",
		"categoryId":  tech.ID,
	}, token))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 1, postCount(t, store, tech.ID))

	draft, err := store.GetBlogBySlug("unfinished-thoughts")
	require.NoError(t, err)

	// Publishing the draft bumps the counter
	resp, err = app.Test(jsonRequest(t, http.MethodPut, "/api/blogs/"+itoa(draft.ID),
		map[string]any{"status": models.BlogPublished}, token))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, postCount(t, store, tech.ID))

	// Moving a published blog between categories transfers the count
	resp, err = app.Test(jsonRequest(t, http.MethodPut, "/api/blogs/"+itoa(draft.ID),
		map[string]any{"categoryId": life.ID}, token))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, postCount(t, store, tech.ID))
	assert.Equal(t, 1, postCount(t, store, life.ID))

	// Archiving releases the counter
	resp, err = app.Test(jsonRequest(t, http.MethodPut, "/api/blogs/"+itoa(draft.ID),
		map[string]any{"status": models.BlogArchived}, token))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, postCount(t, store, life.ID))

	// Deleting a published blog decrements its category
	published, err := store.GetBlogBySlug("go-generics-in-practice")
	require.NoError(t, err)
	resp, err = app.Test(jsonRequest(t, http.MethodDelete, "/api/blogs/"+itoa(published.ID), nil, token))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, postCount(t, store, tech.ID))
}

func TestBlogAutoFields(t *testing.T) {
	store := storage.NewMemoryStore()
	app := newTestApp(t, store, &fakeBlob{})
	_, token := seedUser(t, store, "author@example.com", models.RoleAuthor)

	category := &models.BlogCategory{Name: "Tech"}
	require.NoError(t, store.CreateCategory(category))

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/blogs/", map[string]any{
		"title":       "Hello, World! A First Post",
		"description": "<p>Body with <b>markup</b> that the excerpt strips.</p>",
		"categoryId":  category.ID,
		"status":      models.BlogPublished,
	}, token))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	blog, err := store.GetBlogBySlug("hello-world-a-first-post")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCoverImage, blog.CoverImage)
	assert.NotNil(t, blog.PublishedAt)
}

func TestBlogOwnership(t *testing.T) {
	store := storage.NewMemoryStore()
	app := newTestApp(t, store, &fakeBlob{})
	author, _ := seedUser(t, store, "author@example.com", models.RoleAuthor)
	_, otherToken := seedUser(t, store, "other@example.com", models.RoleAuthor)
	_, adminToken := seedUser(t, store, "admin@example.com", models.RoleAdmin)

	category := &models.BlogCategory{Name: "Tech"}
	require.NoError(t, store.CreateCategory(category))

	blog := &models.Blog{
		Title:       "Mine",
		Description: "<p>Body.</p>",
		CategoryID:  category.ID,
		AuthorID:    author.ID,
		Status:      models.BlogPublished,
	}
	require.NoError(t, store.CreateBlog(blog))

	// Another author cannot touch it
	resp, err := app.Test(jsonRequest(t, http.MethodPut, "/api/blogs/"+itoa(blog.ID),
		map[string]any{"title": "Stolen"}, otherToken))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// An admin can
	resp, err = app.Test(jsonRequest(t, http.MethodPut, "/api/blogs/"+itoa(blog.ID),
		map[string]any{"title": "Edited by admin"}, adminToken))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBlogPublicListHidesDrafts(t *testing.T) {
	store := storage.NewMemoryStore()
	app := newTestApp(t, store, &fakeBlob{})
	author, _ := seedUser(t, store, "author@example.com", models.RoleAuthor)

	category := &models.BlogCategory{Name: "Tech"}
	require.NoError(t, store.CreateCategory(category))

	require.NoError(t, store.CreateBlog(&models.Blog{
		Title: "Published", Description: "<p>x</p>",
		CategoryID: category.ID, AuthorID: author.ID, Status: models.BlogPublished,
	}))
	require.NoError(t, store.CreateBlog(&models.Blog{
		Title: "Draft", Description: "<p>x</p>",
		CategoryID: category.ID, AuthorID: author.ID, Status: models.BlogDraft,
	}))

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/blogs/", nil, ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].([]any)
	assert.Len(t, data, 1)
}
