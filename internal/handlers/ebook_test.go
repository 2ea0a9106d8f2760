package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l2h-tech/blog-backend/internal/models"
	"github.com/l2h-tech/blog-backend/internal/storage"
)

func seedEbook(t *testing.T, store storage.Store, name string, status int) *models.Ebook {
	t.Helper()
	ebook := &models.Ebook{
		Name:     name,
		Image:    "https://blob.test/covers/" + name + ".png",
		Brochure: "https://blob.test/books/" + name + ".pdf",
		Status:   status,
	}
	require.NoError(t, store.CreateEbook(ebook))
	return ebook
}

func TestEbookDownloadFlow(t *testing.T) {
	store := storage.NewMemoryStore()
	app := newTestApp(t, store, &fakeBlob{})
	ebook := seedEbook(t, store, "Go Patterns", models.EbookActive)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/ebooks/download", map[string]any{
		"name":    "Reader",
		"email":   "reader@example.com",
		"ebookId": ebook.ID,
	}, ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The link comes back even though SMTP is down in tests
	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	assert.Equal(t, ebook.Brochure, data["downloadUrl"])
	assert.Equal(t, false, data["emailSent"])

	// Analytics row recorded and counter bumped
	downloads, total, err := store.ListDownloads(&models.DownloadFilter{EbookID: ebook.ID})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, models.DownloadByUser, downloads[0].Type)
	assert.Equal(t, "reader@example.com", downloads[0].Email)
	assert.Equal(t, ebook.Name, downloads[0].EbookName)

	stored, err := store.GetEbookByID(ebook.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.DownloadCount)
}

func TestEbookDownloadInactive(t *testing.T) {
	store := storage.NewMemoryStore()
	app := newTestApp(t, store, &fakeBlob{})
	ebook := seedEbook(t, store, "Hidden Book", models.EbookInactive)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/ebooks/download", map[string]any{
		"name": "Reader", "email": "reader@example.com", "ebookId": ebook.ID,
	}, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, total, err := store.ListDownloads(&models.DownloadFilter{EbookID: ebook.ID})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestEbookPublicListHidesInactive(t *testing.T) {
	store := storage.NewMemoryStore()
	app := newTestApp(t, store, &fakeBlob{})
	seedEbook(t, store, "Visible", models.EbookActive)
	seedEbook(t, store, "Invisible", models.EbookInactive)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/ebooks/", nil, ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Len(t, body["data"].([]any), 1)
}

func TestEbookGetBySlugBumpsViews(t *testing.T) {
	store := storage.NewMemoryStore()
	app := newTestApp(t, store, &fakeBlob{})
	ebook := seedEbook(t, store, "Go Patterns", models.EbookActive)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/ebooks/go-patterns", nil, ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	stored, err := store.GetEbookByID(ebook.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.ViewCount)
}

func TestAdminBulkSend(t *testing.T) {
	store := storage.NewMemoryStore()
	app := newTestApp(t, store, &fakeBlob{})
	ebook := seedEbook(t, store, "Go Patterns", models.EbookActive)
	_, adminToken := seedUser(t, store, "admin@example.com", models.RoleAdmin)

	// SMTP is disabled in tests, so every send fails and nothing is recorded
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/admin/ebooks/bulk-send", map[string]any{
		"ebookId": ebook.ID,
		"emails":  []string{"a@example.com", "b@example.com"},
	}, adminToken))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	assert.Len(t, data["failed"].([]any), 2)
	assert.Empty(t, data["sent"])

	_, total, err := store.ListDownloads(&models.DownloadFilter{EbookID: ebook.ID})
	require.NoError(t, err)
	assert.Zero(t, total)

	stored, err := store.GetEbookByID(ebook.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.DownloadCount)
}

func TestAdminDashboard(t *testing.T) {
	store := storage.NewMemoryStore()
	app := newTestApp(t, store, &fakeBlob{})
	ebook := seedEbook(t, store, "Go Patterns", models.EbookActive)
	_, adminToken := seedUser(t, store, "admin@example.com", models.RoleAdmin)

	require.NoError(t, store.CreateDownload(&models.EbookDownload{
		Name: "A", Email: "a@example.com", EbookName: ebook.Name, EbookID: ebook.ID,
		Type: models.DownloadByUser,
	}))
	require.NoError(t, store.CreateDownload(&models.EbookDownload{
		Name: "B", Email: "b@example.com", EbookName: ebook.Name, EbookID: ebook.ID,
		Type: models.DownloadByAdmin,
	}))

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/admin/ebooks/dashboard", nil, adminToken))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(2), data["totalDownloads"])
	assert.Equal(t, float64(1), data["userDownloads"])
	assert.Equal(t, float64(1), data["adminSends"])
	assert.Equal(t, float64(2), data["uniqueEmails"])
}

func TestDownloadsCSVExport(t *testing.T) {
	store := storage.NewMemoryStore()
	app := newTestApp(t, store, &fakeBlob{})
	ebook := seedEbook(t, store, "Go Patterns", models.EbookActive)
	_, adminToken := seedUser(t, store, "admin@example.com", models.RoleAdmin)

	require.NoError(t, store.CreateDownload(&models.EbookDownload{
		Name: "Reader", Email: "reader@example.com",
		EbookName: ebook.Name, EbookID: ebook.ID,
		Type: models.DownloadByUser, TypeDescription: models.TypeUserDirectDownload,
		SentBy: "user",
	}))

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/admin/ebooks/downloads/export", nil, adminToken))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")

	raw := make([]byte, 4096)
	n, _ := resp.Body.Read(raw)
	body := string(raw[:n])
	assert.Contains(t, body, "Name,Email,Mobile,Ebook")
	assert.Contains(t, body, "reader@example.com")
}
