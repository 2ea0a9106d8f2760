package handlers_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l2h-tech/blog-backend/internal/models"
	"github.com/l2h-tech/blog-backend/internal/storage"
)

func multipartRequest(t *testing.T, target, field, filename, contentType string, content []byte, token string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestUploadImage(t *testing.T) {
	store := storage.NewMemoryStore()
	blob := &fakeBlob{}
	app := newTestApp(t, store, blob)
	_, token := seedUser(t, store, "author@example.com", models.RoleAuthor)

	resp, err := app.Test(multipartRequest(t, "/api/upload/image",
		"image", "photo.png", "image/png", []byte("fake png bytes"), token))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, blob.uploads)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	assert.Contains(t, data["url"], "images/photo-")
	assert.Contains(t, data["url"], ".png")
}

func TestUploadRejectsDisallowedType(t *testing.T) {
	store := storage.NewMemoryStore()
	blob := &fakeBlob{}
	app := newTestApp(t, store, blob)
	_, token := seedUser(t, store, "author@example.com", models.RoleAuthor)

	resp, err := app.Test(multipartRequest(t, "/api/upload/image",
		"image", "script.sh", "application/x-sh", []byte("#!/bin/sh"), token))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Validation must short-circuit before any storage call
	assert.Equal(t, 0, blob.uploads)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	store := storage.NewMemoryStore()
	blob := &fakeBlob{}
	app := newTestApp(t, store, blob)
	_, token := seedUser(t, store, "author@example.com", models.RoleAuthor)

	big := make([]byte, 5*1024*1024+1)
	resp, err := app.Test(multipartRequest(t, "/api/upload/image",
		"image", "huge.png", "image/png", big, token))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 0, blob.uploads)
}

func TestUploadRequiresWriterRole(t *testing.T) {
	store := storage.NewMemoryStore()
	blob := &fakeBlob{}
	app := newTestApp(t, store, blob)
	_, token := seedUser(t, store, "reader@example.com", models.RoleUser)

	resp, err := app.Test(multipartRequest(t, "/api/upload/image",
		"image", "photo.png", "image/png", []byte("png"), token))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, 0, blob.uploads)
}

func TestBatchUploadRejectsWholeBatchOnOneBadFile(t *testing.T) {
	store := storage.NewMemoryStore()
	blob := &fakeBlob{}
	app := newTestApp(t, store, blob)
	_, token := seedUser(t, store, "author@example.com", models.RoleAuthor)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, f := range []struct{ name, contentType string }{
		{"ok.png", "image/png"},
		{"bad.exe", "application/octet-stream"},
	} {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="images"; filename="`+f.name+`"`)
		header.Set("Content-Type", f.contentType)
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte("content"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload/images", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 0, blob.uploads)
}
