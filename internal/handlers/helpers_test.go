package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/l2h-tech/blog-backend/internal/models"
	"github.com/l2h-tech/blog-backend/internal/routes"
	"github.com/l2h-tech/blog-backend/internal/services"
	"github.com/l2h-tech/blog-backend/internal/storage"
	"github.com/l2h-tech/blog-backend/internal/utils"
)

// fakeBlob counts calls so tests can assert that validation short-circuits
// before any storage round trip.
type fakeBlob struct {
	uploads int
	deletes int
	lists   int
	fail    bool
}

func (f *fakeBlob) Upload(pathname, contentType string, data []byte) (*services.BlobObject, error) {
	f.uploads++
	if f.fail {
		return nil, services.ErrBlobNotConfigured
	}
	return &services.BlobObject{
		URL:         "https://blob.test/" + pathname,
		Pathname:    pathname,
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

func (f *fakeBlob) Delete(urls []string) error {
	f.deletes++
	if f.fail {
		return services.ErrBlobNotConfigured
	}
	return nil
}

func (f *fakeBlob) List(prefix, cursor string, limit int) (*services.BlobListResult, error) {
	f.lists++
	if f.fail {
		return nil, services.ErrBlobNotConfigured
	}
	return &services.BlobListResult{Blobs: []services.BlobObject{}}, nil
}

// newTestApp wires the full route table against a memory store, a disabled
// email service and the given blob fake.
func newTestApp(t *testing.T, store storage.Store, blob services.BlobStore) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{
		BodyLimit: 60 * 1024 * 1024, // matches the production app, large batch uploads
	})
	routes.SetupRoutes(app, store, services.NewEmailService(), blob)
	return app
}

// seedUser creates an account and returns it with a valid access token
func seedUser(t *testing.T, store storage.Store, email, role string) (*models.User, string) {
	t.Helper()
	user := &models.User{Email: email, Name: "Test " + role, Role: role, IsActive: true}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, store.CreateUser(user))

	token, err := utils.GenerateAccessToken(user.ID, user.Email, user.Role)
	require.NoError(t, err)
	return user, token
}

// jsonRequest builds a JSON request, optionally authenticated
func jsonRequest(t *testing.T, method, target string, body any, token string) *http.Request {
	t.Helper()
	var buf io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, target, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// decodeBody parses the response envelope into a map
func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}
