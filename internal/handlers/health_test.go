package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l2h-tech/blog-backend/internal/storage"
)

func TestHealthCheck(t *testing.T) {
	app := newTestApp(t, storage.NewMemoryStore(), &fakeBlob{})

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/health", nil, ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, "L2H Blog Backend", body["service"])
	assert.NotEmpty(t, body["version"])
	assert.NotEmpty(t, body["uptime"])
}
