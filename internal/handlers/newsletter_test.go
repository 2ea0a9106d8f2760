package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l2h-tech/blog-backend/internal/models"
	"github.com/l2h-tech/blog-backend/internal/storage"
)

func TestNewsletterSubscribeVerifyFlow(t *testing.T) {
	store := storage.NewMemoryStore()
	app := newTestApp(t, store, &fakeBlob{})

	// Step 1: subscribe issues a verification code
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/newsletter/subscribe",
		map[string]any{"email": "reader@example.com", "name": "Reader"}, ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := decodeBody(t, resp)["data"].(map[string]any)
	assert.Equal(t, "reader@example.com", data["email"])
	assert.Equal(t, true, data["requiresOTP"])

	_, err = store.GetSubscriberByEmail("reader@example.com")
	assert.ErrorIs(t, err, storage.ErrNotFound, "no subscriber before verification")

	otp, err := store.GetLatestPendingOTP("reader@example.com", models.PurposeNewsletter)
	require.NoError(t, err)

	// Step 2: verify activates the subscription
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/newsletter/verify",
		map[string]any{"email": "reader@example.com", "name": "Reader", "otp": otp.Code}, ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	sub, err := store.GetSubscriberByEmail("reader@example.com")
	require.NoError(t, err)
	assert.True(t, sub.IsActive)
	assert.Equal(t, "Reader", sub.Name)
}

func TestNewsletterDuplicateSubscribe(t *testing.T) {
	store := storage.NewMemoryStore()
	app := newTestApp(t, store, &fakeBlob{})

	require.NoError(t, store.CreateSubscriber(&models.Newsletter{
		Email: "reader@example.com", IsActive: true,
	}))

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/newsletter/subscribe",
		map[string]any{"email": "reader@example.com"}, ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "Email is already subscribed", body["error"])
}

func TestNewsletterReactivation(t *testing.T) {
	store := storage.NewMemoryStore()
	app := newTestApp(t, store, &fakeBlob{})

	sub := &models.Newsletter{Email: "reader@example.com", IsActive: true}
	require.NoError(t, store.CreateSubscriber(sub))

	// Unsubscribe keeps the row but deactivates it
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/newsletter/unsubscribe",
		map[string]any{"email": "reader@example.com"}, ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	lapsed, err := store.GetSubscriberByEmail("reader@example.com")
	require.NoError(t, err)
	assert.False(t, lapsed.IsActive)
	assert.NotNil(t, lapsed.UnsubscribedAt)

	// Re-subscribing reactivates immediately, no second OTP round
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/newsletter/subscribe",
		map[string]any{"email": "reader@example.com"}, ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	active, err := store.GetSubscriberByEmail("reader@example.com")
	require.NoError(t, err)
	assert.True(t, active.IsActive)
	assert.Nil(t, active.UnsubscribedAt)

	_, err = store.GetLatestPendingOTP("reader@example.com", models.PurposeNewsletter)
	assert.ErrorIs(t, err, storage.ErrNotFound, "reactivation must not issue a code")
}

func TestNewsletterVerifyWrongCode(t *testing.T) {
	store := storage.NewMemoryStore()
	app := newTestApp(t, store, &fakeBlob{})

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/newsletter/subscribe",
		map[string]any{"email": "reader@example.com"}, ""))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	otp, err := store.GetLatestPendingOTP("reader@example.com", models.PurposeNewsletter)
	require.NoError(t, err)
	wrong := "000000"
	if wrong == otp.Code {
		wrong = "000001"
	}

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/newsletter/verify",
		map[string]any{"email": "reader@example.com", "otp": wrong}, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, err = store.GetSubscriberByEmail("reader@example.com")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestNewsletterAdminListRequiresAuth(t *testing.T) {
	store := storage.NewMemoryStore()
	app := newTestApp(t, store, &fakeBlob{})

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/newsletter/", nil, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, token := seedUser(t, store, "admin@example.com", models.RoleAdmin)
	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/newsletter/", nil, token))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
