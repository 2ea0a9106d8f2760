package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const blobAPIBase = "https://blob.vercel-storage.com"

// ErrBlobNotConfigured is returned when BLOB_READ_WRITE_TOKEN is missing
var ErrBlobNotConfigured = errors.New("blob storage not configured")

// BlobObject describes one stored file
type BlobObject struct {
	URL         string    `json:"url"`
	Pathname    string    `json:"pathname"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// BlobListResult is one page of stored files
type BlobListResult struct {
	Blobs   []BlobObject `json:"blobs"`
	Cursor  string       `json:"cursor"`
	HasMore bool         `json:"hasMore"`
}

// BlobStore abstracts the file storage backend so handlers can be tested
// against a fake.
type BlobStore interface {
	Upload(pathname, contentType string, data []byte) (*BlobObject, error)
	Delete(urls []string) error
	List(prefix, cursor string, limit int) (*BlobListResult, error)
}

// VercelBlobStore talks to the Vercel Blob REST API
type VercelBlobStore struct {
	token  string
	base   string
	client *http.Client
}

// NewVercelBlobStore reads BLOB_READ_WRITE_TOKEN from the environment.
// Without a token every call returns ErrBlobNotConfigured.
func NewVercelBlobStore() *VercelBlobStore {
	token := os.Getenv("BLOB_READ_WRITE_TOKEN")
	if token == "" {
		log.Println("⚠️ BLOB_READ_WRITE_TOKEN not set, file uploads disabled")
	}
	return &VercelBlobStore{
		token:  token,
		base:   blobAPIBase,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// UniquePathname prefixes the filename with a folder and a random id so
// concurrent uploads of the same file never collide.
func UniquePathname(folder, filename string) string {
	ext := path.Ext(filename)
	stem := strings.TrimSuffix(path.Base(filename), ext)
	return fmt.Sprintf("%s/%s-%s%s", strings.Trim(folder, "/"), stem, uuid.NewString()[:8], ext)
}

func (v *VercelBlobStore) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Authorization", "Bearer "+v.token)
	req.Header.Set("x-api-version", "7")

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("blob request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("blob API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

// Upload stores data under pathname and returns the public object
func (v *VercelBlobStore) Upload(pathname, contentType string, data []byte) (*BlobObject, error) {
	if v.token == "" {
		return nil, ErrBlobNotConfigured
	}

	req, err := http.NewRequest(http.MethodPut, v.base+"/"+strings.TrimPrefix(pathname, "/"), bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-content-type", contentType)

	body, err := v.do(req)
	if err != nil {
		return nil, err
	}

	var object BlobObject
	if err := json.Unmarshal(body, &object); err != nil {
		return nil, fmt.Errorf("failed to decode blob response: %w", err)
	}
	if object.ContentType == "" {
		object.ContentType = contentType
	}
	if object.Size == 0 {
		object.Size = int64(len(data))
	}
	return &object, nil
}

// Delete removes stored files by their public URLs
func (v *VercelBlobStore) Delete(urls []string) error {
	if v.token == "" {
		return ErrBlobNotConfigured
	}
	if len(urls) == 0 {
		return nil
	}

	payload, err := json.Marshal(map[string][]string{"urls": urls})
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, v.base+"/delete", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	_, err = v.do(req)
	return err
}

// List pages through stored files, optionally under a prefix
func (v *VercelBlobStore) List(prefix, cursor string, limit int) (*BlobListResult, error) {
	if v.token == "" {
		return nil, ErrBlobNotConfigured
	}

	query := url.Values{}
	if prefix != "" {
		query.Set("prefix", prefix)
	}
	if cursor != "" {
		query.Set("cursor", cursor)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	endpoint := v.base
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	body, err := v.do(req)
	if err != nil {
		return nil, err
	}

	var result BlobListResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode blob list: %w", err)
	}
	return &result, nil
}
