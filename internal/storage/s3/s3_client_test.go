package s3_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freightx/internal/config"
	"freightx/internal/domain"
	"freightx/internal/port"
	s3store "freightx/internal/storage/s3"
)

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestClient(t *testing.T, handler http.HandlerFunc) port.ObjectStore {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := s3store.NewS3Client(context.Background(), &config.S3Config{
		Region:    "us-east-1",
		Endpoint:  srv.URL,
		AccessKey: "test",
		SecretKey: "test",
	})
	require.NoError(t, err)
	return client
}

func writeS3Error(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>`+code+`</Code><Message>`+code+`</Message></Error>`)
}

func TestS3Client_GetNoSuchKey(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bucket/missing.json", r.URL.Path)
		writeS3Error(w, http.StatusNotFound, "NoSuchKey")
	})

	_, err := client.Get(context.Background(), "bucket", "missing.json")
	assert.ErrorIs(t, err, domain.ErrObjectNotFound)
}

func TestS3Client_GetPutDelete(t *testing.T) {
	var putBody, ifMatch string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("ETag", `"v1"`)
			_, _ = io.WriteString(w, `{"version":1,"entries":[]}`)
		case http.MethodPut:
			b, _ := io.ReadAll(r.Body)
			putBody = string(b)
			ifMatch = r.Header.Get("If-Match")
			w.Header().Set("ETag", `"v2"`)
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	})

	obj, err := client.Get(context.Background(), "bucket", "cp.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1,"entries":[]}`, string(obj.Data))
	assert.Equal(t, `"v1"`, obj.ETag)

	etag, err := client.Put(context.Background(), port.PutInput{
		Bucket:      "bucket",
		Key:         "cp.json",
		Data:        []byte(`{"version":1}`),
		ContentType: "application/json",
		IfMatch:     obj.ETag,
	})
	require.NoError(t, err)
	assert.Equal(t, `"v2"`, etag)
	assert.Equal(t, `"v1"`, ifMatch)
	assert.Contains(t, putBody, `{"version":1}`)

	require.NoError(t, client.Delete(context.Background(), "bucket", "cp.json"))
}

func TestS3Client_PutPreconditionFailed(t *testing.T) {
	var ifNoneMatch string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		ifNoneMatch = r.Header.Get("If-None-Match")
		_, _ = io.Copy(io.Discard, r.Body)
		writeS3Error(w, http.StatusPreconditionFailed, "PreconditionFailed")
	})

	_, err := client.Put(context.Background(), port.PutInput{
		Bucket:      "bucket",
		Key:         "cp.json",
		Data:        []byte(`{}`),
		IfNoneMatch: true,
	})
	assert.ErrorIs(t, err, domain.ErrObjectConflict)
	assert.Equal(t, "*", ifNoneMatch)
}
