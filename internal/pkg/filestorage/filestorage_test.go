package filestorage

import (
	"context"
	"crypto/sha1"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_UploadAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir, "http://localhost:8080/")
	require.NoError(t, err)

	stored, err := store.Upload(context.Background(), strings.NewReader("%PDF-1.4 test"), Upload{
		Folder:    "question_papers",
		MimeType:  "application/pdf",
		Extension: ".pdf",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.URL, "http://localhost:8080/uploads/question_papers/"))
	assert.True(t, strings.HasSuffix(stored.URL, ".pdf"))
	assert.Equal(t, "application/pdf", stored.MimeType)

	onDisk := filepath.Join(dir, filepath.FromSlash(stored.PublicID))
	content, err := os.ReadFile(onDisk)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 test", string(content))

	require.NoError(t, store.Delete(context.Background(), stored.URL))
	_, err = os.Stat(onDisk)
	assert.True(t, os.IsNotExist(err))

	// already gone
	assert.NoError(t, store.Delete(context.Background(), stored.URL))
}

func TestLocalStorage_DeleteRejectsForeignURLs(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	err = store.Delete(context.Background(), "https://elsewhere.test/file.pdf")
	assert.ErrorIs(t, err, ErrInvalidFileURL)

	p, err := store.pathFor("/uploads/../../etc/passwd")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p, store.basePath), "path %s escaped base", p)
}

func TestParseCloudinaryURL(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		resourceType string
		publicID     string
		wantErr      bool
	}{
		{
			name:         "image with version",
			url:          "https://res.cloudinary.com/demo/image/upload/v1712345678/user_avatars/abc123.png",
			resourceType: "image",
			publicID:     "user_avatars/abc123",
		},
		{
			name:         "raw keeps extension",
			url:          "https://res.cloudinary.com/demo/raw/upload/v1/question_papers/final.pdf",
			resourceType: "raw",
			publicID:     "question_papers/final.pdf",
		},
		{
			name:         "no version segment",
			url:          "https://res.cloudinary.com/demo/image/upload/question_papers/scan.jpg",
			resourceType: "image",
			publicID:     "question_papers/scan",
		},
		{name: "not a delivery url", url: "https://example.com/file.pdf", wantErr: true},
		{name: "nothing after upload", url: "https://res.cloudinary.com/demo/image/upload/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, id, err := ParseCloudinaryURL(tt.url)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFileURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.resourceType, rt)
			assert.Equal(t, tt.publicID, id)
		})
	}
}

func TestResourceTypeFor(t *testing.T) {
	assert.Equal(t, "raw", ResourceTypeFor("application/pdf"))
	assert.Equal(t, "image", ResourceTypeFor("image/png"))
}

func newTestCloudinary(t *testing.T, handler http.HandlerFunc) *CloudinaryStorage {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewCloudinaryStorage("demo", "key", "secret")
	c.BaseURL = srv.URL
	c.now = func() time.Time { return time.Unix(1700000000, 0) }
	return c
}

func expectedSignature(payload string) string {
	return fmt.Sprintf("%x", sha1.Sum([]byte(payload+"secret")))
}

func TestCloudinaryStorage_Upload(t *testing.T) {
	c := newTestCloudinary(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/demo/raw/upload", r.URL.Path)
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "question_papers", r.FormValue("folder"))
		assert.Equal(t, "key", r.FormValue("api_key"))
		assert.Equal(t, expectedSignature("folder=question_papers&timestamp=1700000000"), r.FormValue("signature"))

		_, _, err := r.FormFile("file")
		assert.NoError(t, err)

		fmt.Fprint(w, `{"public_id":"question_papers/x.pdf","secure_url":"https://res.cloudinary.com/demo/raw/upload/v1/question_papers/x.pdf","resource_type":"raw"}`)
	})

	stored, err := c.Upload(context.Background(), strings.NewReader("%PDF"), Upload{
		Folder: "question_papers", MimeType: "application/pdf", Extension: ".pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo/raw/upload/v1/question_papers/x.pdf", stored.URL)
	assert.Equal(t, "question_papers/x.pdf", stored.PublicID)
}

func TestCloudinaryStorage_UploadFailure(t *testing.T) {
	c := newTestCloudinary(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"Invalid Signature"}}`, http.StatusUnauthorized)
	})

	_, err := c.Upload(context.Background(), strings.NewReader("x"), Upload{MimeType: "image/png", Extension: ".png"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestCloudinaryStorage_Delete(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		c := newTestCloudinary(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/demo/image/destroy", r.URL.Path)
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "user_avatars/abc", r.PostForm.Get("public_id"))
			assert.Equal(t, expectedSignature("public_id=user_avatars/abc&timestamp=1700000000"), r.PostForm.Get("signature"))
			fmt.Fprint(w, `{"result":"ok"}`)
		})

		err := c.Delete(context.Background(), "https://res.cloudinary.com/demo/image/upload/v3/user_avatars/abc.jpg")
		assert.NoError(t, err)
	})

	t.Run("not found is success", func(t *testing.T) {
		c := newTestCloudinary(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"result":"not found"}`)
		})

		assert.NoError(t, c.Delete(context.Background(), "https://res.cloudinary.com/demo/raw/upload/q/x.pdf"))
	})

	t.Run("invalid url never reaches the api", func(t *testing.T) {
		c := newTestCloudinary(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("unexpected request")
		})

		assert.ErrorIs(t, c.Delete(context.Background(), "https://example.com/x.pdf"), ErrInvalidFileURL)
	})
}
