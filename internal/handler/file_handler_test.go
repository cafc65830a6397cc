package handler_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"app/internal/handler"
	"app/internal/storage"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileServer(t *testing.T) (*echo.Echo, *storage.HMACStore, string) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "ebooks"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ebooks", "go-patterns.pdf"), []byte("pdf-bytes"), 0o644))

	store, err := storage.NewHMACStore("s3cret", "https://dl.example.com")
	require.NoError(t, err)

	e := echo.New()
	handler.NewFileHandler(store, dir).RegisterRoutes(e)
	return e, store, dir
}

func serveSignedURL(t *testing.T, e *echo.Echo, signed string) *httptest.ResponseRecorder {
	t.Helper()

	//サーバーが発行したURLのパス＋クエリをそのまま叩く
	target := strings.TrimPrefix(signed, "https://dl.example.com")
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// 自分で署名したURLは自分で配信できる（スラッシュ入りrefはエスケープされて届く）
func TestFileHandler_ServesOwnSignedURL(t *testing.T) {
	e, store, _ := newFileServer(t)

	signed, err := store.SignURL("ebooks/go-patterns.pdf", time.Hour)
	require.NoError(t, err)
	//ref部分はパスエスケープされている
	require.Contains(t, signed, "/files/ebooks%2Fgo-patterns.pdf")

	rec := serveSignedURL(t, e, signed)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pdf-bytes", rec.Body.String())
}

func TestFileHandler_RejectsTamperedSignature(t *testing.T) {
	e, store, _ := newFileServer(t)

	signed, err := store.SignURL("ebooks/go-patterns.pdf", time.Hour)
	require.NoError(t, err)

	u, err := url.Parse(signed)
	require.NoError(t, err)
	q := u.Query()
	q.Set("sig", "deadbeef")
	u.RawQuery = q.Encode()

	rec := serveSignedURL(t, e, u.String())
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestFileHandler_RejectsExpiredURL(t *testing.T) {
	e, store, _ := newFileServer(t)

	signed, err := store.SignURL("ebooks/go-patterns.pdf", -time.Minute)
	require.NoError(t, err)

	rec := serveSignedURL(t, e, signed)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// 署名は正しいがファイルが無い（別refで署名した）場合は404
func TestFileHandler_MissingFileIs404(t *testing.T) {
	e, store, _ := newFileServer(t)

	signed, err := store.SignURL("ebooks/deleted-book.pdf", time.Hour)
	require.NoError(t, err)

	rec := serveSignedURL(t, e, signed)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
