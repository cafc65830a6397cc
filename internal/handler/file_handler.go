package handler

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"app/internal/storage"

	"github.com/labstack/echo/v4"
)

// 署名URL経由のファイル配信。FILES_DIR が設定されているときだけ登録される
// （未設定なら配信は外部のブロブストアに任せる）。
type FileHandler struct {
	store *storage.HMACStore
	dir   string
}

func NewFileHandler(store *storage.HMACStore, dir string) *FileHandler {
	return &FileHandler{store: store, dir: dir}
}

func (h *FileHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/files/:ref", h.serve)
}

func (h *FileHandler) serve(c echo.Context) error {
	//署名URLのrefはパスエスケープされたまま届く（ebooks%2F...）。
	//署名は生のrefに対して作られているので、検証前に戻す。
	ref, err := url.PathUnescape(c.Param("ref"))
	if err != nil || ref == "" {
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "invalid signature"})
	}

	expires, err := strconv.ParseInt(c.QueryParam("expires"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "invalid signature"})
	}
	sig := c.QueryParam("sig")

	//期限切れ・改ざんはどちらも403
	if !h.store.Verify(ref, expires, sig) {
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "invalid signature"})
	}

	//ディレクトリトラバーサル防止
	clean := filepath.Clean("/" + ref)
	path := filepath.Join(h.dir, clean)
	if !strings.HasPrefix(path, filepath.Clean(h.dir)+string(os.PathSeparator)) {
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "invalid signature"})
	}

	if _, err := os.Stat(path); err != nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	}

	return c.Attachment(path, filepath.Base(path))
}
