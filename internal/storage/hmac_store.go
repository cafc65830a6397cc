package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// HMAC-SHA256で署名するストア。サーバー側セッションを持たず、
// URLだけで検証できる（改ざんすると署名が合わなくなる）。
type HMACStore struct {
	secret  []byte
	baseURL string
}

func NewHMACStore(secret string, baseURL string) (*HMACStore, error) {
	if secret == "" {
		return nil, errors.New("storage: signing secret is required")
	}
	if baseURL == "" {
		return nil, errors.New("storage: base url is required")
	}
	return &HMACStore{
		secret:  []byte(secret),
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *HMACStore) SignURL(fileRef string, ttl time.Duration) (string, error) {
	if fileRef == "" {
		return "", errors.New("storage: file ref is required")
	}

	expires := time.Now().Add(ttl).Unix()
	sig := s.sign(fileRef, expires)

	return fmt.Sprintf("%s/files/%s?expires=%d&sig=%s",
		s.baseURL, url.PathEscape(fileRef), expires, sig), nil
}

// Verify は /files/:ref を配信する側で使う。期限切れ・署名不一致は false。
func (s *HMACStore) Verify(fileRef string, expires int64, sig string) bool {
	if fileRef == "" || sig == "" {
		return false
	}
	if time.Now().Unix() > expires {
		return false
	}

	expected := s.sign(fileRef, expires)
	return hmac.Equal([]byte(expected), []byte(sig))
}

func (s *HMACStore) sign(fileRef string, expires int64) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(fileRef + "|" + strconv.FormatInt(expires, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}
