// Package storage はプライベートなファイルオブジェクトへの
// 時限付き署名URLを扱う。
package storage

import "time"

// ブロブストアの約束。ファイル参照から期限付きの取得URLを作る。
type Store interface {
	SignURL(fileRef string, ttl time.Duration) (string, error)
}
