package repository

import (
	"context"
	"errors"
)

// すでにカートに入っている商品を追加しようとした
var ErrDuplicateItem = errors.New("duplicate item")

// カートの持ち主。ログイン済みなら user、未ログインならセッションcookieの値。
// 未ログインでも必ずセッションIDを発行するので「全員共通の匿名カート」は存在しない。
type CartOwnerKind string

const (
	CartOwnerUser    CartOwnerKind = "user"
	CartOwnerSession CartOwnerKind = "session"
)

type CartOwner struct {
	Kind CartOwnerKind
	ID   string
}

// 揮発性のカートストア。全mutationでTTL（7日）を張り直す。
type CartStore interface {
	//無い・期限切れなら空スライス
	Get(ctx context.Context, owner CartOwner) ([]int64, error)

	//重複なら ErrDuplicateItem。戻り値は追加後の件数。
	Add(ctx context.Context, owner CartOwner, productID int64) (int, error)

	//冪等。空になったらキーごと削除する。戻り値は削除後の件数。
	Remove(ctx context.Context, owner CartOwner, productID int64) (int, error)

	//無条件削除
	Clear(ctx context.Context, owner CartOwner) error
}
