package repository

import (
	"context"

	"app/internal/domain/model"
)

// ダウンロード監査ログ（追記のみ）
type DownloadLogRepository interface {
	Create(ctx context.Context, log model.DownloadLog) error
}
