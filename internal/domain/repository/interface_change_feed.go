package repository

import (
	"context"

	"SpotMap-App/internal/domain/model"
)

// ChangeFeed 永続化層の変更通知（insert / update / delete）の購読
type ChangeFeed interface {
	// Subscribe ctxが終了するまで変更イベントを流すチャネルを返す
	// チャネルはctx終了またはフィード終了時にcloseされ、再開はできない
	Subscribe(ctx context.Context) (<-chan model.ChangeEvent, error)
}
