package cart

import (
	"context"

	"app/internal/domain/model"
)

// セッションストアの約束。Getはスナップショットが無ければ found=false。
// Setは全明細のスナップショットを書き、セッションを「変更あり」として扱う。
type SessionStore interface {
	Get(ctx context.Context, key string) (records []ItemRecord, found bool, err error)
	Set(ctx context.Context, key string, records []ItemRecord) error
}

// カタログ参照の約束。存在するIDの分だけ返す。
// 見つからなかったIDはエラーにせず、単に結果に含めない。
type ProductFinder interface {
	FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error)
}
