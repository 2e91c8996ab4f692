package sweep

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourusername/syukei/internal/poll"
)

// Runner は集計ストアに対する掃除の実行を担います。
type Runner struct {
	store  poll.Store
	maxAge time.Duration
}

// NewRunner は Runner を作成します。
func NewRunner(store poll.Store, maxAge time.Duration) *Runner {
	return &Runner{store: store, maxAge: maxAge}
}

// MaxAge は保持期間を返します。
func (r *Runner) MaxAge() time.Duration {
	return r.maxAge
}

// Run は保持期間を過ぎた集計ファイルを削除し、削除件数を返します。
func (r *Runner) Run(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return r.store.SweepExpired(r.maxAge)
}

// RunBestEffort はトップページ表示時の同期掃除用です。
// エラーはログに残して握りつぶし、リクエスト処理を止めません。
func (r *Runner) RunBestEffort(ctx context.Context) {
	removed, err := r.Run(ctx)
	if err != nil {
		slog.Warn("sweep failed", "error", err)
		return
	}
	if removed > 0 {
		slog.Info("sweep completed", "removed", removed)
	}
}
