// Package sweep は期限切れ集計ファイルの掃除機能を提供します。
package sweep

import "time"

// Record は直近のバックグラウンド掃除の実行結果を表します。
type Record struct {
	RanAt      time.Time `json:"ranAt"`
	Removed    int       `json:"removed"`
	DurationMs int64     `json:"durationMs"`
	Error      string    `json:"error,omitempty"`
}
