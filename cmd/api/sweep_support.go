package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"

	"github.com/yourusername/syukei/internal/config"
	"github.com/yourusername/syukei/internal/sweep"
)

// setupSweep はバックグラウンド掃除の Manager を組み立てます。
// Redis URL が未設定の場合は nil を返し、トップページ表示時の同期掃除のみで運用します。
func setupSweep(cfg *config.Config, runner *sweep.Runner) (*sweep.Manager, error) {
	if cfg.SweepRedisURL == "" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.SweepRedisURL)
	if err != nil {
		return nil, err
	}

	redisClient := redis.NewClient(opt)

	// 実行記録は掃除間隔の数回分だけ残れば十分
	intervalMinutes := cfg.SweepIntervalMinutes
	if intervalMinutes <= 0 {
		intervalMinutes = 60
	}
	ttl := time.Duration(intervalMinutes*3) * time.Minute

	store := sweep.NewStore(redisClient, ttl)
	manager, err := sweep.NewManager(cfg, runner, store, log.Default())
	if err != nil {
		return nil, err
	}
	return manager, nil
}

// sweepStatusHandler は GET /api/sweep/status のハンドラーを返します。
func sweepStatusHandler(manager *sweep.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		record, err := manager.LastRecord(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "掃除ジョブの実行記録の取得に失敗しました。",
			})
			return
		}
		if record == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"code":    "SWEEP_NOT_RUN",
				"message": "バックグラウンド掃除はまだ実行されていません。",
			})
			return
		}

		payload := gin.H{
			"ranAt":      record.RanAt,
			"removed":    record.Removed,
			"durationMs": record.DurationMs,
		}
		if record.Error != "" {
			payload["error"] = record.Error
		}
		c.JSON(http.StatusOK, payload)
	}
}
