package sweep

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"github.com/yourusername/syukei/internal/config"
)

const taskTypeSweep = "sweep:run"

// Manager はバックグラウンド掃除の定期実行と状態管理を担います。
type Manager struct {
	cfg       *config.Config
	scheduler *asynq.Scheduler
	server    *asynq.Server
	mux       *asynq.ServeMux
	store     *Store
	runner    *Runner
	logger    *log.Logger
}

// NewManager は Manager を初期化します。
func NewManager(cfg *config.Config, runner *Runner, store *Store, logger *log.Logger) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if runner == nil {
		return nil, errors.New("runner is nil")
	}
	if store == nil {
		return nil, errors.New("store is nil")
	}
	opt, err := asynq.ParseRedisURI(cfg.SweepRedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	scheduler := asynq.NewScheduler(opt, nil)
	server := asynq.NewServer(
		opt,
		asynq.Config{
			Concurrency: 1,
			Queues: map[string]int{
				"sweep": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	manager := &Manager{
		cfg:       cfg,
		scheduler: scheduler,
		server:    server,
		mux:       mux,
		store:     store,
		runner:    runner,
		logger:    logger,
	}
	mux.HandleFunc(taskTypeSweep, manager.handleSweepTask)
	return manager, nil
}

// Start は定期タスクを登録し、スケジューラとワーカーをバックグラウンドで起動します。
func (m *Manager) Start() error {
	interval := m.cfg.SweepIntervalMinutes
	if interval <= 0 {
		interval = 60
	}

	task := asynq.NewTask(taskTypeSweep, nil, asynq.Queue("sweep"))
	spec := fmt.Sprintf("@every %dm", interval)
	if _, err := m.scheduler.Register(spec, task, asynq.MaxRetry(0)); err != nil {
		return fmt.Errorf("failed to register sweep task: %w", err)
	}

	if err := m.scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	go func() {
		if err := m.server.Run(m.mux); err != nil && err != asynq.ErrServerClosed {
			if m.logger != nil {
				m.logger.Printf("asynq server stopped with error: %v", err)
			} else {
				log.Printf("asynq server stopped with error: %v", err)
			}
		}
	}()
	return nil
}

// Shutdown はスケジューラとワーカーを停止します。
func (m *Manager) Shutdown(ctx context.Context) error {
	m.scheduler.Shutdown()
	m.server.Shutdown()
	return nil
}

// LastRecord は直近の掃除実行記録を返します。
func (m *Manager) LastRecord(ctx context.Context) (*Record, error) {
	return m.store.Last(ctx)
}

func (m *Manager) handleSweepTask(ctx context.Context, task *asynq.Task) error {
	start := time.Now()
	removed, err := m.runner.Run(ctx)

	record := &Record{
		RanAt:      start.UTC(),
		Removed:    removed,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		record.Error = err.Error()
	}
	if putErr := m.store.Put(ctx, record); putErr != nil && m.logger != nil {
		m.logger.Printf("failed to store sweep record: %v", putErr)
	}

	// 掃除はベストエフォートのためタスク自体は失敗させない
	if err != nil && m.logger != nil {
		m.logger.Printf("background sweep finished with error: %v", err)
	}
	return nil
}
