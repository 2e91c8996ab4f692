// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/syukei/internal/config"
	"github.com/yourusername/syukei/internal/guard"
	"github.com/yourusername/syukei/internal/poll"
	"github.com/yourusername/syukei/internal/sweep"
	"github.com/yourusername/syukei/internal/view"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()

	// テンプレートの読み込み（SetFuncMap は LoadHTMLGlob より先に呼ぶ）
	router.SetFuncMap(view.FuncMap())
	router.LoadHTMLGlob("web/templates/*.tmpl")

	// セッションストアの設定（クッキー署名鍵は必須）
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   guard.SessionMaxAgeSeconds(),
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions(guard.SessionCookieName, store))

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	// CORS許可オリジンを設定（カンマ区切りの文字列を配列に変換）
	origins := strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowOrigins = origins
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	// ドメイン層の組み立て
	pollStore := poll.NewFileStore(cfg.DataDir)
	sanitizer := poll.NewSanitizer()
	guardManager := guard.NewManager(cfg)
	runner := sweep.NewRunner(pollStore, time.Duration(cfg.PollTTLHours)*time.Hour)

	// バックグラウンド掃除（Redis設定がある場合のみ）
	sweepManager, err := setupSweep(cfg, runner)
	if err != nil {
		log.Fatalf("Failed to set up background sweep: %v", err)
	}
	if sweepManager != nil {
		if err := sweepManager.Start(); err != nil {
			log.Fatalf("Failed to start background sweep: %v", err)
		}
		defer func() {
			_ = sweepManager.Shutdown(context.Background())
		}()
	}

	// ルーティングの設定
	handlers := poll.NewHandlers(pollStore, sanitizer, guardManager, guardManager, runner)
	setupRoutes(router, handlers, guardManager, sweepManager)

	// サーバーの起動
	addr := ":" + cfg.Port
	log.Printf("Starting API server on %s (mode: %s)", addr, cfg.GinMode)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRoutes は画面系ルートとAPIルートの配線を行います。
func setupRoutes(router *gin.Engine, handlers *poll.Handlers, guardManager *guard.Manager, sweepManager *sweep.Manager) {
	// 死活監視
	router.GET("/active", handlers.Active)

	// 画面系ルート
	router.GET("/", handlers.Home)
	router.GET("/form/:id/", handlers.Form)
	router.GET("/result/:id/", handlers.Result)
	router.GET("/term", handlers.Term)
	router.GET("/lp/", handlers.LP)

	// 変更系ルートはCSRF検証を通す
	csrf := guardManager.VerifyCSRF()
	router.POST("/create", csrf, handlers.Create)
	router.POST("/result/:id/", csrf, handlers.Vote)

	// API
	api := router.Group("/api")
	{
		if sweepManager != nil {
			api.GET("/sweep/status", sweepStatusHandler(sweepManager))
		}
	}
}
