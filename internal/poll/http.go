package poll

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/syukei/internal/guard"
	"github.com/yourusername/syukei/internal/view"
)

// UniquenessGuard は1ブラウザ1票の目安となる投票済みクッキーを操作します。
type UniquenessGuard interface {
	HasVoted(c *gin.Context, pollID string) bool
	MarkVoted(c *gin.Context, pollID string)
}

// FormSession はCSRFトークンと検証エラーの一時保存を提供します。
type FormSession interface {
	EnsureCSRFToken(c *gin.Context) (string, error)
	StoreFailure(c *gin.Context, failure guard.Failure) error
	TakeFailure(c *gin.Context) guard.Failure
}

// Sweeper はトップページ表示時に期限切れ集計の掃除を実行します。
type Sweeper interface {
	RunBestEffort(ctx context.Context)
}

// Handlers は集計関連のHTTPハンドラーをまとめます。
type Handlers struct {
	store     Store
	sanitizer *Sanitizer
	session   FormSession
	voted     UniquenessGuard
	sweeper   Sweeper
}

// NewHandlers は Handlers を作成します。
func NewHandlers(store Store, sanitizer *Sanitizer, session FormSession, voted UniquenessGuard, sweeper Sweeper) *Handlers {
	return &Handlers{
		store:     store,
		sanitizer: sanitizer,
		session:   session,
		voted:     voted,
		sweeper:   sweeper,
	}
}

// Active は GET /active のハンドラーです。死活監視用に "ok" を返します。
func (h *Handlers) Active(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// Home は GET / のハンドラーです。作成フォームを描画し、期限切れ集計を掃除します。
func (h *Handlers) Home(c *gin.Context) {
	if h.sweeper != nil {
		h.sweeper.RunBestEffort(c.Request.Context())
	}

	failure := h.session.TakeFailure(c)
	token, err := h.session.EnsureCSRFToken(c)
	if err != nil {
		h.renderServerError(c)
		return
	}

	meta := view.HomeMeta()
	c.HTML(http.StatusOK, "home.tmpl", gin.H{
		"meta":      meta,
		"csrfToken": token,
		"errors":    failure.Messages,
		"prevName":  failure.Name,
		"prevData":  failure.Data,
	})
}

// Create は POST /create のハンドラーです。
// 検証に失敗した場合はエラーと送信内容をセッションに退避してトップへ戻します。
func (h *Handlers) Create(c *gin.Context) {
	name := c.PostForm("name")
	data := c.PostForm("data")

	draft := h.sanitizer.Draft(name, data)
	p, err := h.store.Create(draft)
	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Code == CodeValidation {
			if storeErr := h.session.StoreFailure(c, guard.Failure{
				Messages: []string{apiErr.Message},
				Name:     name,
				Data:     data,
			}); storeErr != nil {
				slog.Error("failed to store form failure", "error", storeErr)
			}
			c.Redirect(http.StatusFound, "/")
			return
		}
		slog.Error("failed to create poll", "error", err)
		h.renderServerError(c)
		return
	}

	c.Redirect(http.StatusFound, "/form/"+p.ID+"/")
}

// Form は GET /form/:id/ のハンドラーです。投票フォームを描画します。
func (h *Handlers) Form(c *gin.Context) {
	p, err := h.store.Load(c.Param("id"))
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	token, err := h.session.EnsureCSRFToken(c)
	if err != nil {
		h.renderServerError(c)
		return
	}

	c.HTML(http.StatusOK, "form.tmpl", gin.H{
		"meta":      view.FormMeta(p.Name),
		"poll":      p,
		"csrfToken": token,
	})
}

// Vote は POST /result/:id/ のハンドラーです。
// 投票済みクッキーがある場合は加算せずに結果ページへリダイレクトします。
func (h *Handlers) Vote(c *gin.Context) {
	pollID := c.Param("id")

	if h.voted.HasVoted(c, pollID) {
		c.Redirect(http.StatusFound, "/result/"+pollID+"/?is_voted=1")
		return
	}

	p, err := h.store.Load(pollID)
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	// 未知のキーは加算せずそのまま結果を表示する
	key := c.PostForm("key")
	if p.Apply(key) {
		if err := h.store.Save(p); err != nil {
			slog.Error("failed to save vote", "poll_id", pollID, "error", err)
			h.renderServerError(c)
			return
		}
		slog.Info("vote recorded", "poll_id", pollID)
	}

	h.voted.MarkVoted(c, pollID)
	h.renderResult(c, p, false)
}

// Result は GET /result/:id/ のハンドラーです。投票せずに結果を表示します。
func (h *Handlers) Result(c *gin.Context) {
	p, err := h.store.Load(c.Param("id"))
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	h.renderResult(c, p, c.Query("is_voted") == "1")
}

// Term は GET /term のハンドラーです。利用規約ページを描画します。
func (h *Handlers) Term(c *gin.Context) {
	c.HTML(http.StatusOK, "term.tmpl", gin.H{
		"meta": view.StaticMeta("利用規約"),
	})
}

// LP は GET /lp/ のハンドラーです。サービス紹介ページを描画します。
func (h *Handlers) LP(c *gin.Context) {
	c.HTML(http.StatusOK, "lp.tmpl", gin.H{
		"meta": view.StaticMeta("syukei とは"),
	})
}

func (h *Handlers) renderResult(c *gin.Context, p *Poll, isVoted bool) {
	c.HTML(http.StatusOK, "result.tmpl", gin.H{
		"meta":    view.ResultMeta(p.Name),
		"poll":    p,
		"entries": p.SortedTallies(),
		"total":   p.TotalVotes(),
		"isVoted": isVoted,
	})
}

func (h *Handlers) respondWithError(c *gin.Context, err error) {
	var apiErr *Error
	switch {
	case errors.As(err, &apiErr) && apiErr.Code == CodeNotFound:
		c.HTML(http.StatusNotFound, "error.tmpl", gin.H{
			"meta":    view.StaticMeta("ページが見つかりません"),
			"status":  http.StatusNotFound,
			"message": "指定された集計は存在しないか、期限切れで削除されました。",
		})
	case errors.As(err, &apiErr) && apiErr.Code == CodeCorruptData:
		slog.Error("corrupt poll data", "error", err)
		h.renderServerError(c)
	default:
		slog.Error("unexpected error", "error", err)
		h.renderServerError(c)
	}
}

func (h *Handlers) renderServerError(c *gin.Context) {
	c.HTML(http.StatusInternalServerError, "error.tmpl", gin.H{
		"meta":    view.StaticMeta("エラー"),
		"status":  http.StatusInternalServerError,
		"message": "サーバー内部でエラーが発生しました。",
	})
}
