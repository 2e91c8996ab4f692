// Package guard はセッション・CSRF・投票済みクッキーの管理機能を提供します。
package guard

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/syukei/internal/config"
)

const (
	SessionCookieName = "syukei_session"
	sessionKeyCSRF    = "csrf_token"
	sessionKeyErrors  = "flash_errors"
	sessionKeyName    = "flash_name"
	sessionKeyData    = "flash_data"

	csrfField  = "csrf_token"
	csrfHeader = "X-CSRF-Token"

	votedCookiePrefix = "syukei_voted_"
)

var maxSessionLifetime = 12 * time.Hour

// SessionMaxAgeSeconds はクッキーの MaxAge に利用する秒数を返します。
func SessionMaxAgeSeconds() int {
	return int(maxSessionLifetime.Seconds())
}

// Manager はセッションと投票済みクッキーの操作をまとめた構造体です。
type Manager struct {
	cfg *config.Config
}

// NewManager は Manager を作成します。
func NewManager(cfg *config.Config) *Manager {
	return &Manager{cfg: cfg}
}

// EnsureCSRFToken はセッションにCSRFトークンが無ければ生成して保存し、トークンを返します。
func (m *Manager) EnsureCSRFToken(c *gin.Context) (string, error) {
	session := sessions.Default(c)
	if token, ok := session.Get(sessionKeyCSRF).(string); ok && token != "" {
		return token, nil
	}

	token, err := generateToken()
	if err != nil {
		return "", err
	}
	session.Set(sessionKeyCSRF, token)
	if err := session.Save(); err != nil {
		return "", err
	}
	return token, nil
}

// VerifyCSRF はフォームの csrf_token（無ければ X-CSRF-Token ヘッダー）を検証するミドルウェアです。
func (m *Manager) VerifyCSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		if isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}

		session := sessions.Default(c)
		expected, ok := session.Get(sessionKeyCSRF).(string)
		if !ok || expected == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    "CSRF_MISSING",
				"message": "CSRF トークンが設定されていません",
			})
			return
		}

		received := c.PostForm(csrfField)
		if received == "" {
			received = c.GetHeader(csrfHeader)
		}
		if subtle.ConstantTimeCompare([]byte(expected), []byte(received)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    "CSRF_INVALID",
				"message": "CSRF トークンが一致しません",
			})
			return
		}

		c.Next()
	}
}

// Failure は作成フォームの検証失敗時にセッションへ退避した内容です。
type Failure struct {
	Messages []string // 検証エラーメッセージ
	Name     string   // 送信されたタイトル
	Data     string   // 送信された選択肢（改行区切りのまま）
}

// StoreFailure は検証エラーと送信内容をセッションに一時保存します。
// リダイレクト先のフォームで再表示するために使います。
// クッキーセッションは gob でシリアライズされるため、メッセージは改行結合の文字列として保存します。
func (m *Manager) StoreFailure(c *gin.Context, failure Failure) error {
	session := sessions.Default(c)
	session.Set(sessionKeyErrors, strings.Join(failure.Messages, "\n"))
	session.Set(sessionKeyName, failure.Name)
	session.Set(sessionKeyData, failure.Data)
	return session.Save()
}

// TakeFailure はセッションに退避した検証エラーを取り出し、セッションから削除します。
func (m *Manager) TakeFailure(c *gin.Context) Failure {
	session := sessions.Default(c)

	failure := Failure{}
	if joined, ok := session.Get(sessionKeyErrors).(string); ok && joined != "" {
		failure.Messages = strings.Split(joined, "\n")
	}
	if name, ok := session.Get(sessionKeyName).(string); ok {
		failure.Name = name
	}
	if data, ok := session.Get(sessionKeyData).(string); ok {
		failure.Data = data
	}

	if len(failure.Messages) > 0 || failure.Name != "" || failure.Data != "" {
		session.Delete(sessionKeyErrors)
		session.Delete(sessionKeyName)
		session.Delete(sessionKeyData)
		_ = session.Save()
	}
	return failure
}

// HasVoted は集計IDに対応する投票済みクッキーの有無を返します。
// クッキーを消せば再投票できるため、あくまで目安であってセキュリティ境界ではありません。
func (m *Manager) HasVoted(c *gin.Context, pollID string) bool {
	value, err := c.Cookie(votedCookiePrefix + pollID)
	return err == nil && value != ""
}

// MarkVoted は集計IDに対応する投票済みクッキーを設定します。
func (m *Manager) MarkVoted(c *gin.Context, pollID string) {
	maxAge := m.cfg.VotedCookieMaxAgeHours * 3600
	if maxAge <= 0 {
		maxAge = SessionMaxAgeSeconds()
	}
	secure := m.cfg.GinMode == gin.ReleaseMode
	c.SetCookie(votedCookiePrefix+pollID, "1", maxAge, "/", "", secure, true)
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}
