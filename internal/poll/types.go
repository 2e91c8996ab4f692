// Package poll は集計（syukei）データのライフサイクル管理機能を提供します。
package poll

import "errors"

// Poll は1つの集計を表します。1集計につき1つのJSONファイルとして保存されます。
type Poll struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Data      []string       `json:"data"`
	CreatedAt int64          `json:"created_at"` // エポックミリ秒
	Votes     map[string]int `json:"votes,omitempty"`
}

// Draft は作成フォームから受け取った未検証の入力を表します。
type Draft struct {
	Name string   // 集計タイトル
	Data []string // 選択肢（正規化前）
}

// TallyEntry は表示用に整列された1選択肢分の得票を表します。
type TallyEntry struct {
	Option string `json:"option"`
	Count  int    `json:"count"`
}

// エラーコード一覧。
const (
	CodeValidation  = "VALIDATION_ERROR"
	CodeNotFound    = "POLL_NOT_FOUND"
	CodeCorruptData = "CORRUPT_DATA"
)

// Error は集計処理のエラーを表します。
type Error struct {
	Code    string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Code + ": " + e.Message + ": " + e.cause.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func newError(code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// IsNotFound は集計ファイルが存在しないエラーかどうかを判定します。
func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

// IsValidation は入力検証エラーかどうかを判定します。
func IsValidation(err error) bool {
	return hasCode(err, CodeValidation)
}

func hasCode(err error, code string) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Code == code
}
