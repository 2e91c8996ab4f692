package poll

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer はフォーム入力からHTMLを取り除きます。
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer はタグを一切許可しないポリシーの Sanitizer を作成します。
func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// Field は1フィールド分の入力をサニタイズします。
// bluemonday はエンティティをエスケープして返すため、プレーンテキストに戻してから保存します。
func (s *Sanitizer) Field(value string) string {
	cleaned := s.policy.Sanitize(value)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

// Lines は改行区切りの入力を行ごとにサニタイズして返します。
func (s *Sanitizer) Lines(value string) []string {
	raw := strings.Split(strings.ReplaceAll(value, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		lines = append(lines, s.Field(line))
	}
	return lines
}

// Draft は作成フォームの入力全体をサニタイズして Draft に変換します。
func (s *Sanitizer) Draft(name, data string) Draft {
	return Draft{
		Name: s.Field(name),
		Data: s.Lines(data),
	}
}
