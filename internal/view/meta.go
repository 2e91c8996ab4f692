// Package view はテンプレート描画用の表示ヘルパーを提供します。
package view

import (
	"html/template"
	"strings"
)

const (
	siteName           = "syukei"
	defaultDescription = "選択肢を入力してリンクを共有するだけの、かんたん集計フォーム。"
)

// Meta はページごとのSEOメタデータを表します。
type Meta struct {
	Title       string
	Description string
}

// HomeMeta はトップページのメタデータを返します。
func HomeMeta() Meta {
	return Meta{
		Title:       siteName + " - かんたん集計フォーム",
		Description: defaultDescription,
	}
}

// FormMeta は投票ページのメタデータを返します。
func FormMeta(pollName string) Meta {
	return Meta{
		Title:       pollName + " | " + siteName,
		Description: "「" + pollName + "」に投票する - " + defaultDescription,
	}
}

// ResultMeta は結果ページのメタデータを返します。
func ResultMeta(pollName string) Meta {
	return Meta{
		Title:       pollName + " の結果 | " + siteName,
		Description: "「" + pollName + "」の集計結果 - " + defaultDescription,
	}
}

// StaticMeta は規約・LPなど固定ページのメタデータを返します。
func StaticMeta(title string) Meta {
	return Meta{
		Title:       title + " | " + siteName,
		Description: defaultDescription,
	}
}

// FuncMap はテンプレートに登録する表示用関数を返します。
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"barPercent": BarPercent,
		"joinLines":  JoinLines,
	}
}

// BarPercent は得票バーの幅（%）を計算します。total が 0 の場合は 0 を返します。
func BarPercent(count, total int) int {
	if total <= 0 {
		return 0
	}
	return count * 100 / total
}

// JoinLines は選択肢スライスをテキストエリア再表示用に改行で結合します。
func JoinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
