// Package web は埋め込みのHTMLテンプレートを提供します。
// embed.FS で持つことで、実行時の作業ディレクトリやテストの起動位置に依存しません。
package web

import "embed"

//go:embed templates/*.html
var Templates embed.FS
