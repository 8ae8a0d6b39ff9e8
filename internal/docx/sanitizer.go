package docx

import "github.com/microcosm-cc/bluemonday"

// fragmentPolicy は変換済みフラグメント用の許可リストポリシーを構築します。
// 変換器が生成しうるタグだけを通し、それ以外（script等、入力文書に紛れた
// テキスト由来のマークアップを含む）はすべて除去します。
func fragmentPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"p", "br",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"strong", "em", "u",
		"table", "tr", "td", "th",
	)
	return p
}
