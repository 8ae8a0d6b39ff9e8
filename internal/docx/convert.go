// Package docx はWord文書（.docx）をHTMLフラグメントに変換します。
//
// 変換対象は本文の段落・文字修飾（太字/斜体/下線）・改行・見出しスタイル・表のみで、
// 画像やスタイル定義の再現はしません。出力はシェルHTMLに埋め込む前提のフラグメントで、
// レンダラーに渡す前に許可リスト方式でサニタイズされます。
package docx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const documentEntry = "word/document.xml"

// Converter はdocxのHTML変換器です。ステートレスで並行利用できます。
type Converter struct {
	policy *bluemonday.Policy
}

// NewConverter は Converter を作成します。
func NewConverter() *Converter {
	return &Converter{policy: fragmentPolicy()}
}

// ConvertToHTML はdocxのバイト列を読み、サニタイズ済みHTMLフラグメントを返します。
func (c *Converter) ConvertToHTML(r io.ReaderAt, size int64) (string, error) {
	archive, err := zip.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("not a docx archive: %w", err)
	}

	var entry *zip.File
	for _, f := range archive.File {
		if f.Name == documentEntry {
			entry = f
			break
		}
	}
	if entry == nil {
		return "", fmt.Errorf("%s not found in archive", documentEntry)
	}

	rc, err := entry.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", documentEntry, err)
	}
	defer rc.Close()

	fragment, err := convertDocument(rc)
	if err != nil {
		return "", err
	}
	return c.policy.Sanitize(fragment), nil
}

// convertDocument は document.xml をストリーム走査してHTMLを組み立てます。
// 段落と表はサブツリーごと消費するため、表内の段落が二重に処理されることはありません。
func convertDocument(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var b strings.Builder

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("invalid document xml: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "p":
			if err := writeParagraph(dec, &b); err != nil {
				return "", err
			}
		case "tbl":
			if err := writeTable(dec, &b); err != nil {
				return "", err
			}
		}
	}

	return b.String(), nil
}

func writeParagraph(dec *xml.Decoder, b *strings.Builder) error {
	var inner strings.Builder
	style := ""

	for {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("invalid paragraph: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "pPr":
				s, err := readParagraphStyle(dec)
				if err != nil {
					return err
				}
				style = s
			case "r":
				if err := writeRun(dec, &inner); err != nil {
					return err
				}
			case "hyperlink":
				// リンク先の解決はしないが、リンク内のテキストは本文として残す
				continue
			default:
				if err := dec.Skip(); err != nil {
					return fmt.Errorf("invalid paragraph: %w", err)
				}
			}
		case xml.EndElement:
			if t.Name.Local == "p" {
				tag := "p"
				if level, ok := headingLevel(style); ok {
					tag = fmt.Sprintf("h%d", level)
				}
				b.WriteString("<" + tag + ">" + inner.String() + "</" + tag + ">\n")
				return nil
			}
		}
	}
}

func writeRun(dec *xml.Decoder, b *strings.Builder) error {
	var text strings.Builder
	var bold, italic, underline bool

	for {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("invalid run: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "rPr":
				bold, italic, underline, err = readRunProps(dec)
				if err != nil {
					return err
				}
			case "t":
				var s string
				if err := dec.DecodeElement(&s, &t); err != nil {
					return fmt.Errorf("invalid run text: %w", err)
				}
				text.WriteString(html.EscapeString(s))
			case "br", "cr":
				text.WriteString("<br>")
			case "tab":
				text.WriteString("\t")
			default:
				if err := dec.Skip(); err != nil {
					return fmt.Errorf("invalid run: %w", err)
				}
			}
		case xml.EndElement:
			if t.Name.Local == "r" {
				s := text.String()
				if underline {
					s = "<u>" + s + "</u>"
				}
				if italic {
					s = "<em>" + s + "</em>"
				}
				if bold {
					s = "<strong>" + s + "</strong>"
				}
				b.WriteString(s)
				return nil
			}
		}
	}
}

// readRunProps は rPr サブツリーから文字修飾を読み取ります。
// w:b / w:i は w:val="false" 等で明示的に無効化されることがあります。
func readRunProps(dec *xml.Decoder) (bold, italic, underline bool, err error) {
	for {
		tok, tokErr := dec.Token()
		if tokErr != nil {
			return false, false, false, fmt.Errorf("invalid run properties: %w", tokErr)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "b":
				bold = toggleEnabled(t)
			case "i":
				italic = toggleEnabled(t)
			case "u":
				underline = attrValue(t, "val") != "none"
			default:
				if err := dec.Skip(); err != nil {
					return false, false, false, fmt.Errorf("invalid run properties: %w", err)
				}
			}
		case xml.EndElement:
			if t.Name.Local == "rPr" {
				return bold, italic, underline, nil
			}
		}
	}
}

func readParagraphStyle(dec *xml.Decoder) (string, error) {
	style := ""
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", fmt.Errorf("invalid paragraph properties: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "pStyle":
				style = attrValue(t, "val")
			case "rPr":
				if err := dec.Skip(); err != nil {
					return "", fmt.Errorf("invalid paragraph properties: %w", err)
				}
			}
		case xml.EndElement:
			if t.Name.Local == "pPr" {
				return style, nil
			}
		}
	}
}

func writeTable(dec *xml.Decoder, b *strings.Builder) error {
	b.WriteString("<table>")
	for {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("invalid table: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tr":
				b.WriteString("<tr>")
			case "tc":
				cell, err := readCell(dec)
				if err != nil {
					return err
				}
				b.WriteString("<td>" + cell + "</td>")
			case "tblPr", "tblGrid", "trPr":
				if err := dec.Skip(); err != nil {
					return fmt.Errorf("invalid table: %w", err)
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "tr":
				b.WriteString("</tr>")
			case "tbl":
				b.WriteString("</table>\n")
				return nil
			}
		}
	}
}

func readCell(dec *xml.Decoder) (string, error) {
	var cb strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", fmt.Errorf("invalid table cell: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				if err := writeParagraph(dec, &cb); err != nil {
					return "", err
				}
			case "tbl":
				if err := writeTable(dec, &cb); err != nil {
					return "", err
				}
			default:
				if err := dec.Skip(); err != nil {
					return "", fmt.Errorf("invalid table cell: %w", err)
				}
			}
		case xml.EndElement:
			if t.Name.Local == "tc" {
				return cb.String(), nil
			}
		}
	}
}

// toggleEnabled は w:b / w:i のような切替要素が有効かを判定します。
func toggleEnabled(el xml.StartElement) bool {
	switch attrValue(el, "val") {
	case "false", "0", "none":
		return false
	default:
		return true
	}
}

func attrValue(el xml.StartElement, name string) string {
	for _, attr := range el.Attr {
		if attr.Name.Local == name {
			return attr.Value
		}
	}
	return ""
}

// headingLevel は組み込みの見出しスタイル名をHTMLの見出しレベルに対応付けます。
func headingLevel(style string) (int, bool) {
	const prefix = "Heading"
	if len(style) != len(prefix)+1 || !strings.HasPrefix(style, prefix) {
		return 0, false
	}
	level := int(style[len(prefix)] - '0')
	if level < 1 || level > 6 {
		return 0, false
	}
	return level, true
}
