package docx

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
)

// docxArchive は word/document.xml だけを持つ最小のアーカイブを生成します。
func docxArchive(t *testing.T, bodyXML string) ([]byte, int64) {
	t.Helper()
	document := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>` + bodyXML + `</w:body>
</w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("failed to create entry: %v", err)
	}
	if _, err := w.Write([]byte(document)); err != nil {
		t.Fatalf("failed to write entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return buf.Bytes(), int64(buf.Len())
}

func convert(t *testing.T, bodyXML string) string {
	t.Helper()
	data, size := docxArchive(t, bodyXML)
	got, err := NewConverter().ConvertToHTML(bytes.NewReader(data), size)
	if err != nil {
		t.Fatalf("ConvertToHTML returned error: %v", err)
	}
	return got
}

func TestConvertParagraph(t *testing.T) {
	got := convert(t, `<w:p><w:r><w:t>こんにちは、世界</w:t></w:r></w:p>`)
	if !strings.Contains(got, "<p>こんにちは、世界</p>") {
		t.Errorf("paragraph not converted: %q", got)
	}
}

func TestConvertRunFormatting(t *testing.T) {
	got := convert(t, `<w:p>
<w:r><w:rPr><w:b/></w:rPr><w:t>太字</w:t></w:r>
<w:r><w:rPr><w:i/></w:rPr><w:t>斜体</w:t></w:r>
<w:r><w:rPr><w:u w:val="single"/></w:rPr><w:t>下線</w:t></w:r>
</w:p>`)

	for _, want := range []string{"<strong>太字</strong>", "<em>斜体</em>", "<u>下線</u>"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
}

func TestConvertExplicitlyDisabledToggle(t *testing.T) {
	// w:val="false" で無効化された太字は装飾しない
	got := convert(t, `<w:p><w:r><w:rPr><w:b w:val="false"/></w:rPr><w:t>普通</w:t></w:r></w:p>`)
	if strings.Contains(got, "<strong>") {
		t.Errorf("disabled bold was rendered: %q", got)
	}
}

func TestConvertHeading(t *testing.T) {
	got := convert(t, `<w:p><w:pPr><w:pStyle w:val="Heading2"/></w:pPr><w:r><w:t>章タイトル</w:t></w:r></w:p>`)
	if !strings.Contains(got, "<h2>章タイトル</h2>") {
		t.Errorf("heading not converted: %q", got)
	}
}

func TestConvertUnknownStyleFallsBackToParagraph(t *testing.T) {
	got := convert(t, `<w:p><w:pPr><w:pStyle w:val="Quote"/></w:pPr><w:r><w:t>引用</w:t></w:r></w:p>`)
	if !strings.Contains(got, "<p>引用</p>") {
		t.Errorf("unknown style should fall back to <p>: %q", got)
	}
}

func TestConvertLineBreak(t *testing.T) {
	got := convert(t, `<w:p><w:r><w:t>1行目</w:t><w:br/><w:t>2行目</w:t></w:r></w:p>`)
	if !strings.Contains(got, "1行目<br") || !strings.Contains(got, "2行目") {
		t.Errorf("line break not converted: %q", got)
	}
}

func TestConvertTable(t *testing.T) {
	got := convert(t, `<w:tbl>
<w:tr>
<w:tc><w:p><w:r><w:t>A1</w:t></w:r></w:p></w:tc>
<w:tc><w:p><w:r><w:t>B1</w:t></w:r></w:p></w:tc>
</w:tr>
</w:tbl>`)

	for _, want := range []string{"<table>", "<tr>", "<td>", "A1", "B1"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
}

func TestConvertHyperlinkKeepsText(t *testing.T) {
	got := convert(t, `<w:p><w:hyperlink><w:r><w:t>リンク文字列</w:t></w:r></w:hyperlink></w:p>`)
	if !strings.Contains(got, "リンク文字列") {
		t.Errorf("hyperlink text dropped: %q", got)
	}
	if strings.Contains(got, "<a") {
		t.Errorf("anchor tag should not be emitted: %q", got)
	}
}

func TestConvertEscapesAndSanitizes(t *testing.T) {
	// 本文テキストに紛れたマークアップはタグとして生かさない
	got := convert(t, `<w:p><w:r><w:t>&lt;script&gt;alert(1)&lt;/script&gt;</w:t></w:r></w:p>`)
	if strings.Contains(got, "<script>") {
		t.Fatalf("script tag survived sanitization: %q", got)
	}
	if !strings.Contains(got, "alert(1)") {
		t.Errorf("text content dropped: %q", got)
	}
}

func TestConvertRejectsNonArchive(t *testing.T) {
	data := []byte("this is not a zip file")
	if _, err := NewConverter().ConvertToHTML(bytes.NewReader(data), int64(len(data))); err == nil {
		t.Fatal("expected error for non-archive input")
	}
}

func TestConvertRejectsMissingDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/other.xml")
	if err != nil {
		t.Fatalf("failed to create entry: %v", err)
	}
	if _, err := w.Write([]byte("<x/>")); err != nil {
		t.Fatalf("failed to write entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}

	if _, err := NewConverter().ConvertToHTML(bytes.NewReader(buf.Bytes()), int64(buf.Len())); err == nil {
		t.Fatal("expected error when word/document.xml is missing")
	}
}
