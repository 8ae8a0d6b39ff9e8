package pdf

import (
	"errors"
	"testing"
)

func TestParsePageSelectionOrderAndDedup(t *testing.T) {
	// 3-5,2,3: 末尾の重複「3」は初出位置を動かさず捨てられる
	pages, err := parsePageSelection("3-5,2,3", 10)
	if err != nil {
		t.Fatalf("parsePageSelection returned error: %v", err)
	}
	assertPages(t, pages, []int{3, 4, 5, 2})
}

func TestParsePageSelectionDropsOutOfRange(t *testing.T) {
	// 8ページの文書では範囲トークン内の9は黙って捨てられる
	pages, err := parsePageSelection("1-3,5,7-9", 8)
	if err != nil {
		t.Fatalf("parsePageSelection returned error: %v", err)
	}
	assertPages(t, pages, []int{1, 2, 3, 5, 7, 8})
}

func TestParsePageSelectionInvalidRanges(t *testing.T) {
	cases := []struct {
		name string
		expr string
	}{
		{name: "descending", expr: "5-2"},
		{name: "non-numeric start", expr: "a-3"},
		{name: "non-numeric end", expr: "3-b"},
		{name: "open end", expr: "5-"},
		{name: "zero start", expr: "0-3"},
		{name: "valid tokens do not save the request", expr: "1,2,5-2"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parsePageSelection(tc.expr, 10)
			if err == nil {
				t.Fatalf("expected error for %q", tc.expr)
			}
			var apiErr *Error
			if !errors.As(err, &apiErr) || apiErr.Code != CodeInvalidRange {
				t.Fatalf("expected %s error, got %v", CodeInvalidRange, err)
			}
		})
	}
}

func TestParsePageSelectionLenientSingleTokens(t *testing.T) {
	// 単独トークンは範囲トークンと違い、不正でもリクエストを失敗させない
	pages, err := parsePageSelection("abc,2,99,0", 5)
	if err != nil {
		t.Fatalf("parsePageSelection returned error: %v", err)
	}
	assertPages(t, pages, []int{2})
}

func TestParsePageSelectionBareDashIsRangeToken(t *testing.T) {
	// 「-」を含むトークンは常に範囲として厳格に解釈される
	if _, err := parsePageSelection("1,-,2", 5); err == nil {
		t.Fatal("expected error for bare dash token")
	}
}

func TestParsePageSelectionEmptyTokensIgnored(t *testing.T) {
	pages, err := parsePageSelection(" 1 , ,  2,", 5)
	if err != nil {
		t.Fatalf("parsePageSelection returned error: %v", err)
	}
	assertPages(t, pages, []int{1, 2})
}

func TestParsePageSelectionWhitespaceInsideRange(t *testing.T) {
	pages, err := parsePageSelection("1 - 3", 5)
	if err != nil {
		t.Fatalf("parsePageSelection returned error: %v", err)
	}
	assertPages(t, pages, []int{1, 2, 3})
}

func TestParsePageSelectionAllOutOfRange(t *testing.T) {
	// すべて範囲外なら空の選択を返し、エラーにはしない（扱いは呼び出し側が決める）
	pages, err := parsePageSelection("7,8,9", 5)
	if err != nil {
		t.Fatalf("parsePageSelection returned error: %v", err)
	}
	if len(pages) != 0 {
		t.Fatalf("expected empty selection, got %v", pages)
	}
}

func assertPages(t *testing.T, got, want []int) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("unexpected pages: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pages[%d] = %d, want %d (got %v)", i, got[i], want[i], got)
		}
	}
}
