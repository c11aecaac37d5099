package format

import "testing"

func TestEscapeMarkdown(t *testing.T) {
	cases := []struct {
		in      string
		version int
		want    string
	}{
		{"about_me", MarkdownV1, `about\_me`},
		{"*bold* [x]", MarkdownV1, `\*bold\* \[x]`},
		{"plain", MarkdownV1, "plain"},
		{"a.b-c!", MarkdownV2, `a\.b\-c\!`},
		{`x\y`, MarkdownV2, `x\\y`},
	}
	for _, tc := range cases {
		got, err := EscapeMarkdown(tc.in, tc.version)
		if err != nil {
			t.Fatalf("EscapeMarkdown(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("EscapeMarkdown(%q, %d) = %q, want %q", tc.in, tc.version, got, tc.want)
		}
	}
	if _, err := EscapeMarkdown("x", 3); err == nil {
		t.Fatalf("expected error for unknown version")
	}
}
