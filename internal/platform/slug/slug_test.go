package slug_test

import (
	"testing"

	"yomite/internal/platform/slug"
)

func TestMake(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"  Practice Run #3 ": "practice-run-3",
		"むすめふさほせ 練習":         "むすめふさほせ-練習",
		"---":                "untitled",
		"":                   "untitled",
	}
	for in, want := range cases {
		if got := slug.Make(in); got != want {
			t.Fatalf("Make(%q) = %q, want %q", in, got, want)
		}
	}
}
