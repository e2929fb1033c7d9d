package textutil

import (
	"errors"
	"testing"

	"github.com/ytget/ytinfo/errs"
)

func TestBetween(t *testing.T) {
	tests := []struct {
		haystack, left, right string
		want                  string
	}{
		{"abc<X>123</X>def", "<X>", "</X>", "123"},
		{"abc<X>123</X>def<X>456</X>", "<X>", "</X>", "123"},
		{"abc123</X>def", "<X>", "</X>", ""},
		{"abc<X>123def", "<X>", "</X>", ""},
		{`video/mp4; codecs="avc1.42001E, mp4a.40.2"`, `codecs="`, `"`, "avc1.42001E, mp4a.40.2"},
		{"<X></X>", "<X>", "</X>", ""},
	}

	for _, tt := range tests {
		if got := Between(tt.haystack, tt.left, tt.right); got != tt.want {
			t.Errorf("Between(%q, %q, %q) = %q, want %q", tt.haystack, tt.left, tt.right, got, tt.want)
		}
	}
}

func TestCutAfterJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":1}garbage`, `{"a":1}`},
		{`[1,[2,3],4]xyz`, `[1,[2,3],4]`},
		{`{"a":"}"}rest`, `{"a":"}"}`},
		{`{"a":"\"}"}rest`, `{"a":"\"}"}`},
		{`{"a":{"b":[1,2]}};var x = 1;`, `{"a":{"b":[1,2]}}`},
		{`{}`, `{}`},
		{`{"path":"C:\\","n":1}tail`, `{"path":"C:\\","n":1}`},
		{`["\\\"]",[]]x`, `["\\\"]",[]]`},
	}

	for _, tt := range tests {
		got, err := CutAfterJSON(tt.in)
		if err != nil {
			t.Fatalf("CutAfterJSON(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("CutAfterJSON(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCutAfterJSONErrors(t *testing.T) {
	inputs := []string{
		``,
		`abc{"a":1}`,
		` {"a":1}`,
		`{"a":1`,
		`[1,[2,3]`,
		`{"a":"}`,
		`{"a":"\\"`,
	}

	for _, in := range inputs {
		_, err := CutAfterJSON(in)
		if err == nil {
			t.Fatalf("CutAfterJSON(%q) expected error", in)
		}
		if !errors.Is(err, errs.ErrMalformed) {
			t.Fatalf("CutAfterJSON(%q) error %v should be malformed", in, err)
		}
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain text trimmed",
			in:   "  Video unavailable \n",
			want: "Video unavailable",
		},
		{
			name: "line breaks",
			in:   "first line <br /> second line<br>third",
			want: "first line\nsecond line\nthird",
		},
		{
			name: "paragraphs",
			in:   "<p>one</p> <p class=\"x\">two</p>",
			want: "one\ntwo",
		},
		{
			name: "redirect link",
			in:   `See <a href="/redirect?event=video&q=https%3A%2F%2Fexample.com%2Fpage&v=1">example.com/page</a> now`,
			want: "See https://example.com/page now",
		},
		{
			name: "relative link",
			in:   `Watch <a href="/watch?v=dQw4w9WgXcQ">here</a>`,
			want: "Watch https://youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			name: "absolute link",
			in:   `<a href="https://support.google.com/youtube/answer/2802167">Learn more</a>`,
			want: "https://support.google.com/youtube/answer/2802167",
		},
		{
			name: "other tags removed",
			in:   `This video contains content from <b>UMG</b>, who has blocked it on copyright grounds.`,
			want: "This video contains content from UMG, who has blocked it on copyright grounds.",
		},
		{
			name: "anchor without href keeps text",
			in:   `<a name="x">anchor</a> text`,
			want: "anchor text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripHTML(tt.in); got != tt.want {
				t.Fatalf("StripHTML(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
