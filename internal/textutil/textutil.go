// Package textutil holds the small string parsers used to pull configuration
// out of upstream HTML and text responses.
package textutil

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ytget/ytinfo/errs"
)

// Between returns the text between the first left and the first right that
// follows it. It returns "" when either delimiter is missing.
func Between(haystack, left, right string) string {
	_, after, ok := strings.Cut(haystack, left)
	if !ok {
		return ""
	}
	inner, _, ok := strings.Cut(after, right)
	if !ok {
		return ""
	}
	return inner
}

// CutAfterJSON returns the leading JSON object or array of mixed, dropping
// whatever follows its closing bracket. Only the opening bracket type is
// counted; brackets inside string literals, escapes included, are ignored.
func CutAfterJSON(mixed string) (string, error) {
	if mixed == "" {
		return "", errs.Malformed("can't cut unsupported JSON (need to begin with [ or {) but got empty input", nil)
	}

	var open, close byte
	switch mixed[0] {
	case '[':
		open, close = '[', ']'
	case '{':
		open, close = '{', '}'
	default:
		return "", errs.Malformed(fmt.Sprintf("can't cut unsupported JSON (need to begin with [ or {) but got: %c", mixed[0]), nil)
	}

	inString, escaped := false, false
	depth := 0
	for i := 0; i < len(mixed); i++ {
		c := mixed[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
			continue
		}
		switch c {
		case open:
			depth++
		case close:
			depth--
		}
		if depth == 0 {
			return mixed[:i+1], nil
		}
	}

	return "", errs.Malformed("can't cut unsupported JSON (no matching closing bracket found)", nil)
}

const youtubeBase = "https://youtube.com/"

// StripHTML converts an upstream HTML fragment to plain text. Line breaks
// become spaces, <br> and paragraph boundaries become newlines, links are
// replaced by their target and every other tag is dropped.
func StripHTML(fragment string) string {
	fragment = strings.NewReplacer("\n", " ", "\r", " ").Replace(fragment)
	toks := tokenize(fragment)

	var buf []byte
	skipSpace := false
	for i := 0; i < len(toks); i++ {
		tok := toks[i]
		switch tok.Type {
		case html.TextToken:
			text := tok.Data
			if skipSpace {
				text = strings.TrimLeft(text, " \t\f\v\n")
				skipSpace = text == ""
			}
			buf = append(buf, text...)

		case html.StartTagToken, html.SelfClosingTagToken:
			switch tok.DataAtom {
			case atom.Br:
				buf = append(trimRightSpace(buf), '\n')
				skipSpace = true
			case atom.A:
				if target, ok := linkTarget(tok); ok {
					buf = append(buf, target...)
					i = anchorEnd(toks, i)
					skipSpace = false
				}
			}

		case html.EndTagToken:
			if tok.DataAtom == atom.P {
				if j, ok := nextParagraph(toks, i); ok {
					buf = append(buf, '\n')
					i = j
				}
			}
		}
	}

	return strings.TrimSpace(string(buf))
}

func tokenize(s string) []html.Token {
	z := html.NewTokenizer(strings.NewReader(s))
	var toks []html.Token
	for {
		if z.Next() == html.ErrorToken {
			return toks
		}
		toks = append(toks, z.Token())
	}
}

func trimRightSpace(b []byte) []byte {
	return []byte(strings.TrimRight(string(b), " \t\f\v\n"))
}

// nextParagraph reports the index of a <p> start tag that follows the </p> at
// i, separated only by whitespace.
func nextParagraph(toks []html.Token, i int) (int, bool) {
	for j := i + 1; j < len(toks); j++ {
		t := toks[j]
		if t.Type == html.TextToken && strings.TrimSpace(t.Data) == "" {
			continue
		}
		if t.Type == html.StartTagToken && t.DataAtom == atom.P {
			return j, true
		}
		return 0, false
	}
	return 0, false
}

// anchorEnd returns the index of the </a> closing the anchor opened at i, or
// the last index when it is never closed.
func anchorEnd(toks []html.Token, i int) int {
	for j := i + 1; j < len(toks); j++ {
		if toks[j].Type == html.EndTagToken && toks[j].DataAtom == atom.A {
			return j
		}
	}
	return len(toks) - 1
}

// linkTarget resolves the href of an anchor. Redirect links yield their
// decoded q parameter, absolute and root-relative links are resolved against
// the site root.
func linkTarget(tok html.Token) (string, bool) {
	var href string
	for _, a := range tok.Attr {
		if a.Key == "href" {
			href = a.Val
			break
		}
	}
	if href == "" {
		return "", false
	}

	if strings.HasPrefix(href, "/redirect") {
		if q, ok := redirectTarget(href); ok {
			return q, true
		}
	}

	if strings.HasPrefix(href, "http") || strings.HasPrefix(href, "/") {
		base, _ := url.Parse(youtubeBase)
		ref, err := url.Parse(href)
		if err != nil {
			return href, true
		}
		return base.ResolveReference(ref).String(), true
	}
	return "", false
}

func redirectTarget(href string) (string, bool) {
	_, query, ok := strings.Cut(href, "?")
	if !ok {
		return "", false
	}
	for _, pair := range strings.Split(query, "&") {
		v, found := strings.CutPrefix(pair, "q=")
		if !found {
			continue
		}
		decoded, err := url.PathUnescape(v)
		if err != nil {
			return v, true
		}
		return decoded, true
	}
	return "", false
}
