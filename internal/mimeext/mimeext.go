// Package mimeext maps stream MIME types onto file extensions.
package mimeext

import (
	"strings"
)

// DefaultExt is the extension used when the MIME type is empty.
const DefaultExt = "mp4"

// byBase lists MIME types whose extension differs from their subtype.
var byBase = map[string]string{
	"audio/mp4":  "m4a",
	"audio/m4a":  "m4a",
	"audio/webm": "webm",
	"video/ts":   "ts",
	"audio/ts":   "ts",
	"video/3gp":  "3gp",
	"video/flv":  "flv",
}

// FromMime returns the file extension (without dot) for a MIME type such as
// `audio/mp4; codecs="mp4a.40.2"`. Unknown types fall back to their
// lower-cased subtype.
func FromMime(mime string) string {
	base, _, _ := strings.Cut(mime, ";")
	base = strings.ToLower(strings.TrimSpace(base))
	if base == "" {
		return DefaultExt
	}
	if ext, ok := byBase[base]; ok {
		return ext
	}
	if _, sub, ok := strings.Cut(base, "/"); ok && sub != "" {
		return sub
	}
	return DefaultExt
}

// Normalize lower-cases ext and strips a leading dot.
func Normalize(ext string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
}
