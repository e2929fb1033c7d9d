package formats

import (
	"context"
	"encoding/xml"
	"errors"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/ytget/ytinfo/client"
	"github.com/ytget/ytinfo/errs"
	"github.com/ytget/ytinfo/internal/logger"
	"github.com/ytget/ytinfo/types"
)

// manifestBase resolves relative manifest locations.
const manifestBase = "https://www.youtube.com/watch?v="

var (
	httpURLRe = regexp.MustCompile(`https?://`)
	itagRe    = regexp.MustCompile(`/itag/(\d+)/`)
)

// FetchDASH downloads and parses a DASH manifest.
func FetchDASH(ctx context.Context, f client.Fetcher, manifestURL string) (map[int]types.Format, error) {
	body, err := f.GetText(ctx, manifestURL, nil)
	if err != nil {
		return nil, err
	}
	return ParseDASH(body, manifestURL)
}

// ParseDASH returns one format per Representation element, keyed by its id
// attribute. The url is the Representation's BaseURL text, or the manifest
// URL itself when there is none.
func ParseDASH(body, manifestURL string) (map[int]types.Format, error) {
	log := logger.WithComponent(logger.ComponentFormat)
	dec := xml.NewDecoder(strings.NewReader(body))
	dec.Strict = false

	out := make(map[int]types.Format)
	var (
		sawRoot bool
		rep     *types.Format
		inBase  bool
		base    strings.Builder
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errs.Malformed("Error parsing DASH manifest: "+err.Error(), err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			sawRoot = true
			switch t.Name.Local {
			case "Representation":
				id := xmlAttr(t, "id", "ID")
				itag, err := strconv.Atoi(strings.TrimSpace(id))
				if err != nil {
					log.Debug("Skipping representation without numeric id", map[string]interface{}{"id": id})
					rep = nil
					continue
				}
				rep = &types.Format{Itag: itag}
			case "BaseURL":
				if rep != nil && rep.URL == "" {
					inBase = true
					base.Reset()
				}
			}
		case xml.CharData:
			if inBase {
				base.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "BaseURL":
				if inBase && rep != nil {
					rep.URL = strings.TrimSpace(base.String())
				}
				inBase = false
			case "Representation":
				if rep != nil {
					if rep.URL == "" {
						rep.URL = manifestURL
					}
					out[rep.Itag] = *rep
				}
				rep = nil
			}
		}
	}

	if !sawRoot {
		return nil, errs.Malformed("Error parsing DASH manifest: no root element", nil)
	}
	log.Trace("Parsed DASH manifest", map[string]interface{}{"formats": len(out)})
	return out, nil
}

func xmlAttr(el xml.StartElement, names ...string) string {
	for _, name := range names {
		for _, a := range el.Attr {
			if a.Name.Local == name {
				return a.Value
			}
		}
	}
	return ""
}

// FetchHLS downloads and parses an HLS master playlist. Relative locations are
// resolved against the watch page URL.
func FetchHLS(ctx context.Context, f client.Fetcher, manifestURL string) (map[int]types.Format, error) {
	base, _ := url.Parse(manifestBase)
	ref, err := url.Parse(manifestURL)
	if err != nil {
		return nil, errs.Malformed("Error parsing HLS manifest URL: "+err.Error(), err)
	}
	body, err := f.GetText(ctx, base.ResolveReference(ref).String(), nil)
	if err != nil {
		return nil, err
	}
	return ParseHLS(body), nil
}

// ParseHLS keeps playlist lines holding an http(s) URL and keys each by the
// digits of its /itag/N/ path segment. Lines without such a segment are
// skipped.
func ParseHLS(body string) map[int]types.Format {
	lines := lo.Filter(strings.Split(body, "\n"), func(line string, _ int) bool {
		return httpURLRe.MatchString(line)
	})

	out := make(map[int]types.Format, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		m := itagRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		itag, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		out[itag] = types.Format{Itag: itag, URL: line}
	}
	return out
}
