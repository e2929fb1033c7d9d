package cipher

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/ytget/ytinfo/client"
	"github.com/ytget/ytinfo/internal/jscache"
	"github.com/ytget/ytinfo/internal/logger"
	"github.com/ytget/ytinfo/types"
)

// Decipherer turns a raw format list into formats with playable URLs,
// keyed by itag.
type Decipherer interface {
	Decipher(ctx context.Context, formats []types.Format, playerURL string) (map[int]types.Format, error)
}

const playerJSTTL = 10 * time.Minute

// DefaultStoreTTL bounds how long a player script kept in a Store is reused.
const DefaultStoreTTL = 24 * time.Hour

type playerJSCacheEntry struct {
	script *script
	expAt  time.Time
}

// JSDecipherer deciphers with the functions found in the player script.
// Compiled scripts are kept in memory for ten minutes. When Store is set,
// downloaded script bodies are also kept there for StoreTTL and reused
// before fetching.
type JSDecipherer struct {
	Fetcher  client.Fetcher
	Now      func() time.Time
	Store    jscache.Store
	StoreTTL time.Duration

	mu    sync.Mutex
	cache map[string]playerJSCacheEntry
}

// New returns a JSDecipherer fetching player scripts through f.
func New(f client.Fetcher) *JSDecipherer {
	return &JSDecipherer{Fetcher: f, Now: time.Now}
}

// Decipher resolves every format. Formats with a plain URL and no n
// parameter pass through unchanged; the player script is only fetched when
// some format needs it.
func (d *JSDecipherer) Decipher(ctx context.Context, formats []types.Format, playerURL string) (map[int]types.Format, error) {
	log := logger.WithComponent(logger.ComponentCipher)
	out := make(map[int]types.Format, len(formats))

	if !lo.SomeBy(formats, needsPlayer) {
		for _, f := range formats {
			out[f.Itag] = f
		}
		return out, nil
	}
	if playerURL == "" {
		if lo.SomeBy(formats, hasCipher) {
			return nil, NewError(ErrCodePlayerJSNotFound, "player script url missing")
		}
		for _, f := range formats {
			out[f.Itag] = f
		}
		return out, nil
	}

	s, err := d.load(ctx, playerURL)
	if err != nil {
		return nil, err
	}
	for _, f := range formats {
		resolved, err := s.resolve(f)
		if err != nil {
			return nil, err
		}
		out[f.Itag] = resolved
	}
	log.Debug("Deciphered formats", map[string]interface{}{
		"player": playerURL,
		"count":  len(out),
	})
	return out, nil
}

func hasCipher(f types.Format) bool {
	return f.SignatureCipher != "" || f.Cipher != ""
}

func needsPlayer(f types.Format) bool {
	if hasCipher(f) {
		return true
	}
	u, err := url.Parse(f.URL)
	return err == nil && u.Query().Get("n") != ""
}

func (d *JSDecipherer) load(ctx context.Context, playerURL string) (*script, error) {
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}

	d.mu.Lock()
	entry, ok := d.cache[playerURL]
	d.mu.Unlock()
	if ok && now().Before(entry.expAt) {
		return entry.script, nil
	}

	body, err := d.fetch(ctx, playerURL)
	if err != nil {
		return nil, err
	}
	s, err := compile(body)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	if d.cache == nil {
		d.cache = make(map[string]playerJSCacheEntry)
	}
	d.cache[playerURL] = playerJSCacheEntry{script: s, expAt: now().Add(playerJSTTL)}
	d.mu.Unlock()
	return s, nil
}

// fetch returns the player script body from Store or the network.
func (d *JSDecipherer) fetch(ctx context.Context, playerURL string) (string, error) {
	if d.Store != nil {
		if e, ok := d.Store.Get(playerURL); ok {
			logger.WithComponent(logger.ComponentCipher).Trace("Player script from store", map[string]interface{}{
				"player": playerURL,
			})
			return e.Body, nil
		}
	}

	body, err := d.Fetcher.GetText(ctx, playerURL, nil)
	if err != nil {
		return "", wrapError(ErrCodePlayerJSDownload, "failed to download player script", err)
	}
	if d.Store != nil {
		ttl := d.StoreTTL
		if ttl <= 0 {
			ttl = DefaultStoreTTL
		}
		now := time.Now
		if d.Now != nil {
			now = d.Now
		}
		d.Store.Set(playerURL, jscache.Entry{Body: body, ExpiresAt: now().Add(ttl)})
	}
	return body, nil
}

// script holds what was extracted from one player script.
type script struct {
	steps []step
	sig   string
	n     string
}

func compile(js string) (*script, error) {
	log := logger.WithComponent(logger.ComponentCipher)

	fn, helper, calls, err := signatureSource(js)
	if err != nil {
		return nil, err
	}
	s := &script{sig: "(function(){" + helper + "return " + fn + ";})()"}
	if steps, err := parseSteps(helper, calls); err == nil {
		s.steps = steps
	} else {
		log.Debug("Step parser unavailable, using JS runtime", map[string]interface{}{"error": err.Error()})
	}

	n, err := nSource(js)
	if err != nil {
		log.Debug("n function not extracted", map[string]interface{}{"error": err.Error()})
	}
	s.n = n
	return s, nil
}

func (s *script) signature(in string) (string, error) {
	if len(s.steps) > 0 {
		return applySteps(s.steps, in), nil
	}
	out, err := evalJS(s.sig, in)
	if err != nil {
		if IsTimeout(err) {
			return "", err
		}
		return "", wrapError(ErrCodeSignatureDecipher, "signature function failed", err)
	}
	return out, nil
}

func (s *script) transformN(in string) string {
	if s.n == "" {
		return in
	}
	out, err := evalJS(s.n, in)
	if err != nil {
		logger.WithComponent(logger.ComponentCipher).Debug("n transform failed, keeping original", map[string]interface{}{
			"error": err.Error(),
		})
		return in
	}
	return out
}

// resolve rebuilds the playable URL of one format.
func (s *script) resolve(f types.Format) (types.Format, error) {
	raw := f.SignatureCipher
	if raw == "" {
		raw = f.Cipher
	}
	if raw != "" {
		args, err := url.ParseQuery(raw)
		if err != nil {
			return f, wrapError(ErrCodeSignatureNotFound, "unparsable cipher", err)
		}
		base := args.Get("url")
		if base == "" {
			return f, NewError(ErrCodeSignatureNotFound, "cipher has no url", f.Itag)
		}
		u, err := url.Parse(base)
		if err != nil {
			return f, wrapError(ErrCodeSignatureNotFound, "invalid cipher url", err)
		}
		if sig := args.Get("s"); sig != "" {
			plain, err := s.signature(sig)
			if err != nil {
				return f, err
			}
			param := args.Get("sp")
			if param == "" {
				param = "signature"
			}
			q := u.Query()
			q.Set(param, plain)
			u.RawQuery = q.Encode()
		}
		f.URL = u.String()
		f.SignatureCipher = ""
		f.Cipher = ""
	}

	if strings.TrimSpace(f.URL) == "" {
		return f, nil
	}
	u, err := url.Parse(f.URL)
	if err != nil {
		return f, nil
	}
	q := u.Query()
	if n := q.Get("n"); n != "" {
		q.Set("n", s.transformN(n))
		u.RawQuery = q.Encode()
		f.URL = u.String()
	}
	return f, nil
}
