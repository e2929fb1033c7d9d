package cipher

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/ytget/ytinfo/errs"
	"github.com/ytget/ytinfo/internal/jscache"
	"github.com/ytget/ytinfo/types"
)

const playerJS = `var _yt_player={};(function(g){
var Xy={AB:function(a){a.reverse()},
cd:function(a,b){a.splice(0,b)},
EF:function(a,b){var c=a[0];a[0]=a[b%a.length];a[b%a.length]=c}};
var sigFn=function(a){a=a.split("");Xy.AB(a,1);Xy.cd(a,2);Xy.EF(a,3);return a.join("")};
var nFn=function(a){var b=a.split("");b.reverse();return b.join("")+"_ok"};
var route=function(c){var b;(b=c.get("n"))&&(b=nFn(b),c.set("n",b))};
})(_yt_player);`

// "abcdefgh" reversed, spliced by 2 and swapped with index 3.
const wantSig = "cedfba"

type stubFetcher struct {
	body  string
	err   error
	calls int
}

func (s *stubFetcher) GetText(_ context.Context, _ string, _ http.Header) (string, error) {
	s.calls++
	return s.body, s.err
}

func TestSignatureSourceAndSteps(t *testing.T) {
	fn, helper, calls, err := signatureSource(playerJS)
	if err != nil {
		t.Fatalf("signatureSource: %v", err)
	}
	if helper[:7] != "var Xy=" {
		t.Fatalf("helper = %q", helper)
	}
	if fn[:len("function(a)")] != "function(a)" {
		t.Fatalf("fn = %q", fn)
	}
	steps, err := parseSteps(helper, calls)
	if err != nil {
		t.Fatalf("parseSteps: %v", err)
	}
	want := []step{{opReverse, 1}, {opSplice, 2}, {opSwap, 3}}
	if len(steps) != len(want) {
		t.Fatalf("steps = %v, want %v", steps, want)
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Fatalf("steps = %v, want %v", steps, want)
		}
	}
	if got := applySteps(steps, "abcdefgh"); got != wantSig {
		t.Fatalf("applySteps = %q, want %q", got, wantSig)
	}
}

func TestSignatureRuntimes(t *testing.T) {
	s, err := compile(playerJS)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	got, err := evalGoja(s.sig, "abcdefgh")
	if err != nil || got != wantSig {
		t.Fatalf("goja = %q, %v; want %q", got, err, wantSig)
	}
	got, err = evalOtto(s.sig, "abcdefgh")
	if err != nil || got != wantSig {
		t.Fatalf("otto = %q, %v; want %q", got, err, wantSig)
	}

	s.steps = nil
	if got, err := s.signature("abcdefgh"); err != nil || got != wantSig {
		t.Fatalf("runtime signature = %q, %v", got, err)
	}
}

func TestNTransform(t *testing.T) {
	s, err := compile(playerJS)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if got := s.transformN("abc"); got != "cba_ok" {
		t.Fatalf("transformN = %q", got)
	}

	broken := &script{n: "function(a){return undefinedThing.call(a)}"}
	if got := broken.transformN("abc"); got != "abc" {
		t.Fatalf("failing n function must keep the input, got %q", got)
	}
}

func TestNSourceArrayForm(t *testing.T) {
	js := `var Qz=[nFn];var nFn=function(a){return a+"!"};x=function(c){(b=c.get("n"))&&(b=Qz[0](b),c.set("n",b))};`
	src, err := nSource(js)
	if err != nil {
		t.Fatalf("nSource: %v", err)
	}
	if src != `function(a){return a+"!"}` {
		t.Fatalf("nSource = %q", src)
	}
	if src, err := nSource("var nothing=1;"); err != nil || src != "" {
		t.Fatalf("player without n function = %q, %v", src, err)
	}
}

func TestExtractBlock(t *testing.T) {
	js := `x={a:"}",b:function(){return '{'}};rest`
	got, err := extractBlock(js, 2)
	if err != nil {
		t.Fatalf("extractBlock: %v", err)
	}
	if got != `{a:"}",b:function(){return '{'}}` {
		t.Fatalf("extractBlock = %q", got)
	}
	if _, err := extractBlock("{{", 0); !IsJSError(err) {
		t.Fatalf("unterminated block error = %v", err)
	}
}

func TestDecipher(t *testing.T) {
	fetcher := &stubFetcher{body: playerJS}
	d := New(fetcher)

	list := []types.Format{
		{Itag: 18, URL: "https://r.example/videoplayback?n=abc&x=1"},
		{Itag: 22, SignatureCipher: "s=abcdefgh&sp=sig&url=" + url.QueryEscape("https://r.example/videoplayback?itag=22")},
		{Itag: 43, Cipher: "s=abcdefgh&url=" + url.QueryEscape("https://r.example/videoplayback?itag=43")},
		{Itag: 140, URL: "https://r.example/plain"},
	}
	got, err := d.Decipher(context.Background(), list, "https://www.youtube.com/s/player/abc/base.js")
	if err != nil {
		t.Fatalf("Decipher: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 formats, got %d", len(got))
	}

	u22, _ := url.Parse(got[22].URL)
	if u22.Query().Get("sig") != wantSig || u22.Query().Get("itag") != "22" {
		t.Fatalf("itag 22 url = %q", got[22].URL)
	}
	if got[22].SignatureCipher != "" {
		t.Fatal("resolved format should drop its cipher")
	}
	u43, _ := url.Parse(got[43].URL)
	if u43.Query().Get("signature") != wantSig {
		t.Fatalf("itag 43 should default to the signature param, got %q", got[43].URL)
	}
	u18, _ := url.Parse(got[18].URL)
	if u18.Query().Get("n") != "cba_ok" || u18.Query().Get("x") != "1" {
		t.Fatalf("itag 18 url = %q", got[18].URL)
	}
	if got[140].URL != "https://r.example/plain" {
		t.Fatalf("plain format changed: %q", got[140].URL)
	}

	if _, err := d.Decipher(context.Background(), list, "https://www.youtube.com/s/player/abc/base.js"); err != nil {
		t.Fatalf("second Decipher: %v", err)
	}
	if fetcher.calls != 1 {
		t.Fatalf("player script should be cached, fetched %d times", fetcher.calls)
	}
}

func TestDecipherCacheExpiry(t *testing.T) {
	fetcher := &stubFetcher{body: playerJS}
	now := time.Unix(1700000000, 0)
	d := New(fetcher)
	d.Now = func() time.Time { return now }

	list := []types.Format{{Itag: 22, SignatureCipher: "s=abcdefgh&url=https%3A%2F%2Fr"}}
	for i := 0; i < 2; i++ {
		if _, err := d.Decipher(context.Background(), list, "https://p/base.js"); err != nil {
			t.Fatalf("Decipher: %v", err)
		}
		now = now.Add(playerJSTTL + time.Second)
	}
	if fetcher.calls != 2 {
		t.Fatalf("expired entry should be refetched, fetched %d times", fetcher.calls)
	}
}

func TestDecipherStore(t *testing.T) {
	const playerURL = "https://p/base.js"
	store := jscache.NewMemoryStore()
	list := []types.Format{{Itag: 22, SignatureCipher: "s=abcdefgh&url=https%3A%2F%2Fr"}}

	first := &stubFetcher{body: playerJS}
	d := New(first)
	d.Store = store
	if _, err := d.Decipher(context.Background(), list, playerURL); err != nil {
		t.Fatalf("Decipher: %v", err)
	}
	e, ok := store.Get(playerURL)
	if !ok || e.Body != playerJS || e.ExpiresAt.IsZero() {
		t.Fatalf("store entry = %+v, %v", e, ok)
	}

	second := &stubFetcher{err: errors.New("must not fetch")}
	d2 := New(second)
	d2.Store = store
	got, err := d2.Decipher(context.Background(), list, playerURL)
	if err != nil {
		t.Fatalf("Decipher from store: %v", err)
	}
	if u, _ := url.Parse(got[22].URL); u.Query().Get("signature") != wantSig {
		t.Fatalf("itag 22 url = %q", got[22].URL)
	}
	if second.calls != 0 {
		t.Fatalf("stored script should not be fetched, fetched %d times", second.calls)
	}
}

func TestDecipherWithoutPlayerWork(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("must not fetch")}
	d := New(fetcher)

	list := []types.Format{{Itag: 18, URL: "https://r/1"}, {Itag: 22, URL: "https://r/2"}}
	got, err := d.Decipher(context.Background(), list, "https://p/base.js")
	if err != nil || len(got) != 2 || fetcher.calls != 0 {
		t.Fatalf("Decipher = %v, %v, calls %d", got, err, fetcher.calls)
	}

	withN := []types.Format{{Itag: 18, URL: "https://r/1?n=abc"}}
	got, err = d.Decipher(context.Background(), withN, "")
	if err != nil || got[18].URL != "https://r/1?n=abc" {
		t.Fatalf("n without a player url should pass through, got %v, %v", got, err)
	}
}

func TestDecipherErrors(t *testing.T) {
	ciphered := []types.Format{{Itag: 22, SignatureCipher: "s=abc&url=https%3A%2F%2Fr"}}

	_, err := New(&stubFetcher{}).Decipher(context.Background(), ciphered, "")
	if !IsNotFound(err) || !errors.Is(err, errs.ErrCipherFailed) {
		t.Fatalf("missing player url error = %v", err)
	}

	transportErr := errors.New("connection reset")
	_, err = New(&stubFetcher{err: transportErr}).Decipher(context.Background(), ciphered, "https://p/base.js")
	if !errors.Is(err, transportErr) || !errors.Is(err, errs.ErrCipherFailed) {
		t.Fatalf("download error = %v", err)
	}

	_, err = New(&stubFetcher{body: "var nothing=1;"}).Decipher(context.Background(), ciphered, "https://p/base.js")
	if !IsJSError(err) {
		t.Fatalf("player without signature function error = %v", err)
	}

	noURL := []types.Format{{Itag: 22, SignatureCipher: "s=abc"}}
	_, err = New(&stubFetcher{body: playerJS}).Decipher(context.Background(), noURL, "https://p/base.js")
	if !IsNotFound(err) {
		t.Fatalf("cipher without url error = %v", err)
	}
}

func TestEvalTimeout(t *testing.T) {
	old := jsTimeout
	jsTimeout = 50 * time.Millisecond
	defer func() { jsTimeout = old }()

	const loop = "function(a){while(true){}}"
	if _, err := evalGoja(loop, "x"); !IsTimeout(err) {
		t.Fatalf("goja timeout error = %v", err)
	}
	if _, err := evalOtto(loop, "x"); !IsTimeout(err) {
		t.Fatalf("otto timeout error = %v", err)
	}
	if _, err := evalJS(loop, "x"); !IsTimeout(err) {
		t.Fatalf("evalJS should not fall back after a timeout, got %v", err)
	}
}

func TestErrorFormatting(t *testing.T) {
	e := NewError(ErrCodeSignatureNotFound, "cipher has no url", 22)
	if e.Error() != "SIGNATURE_NOT_FOUND: cipher has no url (22)" {
		t.Fatalf("Error() = %q", e.Error())
	}
	w := wrapError(ErrCodeJSExecutionFailed, "goja", errors.New("boom"))
	if w.Error() != "JS_EXECUTION_FAILED: goja: boom" {
		t.Fatalf("Error() = %q", w.Error())
	}
	b, err := e.MarshalJSON()
	if err != nil || string(b) != `{"code":"SIGNATURE_NOT_FOUND","message":"cipher has no url","details":22,"error":"SIGNATURE_NOT_FOUND: cipher has no url (22)"}` {
		t.Fatalf("MarshalJSON = %s, %v", b, err)
	}
	if IsTimeout(errors.New("plain")) || IsNotFound(nil) {
		t.Fatal("foreign errors must not match codes")
	}
}
