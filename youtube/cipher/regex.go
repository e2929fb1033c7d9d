package cipher

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type stepOp int

const (
	opReverse stepOp = iota
	opSplice
	opSwap
)

type step struct {
	op  stepOp
	arg int
}

const (
	jsVar      = `[a-zA-Z_\$][a-zA-Z_0-9\$]*`
	reverseDef = `:function\(a(?:,b)?\)\{(?:return )?a\.reverse\(\)\}`
	spliceDef  = `:function\(a,b\)\{a\.splice\(0,b\)\}`
	swapDef    = `:function\(a,b\)\{var c=a\[0\];a\[0\]=a\[b(?:%a\.length)?\];a\[b(?:%a\.length)?\]=c(?:;return a)?\}`
)

var (
	sigFuncRegexps = []*regexp.Regexp{
		regexp.MustCompile(`function(?:\s+` + jsVar + `)?\(a\)\{a=a\.split\(""\);\s*((?:(?:a=)?` + jsVar + `(?:\.` + jsVar + `|\[[^\]]+\])\(a,\d+\);?\s*)+)return a\.join\(""\)\}`),
		regexp.MustCompile(jsVar + `\s*=\s*function\(a\)\{a=a\.split\(""\);\s*((?:(?:a=)?` + jsVar + `(?:\.` + jsVar + `|\[[^\]]+\])\(a,\d+\);?\s*)+)return a\.join\(""\)\}`),
	}
	helperNameRegexp = regexp.MustCompile(`^(?:a=)?(` + jsVar + `)(?:\.|\[)`)
	reverseRegexp    = regexp.MustCompile(`(?m)(?:^|,|\{)(` + jsVar + `)` + reverseDef)
	spliceRegexp     = regexp.MustCompile(`(?m)(?:^|,|\{)(` + jsVar + `)` + spliceDef)
	swapRegexp       = regexp.MustCompile(`(?m)(?:^|,|\{)(` + jsVar + `)` + swapDef)
	callRegexp       = regexp.MustCompile(`(?:\.(` + jsVar + `)|\[["'](` + jsVar + `)["']\])\(a,(\d+)\)`)

	nFuncRegexps = []*regexp.Regexp{
		regexp.MustCompile(`\.get\("n"\)\)\s*&&\s*\(b=([a-zA-Z0-9$]+)\[(\d+)\]\([a-zA-Z0-9$]+\)`),
		regexp.MustCompile(`\.get\("n"\)\)\s*&&\s*\(b=([a-zA-Z0-9$]+)\([a-zA-Z0-9$]+\)`),
	}
)

// signatureSource locates the signature function. It returns the function
// expression, the declaration of the helper object it calls and the body
// holding the helper calls.
func signatureSource(js string) (fn, helper, calls string, err error) {
	for _, re := range sigFuncRegexps {
		m := re.FindStringSubmatchIndex(js)
		if m == nil {
			continue
		}
		whole := js[m[0]:m[1]]
		fn = whole[strings.Index(whole, "function"):]
		calls = js[m[2]:m[3]]
		break
	}
	if fn == "" {
		return "", "", "", NewError(ErrCodeJSParsingFailed, "signature function not found")
	}

	hm := helperNameRegexp.FindStringSubmatch(strings.TrimSpace(calls))
	if len(hm) < 2 {
		return "", "", "", NewError(ErrCodeJSParsingFailed, "helper object not referenced", calls)
	}
	name := hm[1]
	def := regexp.MustCompile(`(?:var|let|const)\s+` + regexp.QuoteMeta(name) + `\s*=\s*\{`).FindStringIndex(js)
	if def == nil {
		return "", "", "", NewError(ErrCodeJSParsingFailed, "helper object not found", name)
	}
	block, err := extractBlock(js, def[1]-1)
	if err != nil {
		return "", "", "", err
	}
	return fn, "var " + name + "=" + block + ";", calls, nil
}

// parseSteps maps helper calls onto reverse, splice and swap operations.
func parseSteps(helper, calls string) ([]step, error) {
	keys := map[string]stepOp{}
	for op, re := range map[stepOp]*regexp.Regexp{opReverse: reverseRegexp, opSplice: spliceRegexp, opSwap: swapRegexp} {
		if m := re.FindStringSubmatch(helper); len(m) > 1 {
			keys[m[1]] = op
		}
	}
	if len(keys) == 0 {
		return nil, NewError(ErrCodeJSParsingFailed, "no known helper operations")
	}

	var steps []step
	for _, c := range callRegexp.FindAllStringSubmatch(calls, -1) {
		key := c[1]
		if key == "" {
			key = c[2]
		}
		op, ok := keys[key]
		if !ok {
			return nil, NewError(ErrCodeJSParsingFailed, "unknown helper operation", key)
		}
		arg, _ := strconv.Atoi(c[3])
		steps = append(steps, step{op: op, arg: arg})
	}
	if len(steps) == 0 {
		return nil, NewError(ErrCodeJSParsingFailed, "empty operation list")
	}
	return steps, nil
}

func applySteps(steps []step, signature string) string {
	r := []rune(signature)
	for _, st := range steps {
		switch st.op {
		case opReverse:
			r = reverseRunes(r)
		case opSplice:
			r = spliceRunes(r, st.arg)
		case opSwap:
			r = swapRunes(r, st.arg)
		}
	}
	return string(r)
}

// nSource returns the n transform function expression. An empty string
// means the player has none.
func nSource(js string) (string, error) {
	var name string
	for _, re := range nFuncRegexps {
		m := re.FindStringSubmatch(js)
		if m == nil {
			continue
		}
		name = m[1]
		if len(m) == 3 {
			// b=Xy[0](c): the function is the array's element.
			idx, _ := strconv.Atoi(m[2])
			arr := regexp.MustCompile(`var\s+` + regexp.QuoteMeta(name) + `\s*=\s*\[([^\]]+)\]`).FindStringSubmatch(js)
			if arr == nil {
				return "", NewError(ErrCodeJSParsingFailed, "n function array not found", name)
			}
			items := strings.Split(arr[1], ",")
			if idx >= len(items) {
				return "", NewError(ErrCodeJSParsingFailed, "n function index out of range", idx)
			}
			name = strings.TrimSpace(items[idx])
		}
		break
	}
	if name == "" {
		return "", nil
	}

	start := -1
	for _, def := range []string{name + "=function(", name + " = function(", "function " + name + "("} {
		if start = strings.Index(js, def); start >= 0 {
			start += strings.Index(def, "function")
			break
		}
	}
	if start < 0 {
		return "", NewError(ErrCodeJSParsingFailed, "n function body not found", name)
	}
	open := strings.IndexByte(js[start:], '{')
	if open < 0 {
		return "", NewError(ErrCodeJSParsingFailed, "n function body not found", name)
	}
	block, err := extractBlock(js, start+open)
	if err != nil {
		return "", err
	}
	return js[start:start+open] + block, nil
}

// extractBlock returns the balanced {...} block starting at js[open],
// skipping braces inside string literals.
func extractBlock(js string, open int) (string, error) {
	if open < 0 || open >= len(js) || js[open] != '{' {
		return "", NewError(ErrCodeJSParsingFailed, "block start not found")
	}
	depth := 0
	var quote byte
	for i := open; i < len(js); i++ {
		c := js[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return js[open : i+1], nil
			}
		}
	}
	return "", NewError(ErrCodeJSParsingFailed, fmt.Sprintf("unterminated block at %d", open))
}

func reverseRunes(s []rune) []rune {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
	return s
}

func spliceRunes(s []rune, n int) []rune {
	if n < 0 || n > len(s) {
		return s
	}
	return s[n:]
}

func swapRunes(s []rune, n int) []rune {
	if len(s) <= 1 {
		return s
	}
	n = n % len(s)
	if n < 0 {
		n += len(s)
	}
	s[0], s[n] = s[n], s[0]
	return s
}
