package html2pdf

import (
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

// Tags that read other files are banned: a template only interpolates its
// context.
var bannedTemplateTags = []string{"include", "import", "extends", "ssi"}

// contextKeyRE matches the context keys pongo2 accepts.
var contextKeyRE = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// templateExpander expands HTML templates written in Jinja2 syntax
// ({{ name }}, {% if %}, filters).
type templateExpander interface {
	Expand(tmpl string, data map[string]any) (string, error)
}

// pongoExpander implements templateExpander with pongo2.
type pongoExpander struct {
	mu  sync.Mutex // pongo2 marks the set as used on every parse
	set *pongo2.TemplateSet
}

// Compile-time interface check.
var _ templateExpander = (*pongoExpander)(nil)

// pongo2 reads the autoescape mode from a package variable on every execution.
var disableAutoescape sync.Once

func newPongoExpander() (*pongoExpander, error) {
	disableAutoescape.Do(func() { pongo2.SetAutoescape(false) })

	set := pongo2.NewSet("html2pdf", noTemplateLoader{})
	for _, tag := range bannedTemplateTags {
		if err := set.BanTag(tag); err != nil {
			return nil, fmt.Errorf("banning template tag %q: %w", tag, err)
		}
	}
	return &pongoExpander{set: set}, nil
}

// Expand renders tmpl with data. Output is not HTML-escaped: the payload is
// trusted markup, as with a plain Jinja2 Template. Keys that are not valid
// identifiers cannot be referenced and are dropped. Floats print in their
// shortest form (19.99, 1000.0) instead of pongo2's fixed six decimals.
func (e *pongoExpander) Expand(tmpl string, data map[string]any) (string, error) {
	e.mu.Lock()
	tpl, err := e.set.FromString(tmpl)
	e.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplate, err)
	}

	ctx := make(pongo2.Context, len(data))
	for k, v := range data {
		if contextKeyRE.MatchString(k) {
			ctx[k] = shortenFloats(v)
		}
	}

	out, err := tpl.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	return out, nil
}

// shortFloat is a float that prints like a Jinja2 float. It keeps the
// float64 kind, so pongo2 arithmetic and ordering still treat it as a number.
type shortFloat float64

func (f shortFloat) String() string {
	v := float64(f)
	if abs := math.Abs(v); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// shortenFloats copies v with every float replaced by a shortFloat. Maps and
// slices decoded from JSON are walked; other values are returned as is.
func shortenFloats(v any) any {
	switch v := v.(type) {
	case float64:
		return shortFloat(v)
	case float32:
		return shortFloat(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = shortenFloats(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = shortenFloats(item)
		}
		return out
	default:
		return v
	}
}

// noTemplateLoader refuses every template lookup.
type noTemplateLoader struct{}

var errTemplateLoading = errors.New("loading templates from files is disabled")

func (noTemplateLoader) Abs(_, name string) string {
	return name
}

func (noTemplateLoader) Get(string) (io.Reader, error) {
	return nil, errTemplateLoading
}
