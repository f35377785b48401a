package html2pdf

import (
	"fmt"
	"regexp"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// Default access patterns: the allow-list only matches the empty string and
// the block-list matches everything, so no external URL is fetched until an
// administrator allows it.
const (
	DefaultAllowedPattern = "^$"
	DefaultBlockedPattern = "^.*$"
)

// URLPatterns holds the allow and block regular expressions (RE2 syntax).
// A URLPatterns value is itself a PatternSource that never changes.
type URLPatterns struct {
	Allowed string
	Blocked string
}

// DefaultURLPatterns returns the fail-closed default patterns.
func DefaultURLPatterns() URLPatterns {
	return URLPatterns{Allowed: DefaultAllowedPattern, Blocked: DefaultBlockedPattern}
}

// URLPatterns implements PatternSource.
func (p URLPatterns) URLPatterns() URLPatterns {
	return p
}

// Validate reports the first pattern that does not compile.
func (p URLPatterns) Validate() error {
	if _, err := compilePrefix(p.Allowed); err != nil {
		return fmt.Errorf("allowed pattern: %w", err)
	}
	if _, err := compilePrefix(p.Blocked); err != nil {
		return fmt.Errorf("blocked pattern: %w", err)
	}
	return nil
}

// PatternSource supplies the access patterns in effect.
// AccessPolicy asks for them on every decision.
type PatternSource interface {
	URLPatterns() URLPatterns
}

// LivePatterns is a PatternSource whose patterns can be swapped while
// renders are running. Readers see either the old or the new pair.
type LivePatterns struct {
	current atomic.Pointer[URLPatterns]
}

// NewLivePatterns creates a LivePatterns holding p.
func NewLivePatterns(p URLPatterns) *LivePatterns {
	l := &LivePatterns{}
	l.Store(p)
	return l
}

// URLPatterns returns the patterns currently stored.
func (l *LivePatterns) URLPatterns() URLPatterns {
	return *l.current.Load()
}

// Store replaces the patterns. Last write wins.
func (l *LivePatterns) Store(p URLPatterns) {
	l.current.Store(&p)
}

// AccessPolicy decides whether the rendering engine may fetch a URL.
type AccessPolicy struct {
	source PatternSource
	logger *log.Logger
}

// NewAccessPolicy creates a policy reading its patterns from source.
// A nil source uses DefaultURLPatterns; a nil logger uses log.Default().
func NewAccessPolicy(source PatternSource, logger *log.Logger) *AccessPolicy {
	if source == nil {
		source = DefaultURLPatterns()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &AccessPolicy{source: source, logger: logger}
}

// CheckAccess reports whether rawURL may be fetched.
//
// Both patterns are matched at the start of the URL. A URL matching the
// allowed pattern is accepted; otherwise a URL matching the blocked pattern is
// rejected; anything else is accepted. A pattern that fails to compile denies
// the URL.
func (p *AccessPolicy) CheckAccess(rawURL string) bool {
	patterns := p.source.URLPatterns()

	allowed, err := matchPrefix(patterns.Allowed, rawURL)
	if err != nil {
		p.logger.Error("access check failed", "url", rawURL, "err", err)
		return false
	}
	if allowed {
		return true
	}

	blocked, err := matchPrefix(patterns.Blocked, rawURL)
	if err != nil {
		p.logger.Error("access check failed", "url", rawURL, "err", err)
		return false
	}
	return !blocked
}

// matchPrefix compiles pattern anchored at the start of the input and
// matches s against it. Patterns are compiled on every call so that
// configuration swaps take effect immediately.
func matchPrefix(pattern, s string) (bool, error) {
	re, err := compilePrefix(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(s), nil
}

func compilePrefix(pattern string) (*regexp.Regexp, error) {
	// Compile the bare pattern first: an unbalanced group would otherwise
	// escape the anchoring group below.
	if _, err := regexp.Compile(pattern); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrConfig, pattern, err)
	}
	re, err := regexp.Compile(`^(?:` + pattern + `)`)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrConfig, pattern, err)
	}
	return re, nil
}
