// Package hostregex backs Julia's Regex/match/occursin/eachmatch (SPEC_FULL
// §6.3) with Go's stdlib regexp. There is no third-party regex engine
// anywhere in the retrieval pack (PCRE-style backreferences aren't
// representable by RE2 either way), so this is a deliberate, documented
// stdlib fallback rather than a dropped dependency.
package hostregex

import (
	"regexp"

	"github.com/jlvm/jlvm/internal/jlerror"
)

// Regex wraps a compiled pattern plus the original source text Julia's
// `show` needs to echo back (`r"..."`).
type Regex struct {
	Source  string
	pattern *regexp.Regexp
}

func Compile(source string) (*Regex, error) {
	re, err := regexp.Compile(source)
	if err != nil {
		return nil, jlerror.NewArgumentError("invalid regex: " + err.Error())
	}
	return &Regex{Source: source, pattern: re}, nil
}

// Match is one occursin/match result: the whole match plus any captures
// (spec.md's RegexMatch analogue), offsets 0-based byte positions into the
// subject the way Go's regexp package reports them.
type Match struct {
	Text     string
	Captures []string
	Offset   int
}

// OccursIn implements `occursin(r, s)`.
func (r *Regex) OccursIn(s string) bool { return r.pattern.MatchString(s) }

// FindFirst implements `match(r, s)`, returning (nil, false) on no match.
func (r *Regex) FindFirst(s string) (*Match, bool) {
	loc := r.pattern.FindStringSubmatchIndex(s)
	if loc == nil {
		return nil, false
	}
	captures := make([]string, 0, len(loc)/2-1)
	for i := 2; i < len(loc); i += 2 {
		if loc[i] < 0 {
			captures = append(captures, "")
			continue
		}
		captures = append(captures, s[loc[i]:loc[i+1]])
	}
	return &Match{Text: s[loc[0]:loc[1]], Captures: captures, Offset: loc[0]}, true
}

// EachMatch implements `eachmatch(r, s)`: every non-overlapping match in
// left-to-right order.
func (r *Regex) EachMatch(s string) []*Match {
	locs := r.pattern.FindAllStringSubmatchIndex(s, -1)
	out := make([]*Match, 0, len(locs))
	for _, loc := range locs {
		captures := make([]string, 0, len(loc)/2-1)
		for i := 2; i < len(loc); i += 2 {
			if loc[i] < 0 {
				captures = append(captures, "")
				continue
			}
			captures = append(captures, s[loc[i]:loc[i+1]])
		}
		out = append(out, &Match{Text: s[loc[0]:loc[1]], Captures: captures, Offset: loc[0]})
	}
	return out
}

// ReplaceAll implements `replace(s, r => repl)` for a string replacement
// (capture-group references use Go's regexp $1 syntax, same as Julia's own
// s"..." replacement template).
func (r *Regex) ReplaceAll(s, repl string) string {
	return r.pattern.ReplaceAllString(s, repl)
}
