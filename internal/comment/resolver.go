package comment

import (
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// Fallback replaces inherit markers no candidate could satisfy
const Fallback = "::could not resolve the inherited comment::"

// Longest spelling first so "{@inheritdoc}" wins over the "inheritdoc" inside it
var markers = []string{"{@inheritdoc}", "{inheritdoc}", "@inheritdoc", "inheritdoc"}

type state int

const (
	stateOwnComment state = iota
	stateCheckParentClass
	stateCheckInterfaces
	stateCheckTraits
	stateGiveUp
	stateDone
)

// segment is either resolved text or an unresolved inherit marker
type segment struct {
	marker string
	text   string
}

func (s segment) unresolved() bool {
	return s.marker != ""
}

type docLookup func(c *ClassDoc) (string, bool)

// Resolver expands inherit markers in doc comments across parent types,
// implemented interfaces and embedded types. Results are cached per process.
type Resolver struct {
	mu    sync.Mutex
	cache map[string]string
}

// NewResolver creates a resolver with an empty cache
func NewResolver() *Resolver {
	return &Resolver{cache: make(map[string]string)}
}

// MethodComment returns the resolved doc comment of class.method
func (r *Resolver) MethodComment(class *ClassDoc, method string) string {
	if class == nil {
		return ""
	}
	m, ok := class.Method(method)
	if !ok {
		return ""
	}

	key := class.QualifiedName() + "." + method
	return r.cached(key, func() string {
		return resolve(m.Doc, class, func(c *ClassDoc) (string, bool) {
			cm, ok := c.Method(method)
			if !ok {
				return "", false
			}
			return cm.Doc, true
		})
	})
}

// TypeComment returns the resolved doc comment of the type itself
func (r *Resolver) TypeComment(class *ClassDoc) string {
	if class == nil {
		return ""
	}
	return r.cached(class.QualifiedName(), func() string {
		return resolve(class.Doc, class, func(c *ClassDoc) (string, bool) {
			return c.Doc, true
		})
	})
}

// Attributes renders a struct tag as "key: value" strings in tag order
func (r *Resolver) Attributes(tag reflect.StructTag) []string {
	return parseTag(string(tag))
}

// TypeAttributes renders the directives of a type declaration
func (r *Resolver) TypeAttributes(class *ClassDoc) []string {
	if class == nil {
		return nil
	}
	return class.DirectiveStrings()
}

// CacheSize returns the number of cached comments
func (r *Resolver) CacheSize() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cache)
}

func (r *Resolver) cached(key string, compute func() string) string {
	r.mu.Lock()
	if v, ok := r.cache[key]; ok {
		r.mu.Unlock()
		return v
	}
	r.mu.Unlock()

	v := compute()

	r.mu.Lock()
	r.cache[key] = v
	r.mu.Unlock()
	return v
}

func resolve(own string, class *ClassDoc, lookup docLookup) string {
	segs := parseSegments(strings.TrimSpace(own))

	st := stateOwnComment
	for st != stateDone {
		switch st {
		case stateOwnComment:
			st = advance(segs, stateCheckParentClass)

		case stateCheckParentClass:
			seen := map[*ClassDoc]bool{class: true}
			for p := class.Parent; p != nil && !seen[p] && hasUnresolved(segs); p = p.Parent {
				seen[p] = true
				segs = substitute(segs, p, lookup)
			}
			st = advance(segs, stateCheckInterfaces)

		case stateCheckInterfaces:
			for _, iface := range class.Interfaces {
				if !hasUnresolved(segs) {
					break
				}
				segs = substitute(segs, iface, lookup)
			}
			st = advance(segs, stateCheckTraits)

		case stateCheckTraits:
			for _, trait := range class.AllTraits() {
				if !hasUnresolved(segs) {
					break
				}
				segs = substitute(segs, trait, lookup)
			}
			st = advance(segs, stateGiveUp)

		case stateGiveUp:
			for i := range segs {
				if segs[i].unresolved() {
					segs[i] = segment{text: Fallback}
				}
			}
			st = stateDone
		}
	}

	return strings.TrimSpace(join(segs))
}

func advance(segs []segment, next state) state {
	if !hasUnresolved(segs) {
		return stateDone
	}
	return next
}

// substitute replaces the first unresolved marker with the candidate's
// comment. Markers inside that comment become unresolved segments again.
func substitute(segs []segment, candidate *ClassDoc, lookup docLookup) []segment {
	if candidate == nil {
		return segs
	}
	doc, ok := lookup(candidate)
	doc = strings.TrimSpace(doc)
	if !ok || doc == "" {
		return segs
	}

	for i, s := range segs {
		if !s.unresolved() {
			continue
		}
		out := make([]segment, 0, len(segs)+2)
		out = append(out, segs[:i]...)
		out = append(out, parseSegments(doc)...)
		out = append(out, segs[i+1:]...)
		return out
	}
	return segs
}

func hasUnresolved(segs []segment) bool {
	for _, s := range segs {
		if s.unresolved() {
			return true
		}
	}
	return false
}

func join(segs []segment) string {
	var b strings.Builder
	for _, s := range segs {
		if s.unresolved() {
			b.WriteString(s.marker)
		} else {
			b.WriteString(s.text)
		}
	}
	return b.String()
}

// parseSegments splits text at inherit markers, matched case-insensitively
func parseSegments(text string) []segment {
	var out []segment
	lower := asciiLower(text)
	for {
		pos, marker := findMarker(lower)
		if pos < 0 {
			if text != "" {
				out = append(out, segment{text: text})
			}
			return out
		}
		if pos > 0 {
			out = append(out, segment{text: text[:pos]})
		}
		end := pos + len(marker)
		out = append(out, segment{marker: text[pos:end]})
		text, lower = text[end:], lower[end:]
	}
}

func findMarker(lower string) (int, string) {
	best, bestMarker := -1, ""
	for _, m := range markers {
		if i := strings.Index(lower, m); i >= 0 && (best < 0 || i < best) {
			best, bestMarker = i, m
		}
	}
	return best, bestMarker
}

// asciiLower lowers ASCII letters only so byte offsets stay aligned
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// parseTag walks a struct tag the way reflect.StructTag.Lookup does,
// keeping every key in order.
func parseTag(tag string) []string {
	var out []string
	for tag != "" {
		i := 0
		for i < len(tag) && tag[i] == ' ' {
			i++
		}
		tag = tag[i:]
		if tag == "" {
			break
		}

		i = 0
		for i < len(tag) && tag[i] > ' ' && tag[i] != ':' && tag[i] != '"' && tag[i] != 0x7f {
			i++
		}
		if i == 0 || i+1 >= len(tag) || tag[i] != ':' || tag[i+1] != '"' {
			break
		}
		name := tag[:i]
		tag = tag[i+1:]

		i = 1
		for i < len(tag) && tag[i] != '"' {
			if tag[i] == '\\' {
				i++
			}
			i++
		}
		if i >= len(tag) {
			break
		}
		quoted := tag[:i+1]
		tag = tag[i+1:]

		value, err := strconv.Unquote(quoted)
		if err != nil {
			break
		}
		out = append(out, name+": "+value)
	}
	return out
}
