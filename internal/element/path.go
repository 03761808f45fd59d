// Package element locates nodes inside a document tree and rewrites their
// content. Resolution by positional path is authoritative; content matching
// is the best-effort fallback for stale or missing path data.
package element

import (
	"regexp"
	"strings"

	"github.com/oskarb/docmend/internal/docx"
)

// Segment addresses one child collection by kind and position.
// Index is zero-based; the wire form is one-based.
type Segment struct {
	Kind  docx.Kind
	Index int
}

// Path is an ordered list of segments, outermost first.
type Path []Segment

var segmentRe = regexp.MustCompile(`^w:(p|r|tbl|tr|tc)\[(\d+)\]$`)

var segmentKinds = map[string]docx.Kind{
	"p":   docx.KindParagraph,
	"r":   docx.KindRun,
	"tbl": docx.KindTable,
	"tr":  docx.KindRow,
	"tc":  docx.KindCell,
}

// ParsePath parses a WordprocessingML-flavoured positional reference such
// as "//w:p[2]/w:r[1]" or "//w:tbl[1]/w:tr[2]/w:tc[3]". A trailing "w:t"
// addresses the text of the preceding run and is folded into it. Paths come
// from heterogeneous, possibly stale audit data, so any malformed input
// (unknown kind token, missing or non-positive index) reports ok=false
// rather than an error.
func ParsePath(ref string) (Path, bool) {
	ref = strings.TrimSpace(ref)
	ref = strings.TrimLeft(ref, "/")
	if ref == "" {
		return nil, false
	}

	tokens := strings.Split(ref, "/")
	var path Path
	for i, tok := range tokens {
		if tok == "w:t" && i == len(tokens)-1 && len(path) > 0 {
			// The text element belongs to the run that precedes it.
			if path[len(path)-1].Kind == docx.KindRun {
				break
			}
			return nil, false
		}
		m := segmentRe.FindStringSubmatch(tok)
		if m == nil {
			return nil, false
		}
		idx := parseIndex(m[2])
		if idx < 1 {
			return nil, false
		}
		path = append(path, Segment{Kind: segmentKinds[m[1]], Index: idx - 1})
	}
	return path, true
}

// parseIndex converts a digit string to int, returning 0 on overflow-ish
// inputs; the regexp guarantees digits only.
func parseIndex(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
		if n > 1<<20 {
			return 0
		}
	}
	return n
}
