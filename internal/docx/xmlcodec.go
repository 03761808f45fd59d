package docx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// wmlNS is the main WordprocessingML namespace.
const wmlNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// xmlNS is the reserved XML namespace; encoding/xml reports it with the
// literal space "xml" (e.g. xml:space on w:t elements).
const xmlNS = "xml"

// node is one element or text chunk of word/document.xml. The tree keeps
// every token the decoder produced, including inter-element whitespace, so
// untouched content round-trips unchanged.
type node struct {
	name     xml.Name
	attrs    []xml.Attr
	children []*node
	text     string
	isText   bool
}

// tree is a parsed word/document.xml. The root start and end tags are kept
// verbatim so namespace declarations survive re-encoding untouched.
type tree struct {
	root      *node
	header    string
	rootStart string
	rootEnd   string
	prefixes  map[string]string // namespace URI → declared prefix
}

var xmlHeaderRe = regexp.MustCompile(`(?s)^\s*(<\?xml[^>]+\?>)`)

func parseTree(data []byte) (*tree, error) {
	text := string(data)
	header := ""
	if m := xmlHeaderRe.FindStringSubmatch(text); len(m) > 0 {
		header = m[1]
		text = text[len(m[0]):]
	}

	rootStart, rootEnd, err := extractRootTags(text)
	if err != nil {
		return nil, err
	}

	dec := xml.NewDecoder(strings.NewReader(text))
	var stack []*node
	var root *node
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("docx: parse document xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{name: t.Name, attrs: append([]xml.Attr(nil), t.Attr...)}
			if len(stack) == 0 {
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			s := string(t)
			if s == "" {
				continue
			}
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, &node{isText: true, text: s})
		}
	}
	if root == nil {
		return nil, fmt.Errorf("docx: document xml has no root element")
	}

	return &tree{
		root:      root,
		header:    header,
		rootStart: rootStart,
		rootEnd:   rootEnd,
		prefixes:  prefixMap(root.attrs),
	}, nil
}

// encode serializes the tree back to bytes. Only the root's children are
// re-encoded; header and root tags are emitted verbatim.
func (t *tree) encode() ([]byte, error) {
	var buf bytes.Buffer
	if t.header != "" {
		buf.WriteString(t.header)
	}
	buf.WriteString(t.rootStart)

	enc := xml.NewEncoder(&buf)
	for _, child := range t.root.children {
		prefixed := applyPrefixes(child, t.prefixes)
		if err := encodeNode(enc, prefixed); err != nil {
			return nil, fmt.Errorf("docx: encode document xml: %w", err)
		}
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("docx: flush encoder: %w", err)
	}

	buf.WriteString(t.rootEnd)
	return buf.Bytes(), nil
}

func encodeNode(enc *xml.Encoder, n *node) error {
	if n.isText {
		return enc.EncodeToken(xml.CharData(n.text))
	}
	start := xml.StartElement{Name: n.name, Attr: n.attrs}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	for _, child := range n.children {
		if err := encodeNode(enc, child); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

// prefixMap builds a namespace URI → prefix map from xmlns declarations.
func prefixMap(attrs []xml.Attr) map[string]string {
	out := map[string]string{xmlNS: "xml"}
	for _, a := range attrs {
		switch {
		case a.Name.Space == "xmlns":
			out[a.Value] = a.Name.Local
		case a.Name.Space == "" && a.Name.Local == "xmlns":
			out[a.Value] = ""
		case a.Name.Space == "" && strings.HasPrefix(a.Name.Local, "xmlns:"):
			out[a.Value] = strings.TrimPrefix(a.Name.Local, "xmlns:")
		}
	}
	return out
}

// applyPrefixes returns a copy of n with namespace URIs folded back into
// prefixed local names, so the encoder emits w:p rather than inventing
// its own xmlns declarations. The original tree is left untouched.
func applyPrefixes(n *node, prefixes map[string]string) *node {
	if n.isText {
		return n
	}
	out := &node{name: n.name, attrs: append([]xml.Attr(nil), n.attrs...)}
	if prefix, ok := prefixes[out.name.Space]; ok && prefix != "" {
		out.name = xml.Name{Local: prefix + ":" + out.name.Local}
	}
	for i, a := range out.attrs {
		if a.Name.Space == "xmlns" {
			// encoding/xml reports nested xmlns declarations with the
			// literal space "xmlns"; fold them back into the local name so
			// the encoder emits them verbatim.
			out.attrs[i].Name = xml.Name{Local: "xmlns:" + a.Name.Local}
			continue
		}
		if prefix, ok := prefixes[a.Name.Space]; ok && prefix != "" {
			out.attrs[i].Name = xml.Name{Local: prefix + ":" + a.Name.Local}
		}
	}
	if len(n.children) > 0 {
		out.children = make([]*node, len(n.children))
		for i, child := range n.children {
			out.children[i] = applyPrefixes(child, prefixes)
		}
	}
	return out
}

// extractRootTags returns the root element's start and end tags verbatim.
func extractRootTags(text string) (string, string, error) {
	start, end, name, err := findRootStartTag(text)
	if err != nil {
		return "", "", err
	}
	rootStart := text[start : end+1]
	endTag := "</" + name + ">"
	endPos := strings.LastIndex(text, endTag)
	if endPos == -1 {
		return "", "", fmt.Errorf("docx: root end tag not found")
	}
	return rootStart, endTag, nil
}

func findRootStartTag(text string) (int, int, string, error) {
	start, err := skipProlog(text)
	if err != nil {
		return 0, 0, "", err
	}
	var inQuote byte
	var i int
	for i = start + 1; i < len(text); i++ {
		c := text[i]
		if inQuote != 0 {
			if c == inQuote {
				inQuote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			inQuote = c
		case '>':
			name := rootTagName(text[start+1 : i])
			if name == "" {
				return 0, 0, "", fmt.Errorf("docx: root tag name missing")
			}
			return start, i, name, nil
		}
	}
	return 0, 0, "", fmt.Errorf("docx: root start tag not terminated")
}

// skipProlog advances past the XML declaration and any comments, returning
// the index of the root element's '<'.
func skipProlog(text string) (int, error) {
	i := 0
	for i < len(text) {
		idx := strings.IndexByte(text[i:], '<')
		if idx == -1 {
			return 0, fmt.Errorf("docx: root start tag not found")
		}
		i += idx
		if strings.HasPrefix(text[i:], "<?") {
			end := strings.Index(text[i:], "?>")
			if end == -1 {
				return 0, fmt.Errorf("docx: xml declaration not terminated")
			}
			i += end + 2
			continue
		}
		if strings.HasPrefix(text[i:], "<!--") {
			end := strings.Index(text[i:], "-->")
			if end == -1 {
				return 0, fmt.Errorf("docx: xml comment not terminated")
			}
			i += end + 3
			continue
		}
		return i, nil
	}
	return 0, fmt.Errorf("docx: root start tag not found")
}

func rootTagName(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw[0] == '/' {
		return ""
	}
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case ' ', '\t', '\n', '\r', '/':
			return raw[:i]
		}
	}
	return raw
}

// Tree helpers shared by the typed views.

// isElem reports whether n is an element with the given WordprocessingML
// local name.
func isElem(n *node, local string) bool {
	if n == nil || n.isText {
		return false
	}
	if n.name.Local != local {
		return false
	}
	return n.name.Space == "" || n.name.Space == wmlNS
}

// childElems returns the direct children of n matching local.
func childElems(n *node, local string) []*node {
	var out []*node
	for _, c := range n.children {
		if isElem(c, local) {
			out = append(out, c)
		}
	}
	return out
}

// firstChild returns the first direct child of n matching local, or nil.
func firstChild(n *node, local string) *node {
	for _, c := range n.children {
		if isElem(c, local) {
			return c
		}
	}
	return nil
}

// collectText concatenates the text content of every w:t descendant.
func collectText(n *node) string {
	var b strings.Builder
	var walk func(*node)
	walk = func(cur *node) {
		if isElem(cur, "t") {
			for _, c := range cur.children {
				if c.isText {
					b.WriteString(c.text)
				}
			}
			return
		}
		for _, c := range cur.children {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// attrValue returns the value of the named WordprocessingML attribute.
func attrValue(n *node, local string) string {
	for _, a := range n.attrs {
		if a.Name.Local == local && (a.Name.Space == "" || a.Name.Space == wmlNS) {
			return a.Value
		}
	}
	return ""
}

// wmlElem constructs an element in the WordprocessingML namespace.
func wmlElem(local string, children ...*node) *node {
	return &node{name: xml.Name{Space: wmlNS, Local: local}, children: children}
}

// textElem constructs a w:t carrying text, marked space-preserving when the
// text has significant leading or trailing whitespace.
func textElem(text string) *node {
	t := wmlElem("t", &node{isText: true, text: text})
	if text != strings.TrimSpace(text) {
		t.attrs = append(t.attrs, xml.Attr{Name: xml.Name{Space: xmlNS, Local: "space"}, Value: "preserve"})
	}
	return t
}
