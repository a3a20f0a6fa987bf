package html

import (
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	xhtml "golang.org/x/net/html"

	"github.com/quillkit/quill/internal/engine/document"
)

// BulletMarker is the text prefix a list item carries; it is tagged
// with a bullet span so cursor logic can step over it as a unit.
const BulletMarker = "• "

// frame is one open tag: the spans it started and where they started.
type frame struct {
	tag   string
	refs  []document.Ref
	start document.Offset
	block bool
}

type importer struct {
	doc *document.Document
	pos document.Offset

	open []frame

	// pendingSpace coalesces inter-token whitespace into one space.
	pendingSpace bool

	lastAlign document.Justification
}

// Import appends the HTML document read from r to doc and returns the
// justification in effect on the last line.
func Import(doc *document.Document, r io.Reader) (document.Justification, error) {
	im := &importer{doc: doc, pos: doc.Len()}
	tz := xhtml.NewTokenizer(r)
	for {
		switch tz.Next() {
		case xhtml.ErrorToken:
			if err := tz.Err(); err != io.EOF {
				return im.lastAlign, fmt.Errorf("parse html: %w", err)
			}
			im.closeAll()
			doc.SetLastLineJustify(im.lastAlign)
			return im.lastAlign, nil
		case xhtml.TextToken:
			im.text(string(tz.Text()))
		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			im.startTag(tz.Token())
		case xhtml.EndTagToken:
			name, _ := tz.TagName()
			im.endTag(string(name))
		}
	}
}

func (im *importer) startTag(tok xhtml.Token) {
	switch tok.Data {
	case "b", "strong":
		im.push(tok.Data, document.Span{Kind: document.SpanBold})
	case "i", "em":
		im.push(tok.Data, document.Span{Kind: document.SpanItalic})
	case "u":
		im.push(tok.Data, document.Span{Kind: document.SpanUnderline})
	case "s", "strike", "del":
		im.push(tok.Data, document.Span{Kind: document.SpanStrike})
	case "sub":
		im.push(tok.Data, document.Span{Kind: document.SpanSubscript})
	case "sup":
		im.push(tok.Data, document.Span{Kind: document.SpanSuperscript})
	case "font":
		var spans []document.Span
		for _, a := range tok.Attr {
			switch a.Key {
			case "color":
				spans = append(spans, document.Span{Kind: document.SpanForeground, Value: a.Val})
			case "size":
				spans = append(spans, document.Span{Kind: document.SpanFontSize, Value: a.Val})
			case "face":
				spans = append(spans, document.Span{Kind: document.SpanFont, Value: a.Val})
			}
		}
		im.push("font", spans...)
	case "div", "p":
		im.newline()
		align, ok := alignSpan(tok)
		im.lastAlign = alignJustification(tok)
		f := frame{tag: tok.Data, start: im.pos, block: true}
		if ok {
			f.refs = []document.Ref{im.doc.Intern(align)}
		}
		im.open = append(im.open, f)
	case "ul", "ol":
		im.newline()
		im.open = append(im.open, frame{tag: tok.Data, start: im.pos, block: true})
	case "li":
		im.newline()
		start := im.pos
		im.insert(BulletMarker)
		bullet := im.doc.Intern(document.Span{Kind: document.SpanBullet})
		_ = im.doc.ApplySpan(bullet, start, im.pos)
		im.open = append(im.open, frame{tag: "li", start: im.pos, block: true})
	case "br":
		im.insert("\n")
		im.pendingSpace = false
	case "img":
		var id string
		for _, a := range tok.Attr {
			if a.Key == "src" || a.Key == "id" {
				id = a.Val
				break
			}
		}
		im.flushSpace()
		if _, err := im.doc.InsertImage(im.pos, id); err == nil {
			im.pos++
		}
	}
}

func (im *importer) endTag(name string) {
	for i := len(im.open) - 1; i >= 0; i-- {
		if im.open[i].tag != name {
			continue
		}
		// Close everything above the match too; stray nesting is
		// tolerated, not preserved.
		for j := len(im.open) - 1; j >= i; j-- {
			im.closeFrame(im.open[j])
		}
		im.open = im.open[:i]
		return
	}
}

func (im *importer) closeFrame(f frame) {
	for _, ref := range f.refs {
		_ = im.doc.ApplySpan(ref, f.start, im.pos)
	}
	if f.block {
		im.newline()
	}
}

func (im *importer) closeAll() {
	for i := len(im.open) - 1; i >= 0; i-- {
		im.closeFrame(im.open[i])
	}
	im.open = nil
}

func (im *importer) push(tag string, spans ...document.Span) {
	im.flushSpace()
	f := frame{tag: tag, start: im.pos}
	for _, s := range spans {
		f.refs = append(f.refs, im.doc.Intern(s))
	}
	im.open = append(im.open, f)
}

// text inserts a text token with HTML whitespace collapsing: runs of
// whitespace become one space, dropped entirely at line starts.
func (im *importer) text(raw string) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		im.pendingSpace = im.pendingSpace || raw != ""
		return
	}
	if leadingSpace(raw) {
		im.pendingSpace = true
	}
	im.flushSpace()
	im.insert(strings.Join(strings.Fields(raw), " "))
	im.pendingSpace = trailingSpace(raw)
}

func (im *importer) flushSpace() {
	if im.pendingSpace && !im.atLineStart() {
		im.insert(" ")
	}
	im.pendingSpace = false
}

func (im *importer) insert(s string) {
	end, err := im.doc.Insert(im.pos, s)
	if err == nil {
		im.pos = end
	}
}

func (im *importer) newline() {
	if im.atLineStart() {
		im.pendingSpace = false
		return
	}
	im.insert("\n")
	im.pendingSpace = false
}

func (im *importer) atLineStart() bool {
	return im.pos == 0 || im.doc.TextRange(im.pos-1, im.pos) == "\n"
}

func alignSpan(tok xhtml.Token) (document.Span, bool) {
	switch alignJustification(tok) {
	case document.JustifyCenter:
		return document.Span{Kind: document.SpanAlignCenter}, true
	case document.JustifyRight:
		return document.Span{Kind: document.SpanAlignRight}, true
	}
	return document.Span{}, false
}

func alignJustification(tok xhtml.Token) document.Justification {
	for _, a := range tok.Attr {
		if a.Key != "align" {
			continue
		}
		switch strings.ToLower(a.Val) {
		case "center":
			return document.JustifyCenter
		case "right":
			return document.JustifyRight
		}
	}
	return document.JustifyLeft
}

func leadingSpace(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsSpace(r)
}

func trailingSpace(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return unicode.IsSpace(r)
}
