package html

import (
	"fmt"
	"io"

	xhtml "golang.org/x/net/html"

	"github.com/quillkit/quill/internal/engine/document"
)

// Export writes doc as HTML markup. Inline spans become style tags,
// alignment spans become div align attributes, bullet runs become list
// items and image markers become img tags.
func Export(w io.Writer, doc *document.Document) error {
	ex := &exporter{w: w, doc: doc}
	return ex.run()
}

type exporter struct {
	w   io.Writer
	doc *document.Document
	err error
}

func (ex *exporter) run() error {
	length := ex.doc.Len()
	inList := false
	ls := document.Offset(0)
	for ls <= length {
		if ls == length && length > 0 {
			// A trailing newline closes the last block; it is not an
			// extra empty line.
			break
		}
		le := ls
		for le < length && ex.doc.TextRange(le, le+1) != "\n" {
			le++
		}
		ex.line(ls, le, &inList)
		if ls == length {
			break
		}
		ls = le + 1
		if ls > length {
			break
		}
	}
	if inList {
		ex.print("</ul>\n")
	}
	return ex.err
}

func (ex *exporter) line(ls, le document.Offset, inList *bool) {
	content := ls
	bullet := ex.bulletEnd(ls)
	if bullet > ls {
		if !*inList {
			ex.print("<ul>\n")
			*inList = true
		}
		content = bullet
		ex.print("<li>")
		ex.inline(content, le)
		ex.print("</li>\n")
		return
	}
	if *inList {
		ex.print("</ul>\n")
		*inList = false
	}

	switch ex.lineAlign(ls, le) {
	case document.JustifyCenter:
		ex.print(`<div align="center">`)
	case document.JustifyRight:
		ex.print(`<div align="right">`)
	default:
		ex.print("<div>")
	}
	if ls == le {
		ex.print("<br>")
	} else {
		ex.inline(content, le)
	}
	ex.print("</div>\n")
}

// inline emits [start, end) with minimal nested style tags, walking
// span boundaries instead of characters.
func (ex *exporter) inline(start, end document.Offset) {
	var open []document.Ref
	pos := start
	for pos < end {
		segEnd := end
		if b, ok := ex.doc.NextSpanBoundary(pos); ok && b < end {
			segEnd = b
		}

		want, image := ex.inlineRefs(pos)

		// Close down to the shared prefix, then open the rest.
		shared := 0
		for shared < len(open) && shared < len(want) && open[shared] == want[shared] {
			shared++
		}
		for i := len(open) - 1; i >= shared; i-- {
			ex.printTag(open[i], false)
		}
		open = open[:shared]
		for _, ref := range want[shared:] {
			ex.printTag(ref, true)
			open = append(open, ref)
		}

		if image != document.RefNone {
			if span, ok := ex.doc.Registry().Span(image); ok {
				ex.print(fmt.Sprintf("<img src=%q>", span.Value))
			}
		} else {
			ex.print(xhtml.EscapeString(ex.doc.TextRange(pos, segEnd)))
		}
		pos = segEnd
	}
	for i := len(open) - 1; i >= 0; i-- {
		ex.printTag(open[i], false)
	}
}

// inlineRefs returns the style handles to render at pos, excluding
// line-level kinds, plus the image handle when pos sits on a marker.
func (ex *exporter) inlineRefs(pos document.Offset) ([]document.Ref, document.Ref) {
	var refs []document.Ref
	image := document.RefNone
	reg := ex.doc.Registry()
	for _, ref := range ex.doc.SpansAt(pos) {
		kind, ok := reg.Kind(ref)
		if !ok {
			continue
		}
		switch {
		case kind == document.SpanImage:
			image = ref
		case kind == document.SpanBullet || kind.IsAlignment():
			// line-level, rendered by the caller
		default:
			refs = append(refs, ref)
		}
	}
	return refs, image
}

func (ex *exporter) bulletEnd(ls document.Offset) document.Offset {
	reg := ex.doc.Registry()
	for _, ref := range ex.doc.SpansAt(ls) {
		if kind, ok := reg.Kind(ref); ok && kind == document.SpanBullet {
			if _, end, ok := ex.doc.SpanExtent(ref, ls); ok {
				return end
			}
		}
	}
	return ls
}

func (ex *exporter) lineAlign(ls, le document.Offset) document.Justification {
	if ls == le {
		if ls >= ex.doc.Len() {
			return ex.doc.LastLineJustify()
		}
		return document.JustifyLeft
	}
	reg := ex.doc.Registry()
	for _, ref := range ex.doc.SpansAt(ls) {
		kind, ok := reg.Kind(ref)
		if !ok {
			continue
		}
		switch kind {
		case document.SpanAlignCenter:
			return document.JustifyCenter
		case document.SpanAlignRight:
			return document.JustifyRight
		}
	}
	return document.JustifyLeft
}

func (ex *exporter) printTag(ref document.Ref, opening bool) {
	span, ok := ex.doc.Registry().Span(ref)
	if !ok {
		return
	}
	o, c := tagPair(span)
	if opening {
		ex.print(o)
	} else {
		ex.print(c)
	}
}

func tagPair(span document.Span) (opening, closing string) {
	switch span.Kind {
	case document.SpanBold:
		return "<b>", "</b>"
	case document.SpanItalic:
		return "<i>", "</i>"
	case document.SpanUnderline:
		return "<u>", "</u>"
	case document.SpanStrike:
		return "<s>", "</s>"
	case document.SpanSubscript:
		return "<sub>", "</sub>"
	case document.SpanSuperscript:
		return "<sup>", "</sup>"
	case document.SpanForeground:
		return fmt.Sprintf("<font color=%q>", span.Value), "</font>"
	case document.SpanFontSize:
		return fmt.Sprintf("<font size=%q>", span.Value), "</font>"
	case document.SpanFont:
		return fmt.Sprintf("<font face=%q>", span.Value), "</font>"
	}
	return "", ""
}

func (ex *exporter) print(s string) {
	if ex.err != nil || s == "" {
		return
	}
	_, ex.err = io.WriteString(ex.w, s)
}
