package document

import "fmt"

// SpanKind identifies the style predicate a span carries.
type SpanKind uint8

const (
	// SpanBold renders text in a bold weight.
	SpanBold SpanKind = iota
	// SpanItalic renders text italicized.
	SpanItalic
	// SpanUnderline underlines text.
	SpanUnderline
	// SpanStrike strikes text through.
	SpanStrike
	// SpanAlignLeft left-justifies the lines it covers.
	SpanAlignLeft
	// SpanAlignCenter center-justifies the lines it covers.
	SpanAlignCenter
	// SpanAlignRight right-justifies the lines it covers.
	SpanAlignRight
	// SpanBullet marks a multi-character bullet prefix at the start of a line.
	SpanBullet
	// SpanForeground sets the foreground color; Value holds the color.
	SpanForeground
	// SpanFontSize sets the font size; Value holds the size in points.
	SpanFontSize
	// SpanFont sets the font family; Value holds the family name.
	SpanFont
	// SpanSuperscript raises text; Value holds the size in points.
	SpanSuperscript
	// SpanSubscript lowers text; Value holds the size in points.
	SpanSubscript
	// SpanImage marks an object-replacement character; Value holds the image id.
	SpanImage
)

// String returns the span kind name.
func (k SpanKind) String() string {
	switch k {
	case SpanBold:
		return "bold"
	case SpanItalic:
		return "italic"
	case SpanUnderline:
		return "underline"
	case SpanStrike:
		return "strike"
	case SpanAlignLeft:
		return "align-left"
	case SpanAlignCenter:
		return "align-center"
	case SpanAlignRight:
		return "align-right"
	case SpanBullet:
		return "bullet"
	case SpanForeground:
		return "forecolor"
	case SpanFontSize:
		return "font-size"
	case SpanFont:
		return "font"
	case SpanSuperscript:
		return "superscript"
	case SpanSubscript:
		return "subscript"
	case SpanImage:
		return "image"
	default:
		return "unknown"
	}
}

// IsAlignment returns true for the three line-justification kinds.
func (k SpanKind) IsAlignment() bool {
	return k == SpanAlignLeft || k == SpanAlignCenter || k == SpanAlignRight
}

// Span is a style predicate plus the scalar parameter it carries.
// Parameterless kinds (bold, italic, ...) leave Value empty.
// Span is a value type; identity comes from interning, see Registry.
type Span struct {
	Kind  SpanKind
	Value string
}

// String returns a human-readable representation of the span.
func (s Span) String() string {
	if s.Value == "" {
		return s.Kind.String()
	}
	return fmt.Sprintf("%s(%s)", s.Kind, s.Value)
}

// Ref is an interned span handle. Refs are compared by value; two equal
// refs always denote the same Span. The zero value RefNone denotes no span.
type Ref int

// RefNone is the absent span handle.
const RefNone Ref = 0

// Registry interns spans and hands out stable Ref handles.
// Handles stay valid for the lifetime of the registry, so undo
// snapshots can outlive the live span layout they were copied from.
type Registry struct {
	spans []Span
	index map[Span]Ref
}

// NewRegistry creates an empty span registry.
func NewRegistry() *Registry {
	return &Registry{
		index: make(map[Span]Ref),
	}
}

// Intern returns the handle for span, allocating one on first sight.
func (r *Registry) Intern(span Span) Ref {
	if ref, ok := r.index[span]; ok {
		return ref
	}
	r.spans = append(r.spans, span)
	ref := Ref(len(r.spans)) // handles start at 1; 0 is RefNone
	r.index[span] = ref
	return ref
}

// Span returns the span behind a handle.
func (r *Registry) Span(ref Ref) (Span, bool) {
	if ref <= 0 || int(ref) > len(r.spans) {
		return Span{}, false
	}
	return r.spans[ref-1], true
}

// Kind returns the kind behind a handle, or a false ok for RefNone and
// unknown handles.
func (r *Registry) Kind(ref Ref) (SpanKind, bool) {
	span, ok := r.Span(ref)
	return span.Kind, ok
}

// Len returns the number of interned spans.
func (r *Registry) Len() int {
	return len(r.spans)
}

// Justification is a paragraph justification.
type Justification int

const (
	// JustifyLeft aligns lines to the left margin.
	JustifyLeft Justification = iota
	// JustifyCenter centers lines.
	JustifyCenter
	// JustifyRight aligns lines to the right margin.
	JustifyRight
)

// String returns the justification name.
func (j Justification) String() string {
	switch j {
	case JustifyLeft:
		return "left"
	case JustifyCenter:
		return "center"
	case JustifyRight:
		return "right"
	default:
		return "left"
	}
}
