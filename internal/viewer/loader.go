package viewer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/quillsign/quillsign/internal/sign"
)

// FailureReason classifies why a renderer rejected a payload.
type FailureReason string

const (
	FailureInvalidFormat   FailureReason = "invalid_format"
	FailureCorruptData     FailureReason = "corrupt_data"
	FailureUnsupportedType FailureReason = "unsupported_type"
)

// RenderError is a typed renderer rejection. The loader reacts only to
// success/failure; the reason is carried through for the diagnostic view.
type RenderError struct {
	Renderer string
	Reason   FailureReason
	Detail   string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%s renderer: %s (%s)", e.Renderer, e.Reason, e.Detail)
}

// RenderedPage is one page of rendered output: its 1-based number and its
// natural size in pixels at zoom 1.
type RenderedPage struct {
	Number int
	Width  float64
	Height float64
}

// RenderResult is a successful render.
type RenderResult struct {
	Pages      []RenderedPage
	TotalPages int
}

// Renderer turns raw uploaded content into pages. Implementations inspect the
// content itself (magic bytes, markup) rather than trusting the declared mime
// type, which is only a hint.
type Renderer interface {
	Name() string
	Render(ctx context.Context, content []byte, contentType, fileName string) (*RenderResult, error)
}

// View is what a load attempt produces for the overlay: either a render result
// with the renderer that won, or a diagnostic error view. Exactly one of
// Result and Failure is set.
type View struct {
	DocumentID string
	Renderer   string
	Result     *RenderResult

	// Failure: the last renderer's typed rejection, shown as a static
	// diagnostic view instead of crashing the surface
	Failure *RenderError
}

// Loader tries renderers in a fixed order and takes the first success.
type Loader struct {
	renderers []Renderer
	logger    *slog.Logger
}

// NewLoader builds a loader with the default fallback chain:
// PDF, then HTML, then image, then plain text.
func NewLoader(logger *slog.Logger) *Loader {
	return &Loader{
		renderers: []Renderer{
			pdfRenderer{},
			htmlRenderer{},
			imageRenderer{},
			textRenderer{},
		},
		logger: logger,
	}
}

// Render runs the fallback chain over the document's content. Every renderer
// may reject; the returned View then carries the final rejection as a
// diagnostic instead of an error, so a bad upload still produces something to
// show. A cancelled context is the only way Render returns an error.
func (l *Loader) Render(ctx context.Context, doc *sign.Document) (*View, error) {
	view := &View{DocumentID: doc.ID}

	var last *RenderError
	for _, r := range l.renderers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := r.Render(ctx, doc.Content, doc.ContentType, doc.FileName)
		if err == nil {
			view.Renderer = r.Name()
			view.Result = result
			return view, nil
		}
		re, ok := err.(*RenderError)
		if !ok {
			re = &RenderError{Renderer: r.Name(), Reason: FailureCorruptData, Detail: err.Error()}
		}
		last = re
		l.logger.Debug("renderer rejected content",
			slog.String("document_id", doc.ID),
			slog.String("renderer", r.Name()),
			slog.String("reason", string(re.Reason)),
		)
	}
	if last == nil {
		last = &RenderError{Renderer: "none", Reason: FailureUnsupportedType, Detail: "no renderer configured"}
	}
	view.Failure = last
	return view, nil
}

// Surface is one output area a document is rendered onto. At most one render
// is in flight per surface: starting a new load cancels the previous one, so
// two renders can never race onto the same output.
type Surface struct {
	mu      sync.Mutex
	loader  *Loader
	cancel  context.CancelFunc
	pending sync.WaitGroup
}

// NewSurface creates a surface backed by the given loader.
func NewSurface(loader *Loader) *Surface {
	return &Surface{loader: loader}
}

// Load renders the document asynchronously and calls deliver with the
// resulting view. A load superseded by a newer one is dropped silently:
// deliver is never called for it.
func (s *Surface) Load(ctx context.Context, doc *sign.Document, deliver func(*View)) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	loadCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.pending.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.pending.Done()
		view, err := s.loader.Render(loadCtx, doc)
		if err != nil {
			return // superseded or caller gone
		}
		if loadCtx.Err() != nil {
			return
		}
		deliver(view)
	}()
}

// Close cancels any in-flight load and waits for it to drain.
func (s *Surface) Close() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	s.pending.Wait()
}

// letterPage is the default page size reported by renderers that do not parse
// real layout: US letter at 96 dpi.
func letterPage(n int) RenderedPage {
	return RenderedPage{Number: n, Width: 816, Height: 1056}
}

type pdfRenderer struct{}

func (pdfRenderer) Name() string { return "pdf" }

func (pdfRenderer) Render(_ context.Context, content []byte, contentType, fileName string) (*RenderResult, error) {
	looksLike := strings.Contains(contentType, "pdf") || strings.HasSuffix(strings.ToLower(fileName), ".pdf")
	if !bytes.HasPrefix(content, []byte("%PDF-")) {
		if looksLike {
			return nil, &RenderError{Renderer: "pdf", Reason: FailureCorruptData, Detail: "declared as PDF but missing %PDF- header"}
		}
		return nil, &RenderError{Renderer: "pdf", Reason: FailureInvalidFormat, Detail: "no PDF header"}
	}
	// page count from the /Type /Pages object's /Count when present
	pages := 1
	if i := bytes.Index(content, []byte("/Count ")); i >= 0 {
		n := 0
		for _, c := range content[i+len("/Count "):] {
			if c < '0' || c > '9' {
				break
			}
			n = n*10 + int(c-'0')
		}
		if n > 0 {
			pages = n
		}
	}
	result := &RenderResult{TotalPages: pages}
	for p := 1; p <= pages; p++ {
		result.Pages = append(result.Pages, letterPage(p))
	}
	return result, nil
}

type htmlRenderer struct{}

func (htmlRenderer) Name() string { return "html" }

func (htmlRenderer) Render(_ context.Context, content []byte, contentType, fileName string) (*RenderResult, error) {
	head := strings.ToLower(string(content[:min(len(content), 512)]))
	if !strings.Contains(head, "<html") && !strings.Contains(head, "<!doctype html") {
		return nil, &RenderError{Renderer: "html", Reason: FailureInvalidFormat, Detail: "no html markup found"}
	}
	if !utf8.Valid(content) {
		return nil, &RenderError{Renderer: "html", Reason: FailureCorruptData, Detail: "markup is not valid UTF-8"}
	}
	return &RenderResult{Pages: []RenderedPage{letterPage(1)}, TotalPages: 1}, nil
}

type imageRenderer struct{}

func (imageRenderer) Name() string { return "image" }

var imageMagic = map[string][]byte{
	"png":  {0x89, 'P', 'N', 'G'},
	"jpeg": {0xFF, 0xD8, 0xFF},
	"gif":  []byte("GIF8"),
}

func (imageRenderer) Render(_ context.Context, content []byte, contentType, fileName string) (*RenderResult, error) {
	for _, magic := range imageMagic {
		if bytes.HasPrefix(content, magic) {
			return &RenderResult{Pages: []RenderedPage{letterPage(1)}, TotalPages: 1}, nil
		}
	}
	return nil, &RenderError{Renderer: "image", Reason: FailureInvalidFormat, Detail: "no known image signature"}
}

type textRenderer struct{}

func (textRenderer) Name() string { return "text" }

func (textRenderer) Render(_ context.Context, content []byte, contentType, fileName string) (*RenderResult, error) {
	if len(content) == 0 {
		return nil, &RenderError{Renderer: "text", Reason: FailureUnsupportedType, Detail: "empty content"}
	}
	if !utf8.Valid(content) || bytes.ContainsRune(content, 0) {
		return nil, &RenderError{Renderer: "text", Reason: FailureUnsupportedType, Detail: "content is not text"}
	}
	// roughly 60 lines per rendered page
	lines := bytes.Count(content, []byte("\n")) + 1
	pages := (lines + 59) / 60
	result := &RenderResult{TotalPages: pages}
	for p := 1; p <= pages; p++ {
		result.Pages = append(result.Pages, letterPage(p))
	}
	return result, nil
}
