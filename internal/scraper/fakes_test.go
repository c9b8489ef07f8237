package scraper

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type noopPacer struct{}

func (noopPacer) Wait(ctx context.Context) error { return ctx.Err() }

type fakeElement struct {
	text  string
	attrs map[string]string
}

func (e *fakeElement) Text() (string, error) { return e.text, nil }

func (e *fakeElement) Attribute(name string) (string, error) {
	return e.attrs[name], nil
}

func textEl(text string) Element { return &fakeElement{text: text} }

func attrEl(attrs map[string]string) Element { return &fakeElement{attrs: attrs} }

// fakeDoc is one rendered page: what Evaluate, Content, Title and Locate
// return once the fake page has navigated to its URL.
type fakeDoc struct {
	title       string
	html        string
	evalResult  interface{}
	elements    map[string][]Element
	navErr      error
	panicOnEval bool
}

type fakePage struct {
	docs        map[string]*fakeDoc
	current     *fakeDoc
	navigations []string
	closed      bool
}

func newFakePage(doc *fakeDoc) *fakePage {
	return &fakePage{current: doc}
}

func (p *fakePage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.navigations = append(p.navigations, url)
	doc, ok := p.docs[url]
	if !ok {
		p.current = &fakeDoc{}
		return nil
	}
	if doc.navErr != nil {
		return doc.navErr
	}
	p.current = doc
	return nil
}

func (p *fakePage) Content() (string, error) {
	if p.current == nil {
		return "", nil
	}
	return p.current.html, nil
}

func (p *fakePage) Title() (string, error) {
	if p.current == nil {
		return "", nil
	}
	return p.current.title, nil
}

func (p *fakePage) Evaluate(script string) (interface{}, error) {
	if strings.HasPrefix(script, "window.scrollBy") {
		return nil, nil
	}
	if p.current == nil {
		return nil, nil
	}
	if p.current.panicOnEval {
		panic("evaluate blew up")
	}
	return p.current.evalResult, nil
}

func (p *fakePage) Locate(selector string) ([]Element, error) {
	if p.current == nil {
		return nil, nil
	}
	return p.current.elements[selector], nil
}

func (p *fakePage) Close() error {
	p.closed = true
	return nil
}

type fakeSession struct {
	page   *fakePage
	closed bool
}

func (s *fakeSession) NewPage() (Page, error) { return s.page, nil }

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

// fakeFactory hands out one fresh session per attempt and remembers them
// all so tests can assert every session was released.
type fakeFactory struct {
	docs     map[string]*fakeDoc
	sessions []*fakeSession
}

func (f *fakeFactory) factory(headless, mobile bool) (Session, error) {
	s := &fakeSession{page: &fakePage{docs: f.docs}}
	f.sessions = append(f.sessions, s)
	return s, nil
}
