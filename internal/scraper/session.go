package scraper

import (
	"context"
	"time"
)

// Element is a handle to a located DOM element.
type Element interface {
	Text() (string, error)
	Attribute(name string) (string, error)
}

// Page is the subset of a browser page the extraction engine needs.
// The production implementation wraps a playwright page; tests use fakes.
type Page interface {
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	Content() (string, error)
	Title() (string, error)
	Evaluate(script string) (interface{}, error)
	Locate(selector string) ([]Element, error)
	Close() error
}

// Session owns one browser context and hands out pages.
type Session interface {
	NewPage() (Page, error)
	Close() error
}

// SessionFactory opens a fresh browser session for a run.
type SessionFactory func(headless, mobile bool) (Session, error)
