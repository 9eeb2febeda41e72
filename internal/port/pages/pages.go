// Package pages defines the note-page lookup port for the notes provider.
package pages

import "context"

// Page is the simplified page view returned by the notes API.
type Page struct {
	ID string

	// Today reports the state of the "Today" checkbox property.
	// False when the property is absent.
	Today bool

	// Title is the page title, "Unknown Title" when none could be extracted.
	Title string
}

// Client is the port interface for fetching page properties.
type Client interface {
	FetchPage(ctx context.Context, pageID string) (Page, error)
}
