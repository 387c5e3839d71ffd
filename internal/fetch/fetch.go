// Package fetch is the boundary between the scraper and whatever actually
// loads a page. The listing site renders its results with JavaScript, so the
// default implementation drives a headless browser, but the rest of the
// pipeline only ever sees "give me the document for this URL or fail".
package fetch

import "context"

// Session fetches rendered documents over one exclusive browser/transport
// resource. A session is not safe for concurrent use; parallel workers each
// open their own. Close must be called on every exit path of a scraping
// pass.
type Session interface {
	Fetch(ctx context.Context, url string) (string, error)
	Close() error
}

// Opener hands out isolated Sessions.
type Opener interface {
	Open(ctx context.Context) (Session, error)
}
