package selection

import "github.com/utafrali/variant-service/internal/catalog"

// Reporter receives data-quality findings noticed while resolving. It must
// not block; reporting never changes the outcome of a resolver call.
type Reporter interface {
	Report(issue catalog.Issue)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(issue catalog.Issue)

func (f ReporterFunc) Report(issue catalog.Issue) { f(issue) }

type nopReporter struct{}

func (nopReporter) Report(catalog.Issue) {}
