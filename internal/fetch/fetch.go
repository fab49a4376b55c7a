// Package fetch holds the types shared by the link-manifest and web-crawl
// fetchers: both ultimately produce a slice of Document values for the
// ingestion pipeline to chunk and embed.
package fetch

// Document is a single fetched page, already carrying enough metadata for
// the ingestion pipeline to derive a store row without re-deriving path or
// section information.
type Document struct {
	URL         string
	Title       string
	Content     string
	Path        string
	Section     string
	Description string
	Optional    bool
}
