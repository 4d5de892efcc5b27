package schema

const (
	// MetadataKeySource is the canonical URL the content was fetched from.
	// It is the deduplication key for crawled pages.
	MetadataKeySource = "source"
	// MetadataKeyChunk is the zero-based position of a chunk within its source document.
	MetadataKeyChunk = "chunk"
	// MetadataKeyScore is the similarity score attached to a chunk at retrieval time.
	MetadataKeyScore = "score"
)

// Document is the central data structure representing a piece of text and its associated data.
// It is the primary data carrier throughout the pipeline: a freshly crawled page,
// a chunk of one, and a retrieval result are all Documents at different stages.
type Document struct {
	// ID is the unique identifier for this document or chunk.
	ID string

	// Text is the string content.
	Text string

	// Embedding is the vector representation of the text.
	Embedding []float32

	// Metadata holds arbitrary data about the document, keyed by the
	// MetadataKey* constants above.
	Metadata map[string]interface{}
}

// Source returns the canonical source URL, or "" when unset.
func (d *Document) Source() string {
	if d.Metadata == nil {
		return ""
	}
	if s, ok := d.Metadata[MetadataKeySource].(string); ok {
		return s
	}
	return ""
}

// CopyMetadata returns a shallow copy of the metadata map, so chunks derived
// from a document do not share it.
func (d *Document) CopyMetadata() map[string]interface{} {
	md := make(map[string]interface{}, len(d.Metadata))
	for k, v := range d.Metadata {
		md[k] = v
	}
	return md
}
