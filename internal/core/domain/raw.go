package domain

// RawFile represents opaque bytes handed to the ingestion surface
// before extraction. It is the extractor's input.
type RawFile struct {
	// Name is the original file name.
	Name string

	// MIMEType is the content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}
