package shroud

// Codec provides content-type aware marshaling.
//
// Marshal is always handed a *Document by Processor.Store. Codecs that can
// preserve key order should encode Document.Entries in order; Unmarshal must
// be able to decode a document into a map[string]any.
type Codec interface {
	// ContentType returns the MIME type for this codec (e.g., "application/json").
	ContentType() string

	// Marshal encodes v into bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes data into v.
	Unmarshal(data []byte, v any) error
}
