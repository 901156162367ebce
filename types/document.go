package types

// SourceType identifies which corpus a chunk belongs to.
type SourceType string

const (
	SourceTypeBase SourceType = "base"
	SourceTypeUser SourceType = "user"
)

// DocumentRecord is the metadata entry persisted for every uploaded file.
// FileID is the derived storage name; Hash is the dedup identity key.
type DocumentRecord struct {
	FileID           string `json:"file_id"`
	OriginalFilename string `json:"original_filename"`
	StoragePath      string `json:"storage_path"`
	Size             int64  `json:"size"`
	SizeFormatted    string `json:"size_formatted"`
	Hash             string `json:"hash"`
	UploadTime       string `json:"upload_time"`
	Indexed          bool   `json:"indexed"`
}

// Chunk is a bounded span of document text with provenance metadata,
// the atomic unit stored in a vector collection. Immutable once created;
// updates are delete + reinsert.
type Chunk struct {
	Content    string     `json:"content"`
	Source     string     `json:"source"`
	Page       int        `json:"page"`
	SourceType SourceType `json:"source_type"`

	// Set only for user-corpus chunks.
	OriginalFilename string `json:"original_filename,omitempty"`
	UploadTime       string `json:"upload_time,omitempty"`
	FileSize         int64  `json:"file_size,omitempty"`
}

// UserDocumentMetadata carries the identifying fields attached to every
// chunk produced from a user upload.
type UserDocumentMetadata struct {
	OriginalFilename string
	UploadTime       string
	FileSize         int64
}

// DocumentServiceConfig contains chunking options for PDF processing.
type DocumentServiceConfig struct {
	ChunkSize    int // Maximum size of a text window, in runes
	ChunkOverlap int // Runes shared between consecutive windows
}
