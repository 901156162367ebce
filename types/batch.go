package types

// Per-file status inside an upload batch.
const (
	BatchFilePending    = "pending"
	BatchFileProcessing = "processing"
	BatchFileSuccess    = "success"
	BatchFileFailed     = "failed"
)

// BatchFileState tracks one file through save -> index -> persist.
type BatchFileState struct {
	Name   string          `json:"name"`
	Status string          `json:"status"`
	Error  string          `json:"error,omitempty"`
	Record *DocumentRecord `json:"record,omitempty"`
	Chunks int             `json:"chunks,omitempty"`
}

// BatchUploadState is the ephemeral per-batch progress snapshot. The batch
// is identified by a fingerprint of the selected file set; a different
// selection starts a new batch.
type BatchUploadState struct {
	BatchID      string           `json:"batch_id"`
	Files        []BatchFileState `json:"files"`
	SuccessCount int              `json:"success_count"`
	FailedCount  int              `json:"failed_count"`
	PendingCount int              `json:"pending_count"`
}
