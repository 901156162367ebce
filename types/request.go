package types

type AskRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
}

type DeleteDocumentRequest struct {
	FileID string `json:"file_id"`
}
