package types

type DataResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type AskResponse struct {
	Answer  string  `json:"answer"`
	Sources []Chunk `json:"sources"`
}

type StatusResponse struct {
	BaseDocumentCount int    `json:"base_document_count"`
	UploadedDocuments int    `json:"uploaded_documents"`
	StorageUsed       string `json:"storage_used"`
}
