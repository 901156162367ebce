package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"coursebot/types"
	"coursebot/utils"
)

const metadataFilename = "document_metadata.json"

var pdfMagic = []byte("%PDF")

// DocumentService persists uploaded file bytes plus a metadata record per
// file. Metadata lives in one flat JSON file beside the uploads, rewritten
// in full on every mutation; single-writer discipline is assumed.
type DocumentService struct {
	uploadDir     string
	metadataPath  string
	maxUploadSize int64
}

func NewDocumentService(uploadDir string, maxUploadSizeMB int64) (*DocumentService, error) {
	if err := utils.EnsureDir(uploadDir); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	if maxUploadSizeMB <= 0 {
		maxUploadSizeMB = 50
	}
	return &DocumentService{
		uploadDir:     uploadDir,
		metadataPath:  filepath.Join(uploadDir, metadataFilename),
		maxUploadSize: maxUploadSizeMB << 20,
	}, nil
}

func (s *DocumentService) loadMetadata() (map[string]types.DocumentRecord, error) {
	data, err := os.ReadFile(s.metadataPath)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]types.DocumentRecord{}, nil
		}
		return nil, &types.MetadataError{Err: err}
	}
	records := map[string]types.DocumentRecord{}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &types.MetadataError{Err: err}
	}
	return records, nil
}

func (s *DocumentService) saveMetadata(records map[string]types.DocumentRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return &types.MetadataError{Err: err}
	}
	if err := os.WriteFile(s.metadataPath, data, 0644); err != nil {
		return &types.MetadataError{Err: err}
	}
	return nil
}

// Validate rejects non-PDF declared types, oversize content, empty
// filenames and content that does not start with the %PDF magic bytes.
// The first failing check's reason is returned.
func (s *DocumentService) Validate(filename, declaredType string, content []byte) error {
	if declaredType != "application/pdf" {
		return &types.ValidationError{Reason: fmt.Sprintf("unsupported file type %q, only PDF is accepted", declaredType)}
	}
	if int64(len(content)) > s.maxUploadSize {
		return &types.ValidationError{Reason: fmt.Sprintf(
			"file too large: %s exceeds the %s limit",
			utils.FormatFileSize(int64(len(content))), utils.FormatFileSize(s.maxUploadSize))}
	}
	if filename == "" {
		return &types.ValidationError{Reason: "missing filename"}
	}
	if !bytes.HasPrefix(content, pdfMagic) {
		return &types.ValidationError{Reason: "content is not a valid PDF file"}
	}
	return nil
}

// CheckDuplicate returns the record whose content hash matches, if any.
func (s *DocumentService) CheckDuplicate(content []byte) (*types.DocumentRecord, error) {
	hash := utils.HashBytes(content)
	records, err := s.loadMetadata()
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		if record.Hash == hash {
			return &record, nil
		}
	}
	return nil, nil
}

// Upload validates, rejects duplicates, writes the bytes under a derived
// unique name and persists a DocumentRecord with Indexed=false. Validation
// and duplicate failures never touch storage; a metadata failure after the
// write removes the just-written file again.
func (s *DocumentService) Upload(originalFilename, declaredType string, content []byte) (*types.DocumentRecord, error) {
	if err := s.Validate(originalFilename, declaredType, content); err != nil {
		return nil, err
	}

	existing, err := s.CheckDuplicate(content)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &types.DuplicateError{Existing: existing}
	}

	fileID := utils.GenerateUniqueFilename(originalFilename)
	storagePath := filepath.Join(s.uploadDir, fileID)
	if err := os.WriteFile(storagePath, content, 0644); err != nil {
		return nil, &types.StorageError{Op: "write", Err: err}
	}

	record := types.DocumentRecord{
		FileID:           fileID,
		OriginalFilename: originalFilename,
		StoragePath:      storagePath,
		Size:             int64(len(content)),
		SizeFormatted:    utils.FormatFileSize(int64(len(content))),
		Hash:             utils.HashBytes(content),
		UploadTime:       time.Now().Format("2006-01-02 15:04:05"),
		Indexed:          false,
	}

	records, err := s.loadMetadata()
	if err != nil {
		os.Remove(storagePath)
		return nil, err
	}
	records[fileID] = record
	if err := s.saveMetadata(records); err != nil {
		os.Remove(storagePath)
		return nil, err
	}
	return &record, nil
}

// Delete removes the backing file and then the metadata entry. An unknown
// file_id is ErrNotFound; a missing backing file is reported as a storage
// failure and leaves the metadata entry in place.
func (s *DocumentService) Delete(fileID string) error {
	records, err := s.loadMetadata()
	if err != nil {
		return err
	}
	record, ok := records[fileID]
	if !ok {
		return types.ErrNotFound
	}

	if err := os.Remove(record.StoragePath); err != nil {
		return &types.StorageError{Op: "delete", Err: err}
	}

	delete(records, fileID)
	return s.saveMetadata(records)
}

// List returns all records sorted by upload time, most recent first.
func (s *DocumentService) List() ([]types.DocumentRecord, error) {
	records, err := s.loadMetadata()
	if err != nil {
		return nil, err
	}
	list := make([]types.DocumentRecord, 0, len(records))
	for _, record := range records {
		list = append(list, record)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].UploadTime != list[j].UploadTime {
			return list[i].UploadTime > list[j].UploadTime
		}
		return list[i].FileID > list[j].FileID
	})
	return list, nil
}

// Get returns the record for fileID, or nil when unknown.
func (s *DocumentService) Get(fileID string) (*types.DocumentRecord, error) {
	records, err := s.loadMetadata()
	if err != nil {
		return nil, err
	}
	record, ok := records[fileID]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// MarkIndexed flips the indexed flag. Idempotent; unknown file_id is a no-op.
func (s *DocumentService) MarkIndexed(fileID string) error {
	records, err := s.loadMetadata()
	if err != nil {
		return err
	}
	record, ok := records[fileID]
	if !ok {
		return nil
	}
	record.Indexed = true
	records[fileID] = record
	return s.saveMetadata(records)
}

// StorageUsed reports the total size of the upload directory.
func (s *DocumentService) StorageUsed() int64 {
	return utils.DirectorySize(s.uploadDir)
}
