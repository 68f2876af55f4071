package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"clausematch/internal/dto"
	"clausematch/internal/models"
	"clausematch/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrDocumentNotFound = errors.New("document not found")

type DocumentService struct {
	docRepo   *repository.DocumentRepository
	parser    *ParserService
	uploadDir string
	logger    *zap.Logger
}

func NewDocumentService(
	docRepo *repository.DocumentRepository,
	parser *ParserService,
	uploadDir string,
	logger *zap.Logger,
) *DocumentService {
	// Create upload directory if it doesn't exist
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		logger.Warn("Failed to create upload directory", zap.Error(err))
	}

	return &DocumentService{
		docRepo:   docRepo,
		parser:    parser,
		uploadDir: uploadDir,
		logger:    logger,
	}
}

// UploadDocument saves the file under the upload directory, runs extraction
// once to count clauses, and records the document in its session bucket.
// An unsupported extension is rejected before anything is written.
func (s *DocumentService) UploadDocument(ctx context.Context, sessionID uuid.UUID, bucket models.DocumentBucket, file io.Reader, fileName string) (*dto.DocumentResponse, error) {
	ext := filepath.Ext(fileName)
	if !s.parser.IsSupported(ext) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	fileID := uuid.New()
	filePath := filepath.Join(s.uploadDir, fileID.String()+ext)

	dst, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	fileSize, err := io.Copy(dst, file)
	if err != nil {
		os.Remove(filePath)
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	clauses, err := s.parser.ExtractFile(filePath, fileName)
	if err != nil {
		os.Remove(filePath)
		return nil, err
	}

	now := time.Now()
	doc := &models.Document{
		ID:          fileID,
		SessionID:   sessionID,
		Bucket:      bucket,
		FileName:    fileName,
		FileSize:    fileSize,
		FilePath:    filePath,
		SourceType:  InferSourceType(fileName),
		ClauseCount: len(clauses),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		os.Remove(filePath)
		return nil, fmt.Errorf("failed to create document record: %w", err)
	}

	s.logger.Info("Document uploaded",
		zap.String("document_id", doc.ID.String()),
		zap.String("bucket", string(bucket)),
		zap.Int("clauses", doc.ClauseCount))

	return toDocumentResponse(doc), nil
}

// ListDocuments lists a session's documents in upload order.
func (s *DocumentService) ListDocuments(ctx context.Context, sessionID uuid.UUID) ([]*dto.DocumentResponse, error) {
	docs, err := s.docRepo.ListBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.DocumentResponse, len(docs))
	for i, doc := range docs {
		responses[i] = toDocumentResponse(doc)
	}

	return responses, nil
}

// DeleteDocument removes the record and its stored file.
func (s *DocumentService) DeleteDocument(ctx context.Context, sessionID, documentID uuid.UUID) error {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return ErrDocumentNotFound
	}
	if doc.SessionID != sessionID {
		return ErrDocumentNotFound
	}

	if err := s.docRepo.Delete(ctx, documentID); err != nil {
		return err
	}
	if err := os.Remove(doc.FilePath); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("Failed to remove stored file", zap.String("path", doc.FilePath), zap.Error(err))
	}
	return nil
}

func toDocumentResponse(doc *models.Document) *dto.DocumentResponse {
	return &dto.DocumentResponse{
		ID:          doc.ID.String(),
		Bucket:      string(doc.Bucket),
		FileName:    doc.FileName,
		FileSize:    doc.FileSize,
		SourceType:  string(doc.SourceType),
		ClauseCount: doc.ClauseCount,
		CreatedAt:   doc.CreatedAt.Format(time.RFC3339),
	}
}
