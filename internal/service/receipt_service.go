package service

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/centavo/centavo-backend/internal/domain"
	"github.com/centavo/centavo-backend/internal/repository/storage"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	MaxReceiptSize     = 5 * 1024 * 1024 // 5MB
	ReceiptMaxWidth    = 1200
	ReceiptJPEGQuality = 85
	receiptURLExpiry   = 15 * time.Minute
)

// allowedReceiptExtensions maps extensions to content types
var allowedReceiptExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// ReceiptService attaches receipt images to transactions. Storage is
// optional: without a configured bucket, uploads are rejected but the rest of
// the system runs unaffected.
type ReceiptService struct {
	transactionRepo domain.TransactionRepository
	storage         storage.ImageRepository
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(transactionRepo domain.TransactionRepository, storage storage.ImageRepository) *ReceiptService {
	return &ReceiptService{
		transactionRepo: transactionRepo,
		storage:         storage,
	}
}

// IsEnabled indicates whether receipt storage is configured.
func (s *ReceiptService) IsEnabled() bool {
	return s != nil && s.storage != nil
}

// Attach validates, normalizes and stores a receipt image for a transaction,
// replacing any previous one.
func (s *ReceiptService) Attach(ctx context.Context, userID uuid.UUID, transactionID int32, data []byte, filename string) (*domain.Transaction, error) {
	if !s.IsEnabled() {
		return nil, domain.ErrUnsupportedImage
	}
	if len(data) > MaxReceiptSize {
		return nil, domain.ErrUnsupportedImage
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedReceiptExtensions[ext]; !ok {
		return nil, domain.ErrUnsupportedImage
	}

	tx, err := s.transactionRepo.GetByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, domain.ErrUnsupportedImage
	}
	if img.Bounds().Dx() > ReceiptMaxWidth {
		img = imaging.Resize(img, ReceiptMaxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(ReceiptJPEGQuality)); err != nil {
		return nil, fmt.Errorf("encode receipt: %w", err)
	}

	key := fmt.Sprintf("receipts/%s/%d/%s.jpg", userID, transactionID, uuid.New())
	if _, err := s.storage.Upload(ctx, key, &buf, "image/jpeg", int64(buf.Len())); err != nil {
		return nil, fmt.Errorf("upload receipt: %w", err)
	}

	// Best effort: remove the replaced object after the new key is persisted
	oldKey := tx.ReceiptKey

	updated, err := s.transactionRepo.SetReceiptKey(userID, transactionID, &key)
	if err != nil {
		_ = s.storage.Delete(ctx, key)
		return nil, err
	}

	if oldKey != nil {
		_ = s.storage.Delete(ctx, *oldKey)
	}

	return updated, nil
}

// Detach removes a transaction's receipt image.
func (s *ReceiptService) Detach(ctx context.Context, userID uuid.UUID, transactionID int32) error {
	tx, err := s.transactionRepo.GetByID(userID, transactionID)
	if err != nil {
		return err
	}
	if tx.ReceiptKey == nil {
		return domain.ErrReceiptNotFound
	}

	if _, err := s.transactionRepo.SetReceiptKey(userID, transactionID, nil); err != nil {
		return err
	}

	if s.IsEnabled() {
		_ = s.storage.Delete(ctx, *tx.ReceiptKey)
	}
	return nil
}

// URL returns a short-lived download URL for a transaction's receipt.
func (s *ReceiptService) URL(ctx context.Context, userID uuid.UUID, transactionID int32) (string, error) {
	tx, err := s.transactionRepo.GetByID(userID, transactionID)
	if err != nil {
		return "", err
	}
	if tx.ReceiptKey == nil {
		return "", domain.ErrReceiptNotFound
	}
	if !s.IsEnabled() {
		return "", domain.ErrReceiptNotFound
	}
	return s.storage.PresignGet(ctx, *tx.ReceiptKey, receiptURLExpiry)
}
