package models

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// File represents the metadata of an uploaded file. The content
// itself lives in external storage, the platform tracks ownership
// and a checksum for duplicate detection.
type File struct {
	DefaultModel
	Filename     string
	OriginalName string
	Path         string
	Size         int64
	MimeType     string
	Checksum     string    `gorm:"index"` // SHA256 of the content
	Owner        Applicant `json:"-"`
	OwnerID      uuid.UUID
}

func (f *File) BeforeCreate(tx *gorm.DB) error {
	_ = f.DefaultModel.BeforeCreate(tx)

	err := tx.First(&Applicant{}, "id = ?", f.OwnerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: no applicant with this ID", ErrResourceNotFound)
		}
		return err
	}

	return nil
}

// Sha256String calculates the SHA256 hash of the content and returns
// its string representation.
func Sha256String(content []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(content))
}

// Export returns all file records on this instance for export.
func (File) Export() (json.RawMessage, error) {
	var files []File
	err := DB.Where(&File{}).Find(&files).Error
	if err != nil {
		return nil, err
	}

	return json.Marshal(&files)
}
