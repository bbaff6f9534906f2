package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"assignment-helper/internal/metrics"
	"assignment-helper/internal/model"
	"assignment-helper/internal/notify"
	"assignment-helper/internal/repository"
	"assignment-helper/internal/storage"
)

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".doc":  true,
	".txt":  true,
}

// maxNameBytes is the usual filesystem limit for a single path element.
const maxNameBytes = 255

func allowedExtension(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// storedFilename prefixes original with a random token. The stem is cut so
// the result fits in maxNameBytes; the extension is always kept.
func storedFilename(original string) string {
	prefix := uuid.NewString() + "_"
	ext := filepath.Ext(original)
	stem := strings.TrimSuffix(original, ext)
	if room := maxNameBytes - len(prefix) - len(ext); len(stem) > room {
		stem = truncateBytes(stem, room)
	}
	return prefix + stem + ext
}

// truncateBytes cuts s to at most n bytes without splitting a rune.
func truncateBytes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// FileStore is satisfied by storage.LocalStorage.
type FileStore interface {
	SaveStream(name string, r io.Reader, limit int64) (string, int64, error)
	Delete(name string) error
}

type UploadInput struct {
	StudentID        uint
	OriginalFilename string
	// Size is the client-declared size; negative when unknown.
	Size    int64
	Content io.Reader
}

type UploadService struct {
	db             *gorm.DB
	assignmentRepo *repository.AssignmentRepository
	files          FileStore
	notifier       notify.Notifier
	maxFileSize    int64
	logger         *zap.Logger
	metrics        *metrics.Metrics
}

func NewUploadService(
	db *gorm.DB,
	assignmentRepo *repository.AssignmentRepository,
	files FileStore,
	notifier notify.Notifier,
	maxFileSize int64,
	logger *zap.Logger,
	m *metrics.Metrics,
) *UploadService {
	return &UploadService{
		db:             db,
		assignmentRepo: assignmentRepo,
		files:          files,
		notifier:       notifier,
		maxFileSize:    maxFileSize,
		logger:         logger,
		metrics:        m,
	}
}

// Upload stores the file under a unique name, records the assignment and
// hands the workflow notification to the side channel. Notification outcome
// never affects the returned result.
func (s *UploadService) Upload(ctx context.Context, input UploadInput) (*model.Assignment, error) {
	original := filepath.Base(strings.TrimSpace(input.OriginalFilename))
	if input.StudentID == 0 || original == "" || original == "." || original == string(filepath.Separator) {
		s.metrics.RecordUpload("rejected")
		return nil, ErrInvalidInput
	}
	if !allowedExtension(original) {
		s.metrics.RecordUpload("rejected")
		return nil, ErrFileTypeNotAllowed
	}
	if input.Size > s.maxFileSize {
		s.metrics.RecordUpload("rejected")
		return nil, ErrFileTooLarge
	}

	content := input.Content
	var text *bytes.Buffer
	if strings.EqualFold(filepath.Ext(original), ".txt") {
		text = &bytes.Buffer{}
		content = io.TeeReader(content, text)
	}

	storedName := storedFilename(original)
	path, _, err := s.files.SaveStream(storedName, content, s.maxFileSize)
	if err != nil {
		s.metrics.RecordUpload("rejected")
		if errors.Is(err, storage.ErrTooLarge) {
			return nil, ErrFileTooLarge
		}
		return nil, err
	}

	assignment := &model.Assignment{
		StudentID:        input.StudentID,
		Filename:         storedName,
		OriginalFilename: original,
		FilePath:         path,
	}
	if text != nil {
		body := sanitizeText(text.Bytes())
		words := len(strings.Fields(body))
		assignment.OriginalText = body
		assignment.WordCount = &words
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.assignmentRepo.WithTx(tx).Create(ctx, assignment)
	})
	if err != nil {
		if delErr := s.files.Delete(storedName); delErr != nil {
			s.logger.Warn("remove orphaned upload failed", zap.String("file", storedName), zap.Error(delErr))
		}
		s.metrics.RecordUpload("error")
		return nil, err
	}

	s.metrics.RecordUpload("accepted")
	s.logger.Info("assignment uploaded",
		zap.Uint("assignment_id", assignment.ID),
		zap.Uint("student_id", assignment.StudentID),
		zap.String("file", storedName),
	)

	s.notifier.AssignmentUploaded(notify.AssignmentUploaded{
		AssignmentID:     assignment.ID,
		Filename:         storedName,
		FilePath:         path,
		StudentID:        assignment.StudentID,
		OriginalFilename: original,
	})
	return assignment, nil
}

// sanitizeText makes plain-text uploads safe for a text column.
func sanitizeText(raw []byte) string {
	s := string(raw)
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "�")
	}
	return strings.ReplaceAll(s, "\x00", "")
}
