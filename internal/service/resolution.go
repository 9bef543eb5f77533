package service

import (
	"context"
	"fmt"
	"io"

	"presence-calendar/internal/models"
	"presence-calendar/internal/storage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const resolutionsFolder = "resolutions/"

// Upload загруженный документ-основание
type Upload struct {
	Content      io.Reader
	OriginalName string
}

// ResolutionService утверждает интервалы (например, отпуск по заявлению)
type ResolutionService struct {
	tasks       *TaskService
	files       storage.FileStorage
	requireFile bool
}

// NewResolutionService при requireFile утверждение без документа запрещено
func NewResolutionService(tasks *TaskService, files storage.FileStorage, requireFile bool) *ResolutionService {
	return &ResolutionService{tasks: tasks, files: files, requireFile: requireFile}
}

// Approve сохраняет документ (если он есть) и помечает интервал утвержденным
func (s *ResolutionService) Approve(ctx context.Context, taskID uint, upload *Upload) (*models.Task, error) {
	if upload == nil && s.requireFile {
		return nil, ErrAttachmentRequired
	}

	task, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}

	var attachment models.Attachment
	if upload != nil {
		attachment, err = s.store(ctx, upload)
		if err != nil {
			return nil, err
		}
	}

	if err := s.tasks.attach(ctx, task, attachment); err != nil {
		if attachment.FileName != "" {
			if cleanupErr := s.files.Delete(ctx, resolutionsFolder+attachment.FileName); cleanupErr != nil {
				logrus.WithError(cleanupErr).Warn("Failed to remove orphaned resolution file")
			}
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"task_id": task.ID,
		"file":    attachment.FileName,
	}).Info("Task approved")

	return task, nil
}

// Open открывает документ-основание интервала
func (s *ResolutionService) Open(ctx context.Context, taskID uint) (io.ReadCloser, *models.Attachment, error) {
	task, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	if !task.HasAttachment() {
		return nil, nil, ErrTaskNotFound
	}

	rc, err := s.files.Open(ctx, resolutionsFolder+task.Attachment.FileName)
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка чтения файла: %w", err)
	}
	return rc, &task.Attachment, nil
}

func (s *ResolutionService) store(ctx context.Context, upload *Upload) (models.Attachment, error) {
	if s.files == nil {
		return models.Attachment{}, fmt.Errorf("хранилище файлов не настроено")
	}

	fileName := uuid.NewString()
	if err := s.files.Save(ctx, resolutionsFolder+fileName, upload.Content); err != nil {
		return models.Attachment{}, fmt.Errorf("ошибка при загрузке файла: %w", err)
	}

	return models.Attachment{FileName: fileName, OriginalName: upload.OriginalName}, nil
}
