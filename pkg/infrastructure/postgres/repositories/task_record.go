package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tokamak-network/pages-deployer/pkg/domain/entities"
	"github.com/tokamak-network/pages-deployer/pkg/infrastructure/postgres/schemas"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TaskRecordRepository struct {
	db *gorm.DB
}

func NewTaskRecordRepository(db *gorm.DB) *TaskRecordRepository {
	return &TaskRecordRepository{db: db}
}

func (r *TaskRecordRepository) GetTaskRecord(ctx context.Context, task string) (*entities.TaskRecord, error) {
	var row schemas.TaskRecord
	err := r.db.WithContext(ctx).Where("task = ?", task).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ToTaskRecordEntity(&row)
}

// SaveTaskRecord inserts the record or replaces the one stored for its task.
func (r *TaskRecordRepository) SaveTaskRecord(ctx context.Context, record *entities.TaskRecord) error {
	row, err := ToTaskRecordSchema(record)
	if err != nil {
		return err
	}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "task"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"round", "template", "repo_name", "repo_url", "pages_url", "commit_sha", "files", "updated_at",
		}),
	}).Create(row).Error
	if err != nil {
		return err
	}
	record.UpdatedAt = row.UpdatedAt
	return nil
}

func ToTaskRecordSchema(record *entities.TaskRecord) (*schemas.TaskRecord, error) {
	files, err := json.Marshal(record.Files)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal files of task %s: %w", record.Task, err)
	}
	return &schemas.TaskRecord{
		Task:      record.Task,
		Round:     record.Round,
		Template:  record.Template,
		RepoName:  record.RepoName,
		RepoURL:   record.RepoURL,
		PagesURL:  record.PagesURL,
		CommitSHA: record.CommitSHA,
		Files:     datatypes.JSON(files),
	}, nil
}

func ToTaskRecordEntity(row *schemas.TaskRecord) (*entities.TaskRecord, error) {
	var files entities.FileSet
	if len(row.Files) > 0 {
		if err := json.Unmarshal(row.Files, &files); err != nil {
			return nil, fmt.Errorf("failed to unmarshal files of task %s: %w", row.Task, err)
		}
	}
	return &entities.TaskRecord{
		Task:      row.Task,
		Round:     row.Round,
		Template:  row.Template,
		RepoName:  row.RepoName,
		RepoURL:   row.RepoURL,
		PagesURL:  row.PagesURL,
		CommitSHA: row.CommitSHA,
		Files:     files,
		UpdatedAt: row.UpdatedAt,
	}, nil
}
