package repositories

import (
	"context"
	"errors"

	"github.com/tokamak-network/pages-deployer/pkg/domain/entities"
	"github.com/tokamak-network/pages-deployer/pkg/infrastructure/postgres/schemas"

	"gorm.io/gorm"
)

type DeploymentRepository struct {
	db *gorm.DB
}

func NewDeploymentRepository(db *gorm.DB) *DeploymentRepository {
	return &DeploymentRepository{db: db}
}

func (r *DeploymentRepository) CreateDeployment(ctx context.Context, deployment *entities.DeploymentEntity) error {
	row := ToDeploymentSchema(deployment)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	deployment.CreatedAt = row.CreatedAt
	deployment.UpdatedAt = row.UpdatedAt
	return nil
}

// UpdateDeployment writes the mutable columns, zero values included.
func (r *DeploymentRepository) UpdateDeployment(ctx context.Context, deployment *entities.DeploymentEntity) error {
	return r.db.WithContext(ctx).
		Model(&schemas.Deployment{}).
		Where("id = ?", deployment.ID).
		Updates(map[string]interface{}{
			"template":   deployment.Template,
			"status":     deployment.Status,
			"reason":     deployment.Reason,
			"repo_name":  deployment.RepoName,
			"repo_url":   deployment.RepoURL,
			"pages_url":  deployment.PagesURL,
			"commit_sha": deployment.CommitSHA,
			"notified":   deployment.Notified,
		}).Error
}

func (r *DeploymentRepository) GetDeploymentByID(ctx context.Context, id string) (*entities.DeploymentEntity, error) {
	var row schemas.Deployment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ToDeploymentEntity(&row), nil
}

func (r *DeploymentRepository) GetDeploymentsByTask(ctx context.Context, task string) ([]*entities.DeploymentEntity, error) {
	var rows []schemas.Deployment
	err := r.db.WithContext(ctx).
		Where("task = ?", task).
		Order("created_at desc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	deployments := make([]*entities.DeploymentEntity, 0, len(rows))
	for i := range rows {
		deployments = append(deployments, ToDeploymentEntity(&rows[i]))
	}
	return deployments, nil
}

func ToDeploymentSchema(d *entities.DeploymentEntity) *schemas.Deployment {
	return &schemas.Deployment{
		ID:        d.ID,
		Task:      d.Task,
		Round:     d.Round,
		Nonce:     d.Nonce,
		Email:     d.Email,
		Template:  d.Template,
		Status:    d.Status,
		Reason:    d.Reason,
		RepoName:  d.RepoName,
		RepoURL:   d.RepoURL,
		PagesURL:  d.PagesURL,
		CommitSHA: d.CommitSHA,
		Notified:  d.Notified,
	}
}

func ToDeploymentEntity(row *schemas.Deployment) *entities.DeploymentEntity {
	return &entities.DeploymentEntity{
		ID:        row.ID,
		Task:      row.Task,
		Round:     row.Round,
		Nonce:     row.Nonce,
		Email:     row.Email,
		Template:  row.Template,
		Status:    row.Status,
		Reason:    row.Reason,
		RepoName:  row.RepoName,
		RepoURL:   row.RepoURL,
		PagesURL:  row.PagesURL,
		CommitSHA: row.CommitSHA,
		Notified:  row.Notified,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
