package schemas

import (
	"time"

	"github.com/tokamak-network/pages-deployer/pkg/domain/entities"

	"github.com/google/uuid"
)

type Deployment struct {
	ID        uuid.UUID                 `gorm:"type:uuid;primaryKey;column:id"`
	Task      string                    `gorm:"column:task;not null;index"`
	Round     int                       `gorm:"column:round;not null"`
	Nonce     string                    `gorm:"column:nonce;not null"`
	Email     string                    `gorm:"column:email;not null"`
	Template  string                    `gorm:"column:template"`
	Status    entities.DeploymentStatus `gorm:"column:status;not null"`
	Reason    string                    `gorm:"column:reason"`
	RepoName  string                    `gorm:"column:repo_name"`
	RepoURL   string                    `gorm:"column:repo_url"`
	PagesURL  string                    `gorm:"column:pages_url"`
	CommitSHA string                    `gorm:"column:commit_sha"`
	Notified  bool                      `gorm:"column:notified;not null;default:false"`
	CreatedAt time.Time                 `gorm:"autoCreateTime;column:created_at"`
	UpdatedAt time.Time                 `gorm:"autoUpdateTime;column:updated_at"`
}

func (Deployment) TableName() string {
	return "deployments"
}
