package schemas

import (
	"time"

	"gorm.io/datatypes"
)

// TaskRecord keeps the repository of a task between rounds. Files holds the
// last committed file set as a JSON object of path to base64 content.
type TaskRecord struct {
	Task      string         `gorm:"primaryKey;column:task"`
	Round     int            `gorm:"column:round;not null"`
	Template  string         `gorm:"column:template"`
	RepoName  string         `gorm:"column:repo_name;not null"`
	RepoURL   string         `gorm:"column:repo_url;not null"`
	PagesURL  string         `gorm:"column:pages_url"`
	CommitSHA string         `gorm:"column:commit_sha"`
	Files     datatypes.JSON `gorm:"type:jsonb;column:files"`
	CreatedAt time.Time      `gorm:"autoCreateTime;column:created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime;column:updated_at"`
}

func (TaskRecord) TableName() string {
	return "task_records"
}
