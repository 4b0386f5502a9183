package repositories

import (
	"testing"

	"github.com/google/uuid"

	"github.com/tokamak-network/pages-deployer/pkg/domain/entities"
)

func TestTaskRecordFilesSurviveSchemaMapping(t *testing.T) {
	record := &entities.TaskRecord{
		Task:     "sum-of-sales",
		Round:    1,
		RepoName: "task-sum-of-sales-0a1b2c3d",
		Files: entities.FileSet{
			"data.csv":  []byte("product,sales\nA,1\n"),
			"image.bin": {0x00, 0xff, 0x10},
		},
	}

	row, err := ToTaskRecordSchema(record)
	if err != nil {
		t.Fatalf("ToTaskRecordSchema returned error: %v", err)
	}
	back, err := ToTaskRecordEntity(row)
	if err != nil {
		t.Fatalf("ToTaskRecordEntity returned error: %v", err)
	}
	if back.RepoName != record.RepoName || back.Files.String("data.csv") != record.Files.String("data.csv") {
		t.Fatalf("record changed through mapping: %+v", back)
	}
	if string(back.Files["image.bin"]) != string(record.Files["image.bin"]) {
		t.Fatalf("binary content changed through mapping")
	}
}

func TestDeploymentMappingKeepsStatus(t *testing.T) {
	d := &entities.DeploymentEntity{
		ID:     uuid.New(),
		Task:   "t",
		Status: entities.DeploymentStatusRejected,
		Reason: "invalid secret",
	}
	back := ToDeploymentEntity(ToDeploymentSchema(d))
	if back.ID != d.ID || back.Status != d.Status || back.Reason != d.Reason {
		t.Fatalf("deployment changed through mapping: %+v", back)
	}
}
