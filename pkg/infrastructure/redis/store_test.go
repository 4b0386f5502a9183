package redis

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/tokamak-network/pages-deployer/pkg/domain/entities"
)

func TestKeyLayout(t *testing.T) {
	s := NewStoreWithClient(nil, "")
	if got := s.deploymentKey("abc"); got != "pages-deployer:deployment:abc" {
		t.Fatalf("unexpected deployment key %q", got)
	}
	if got := s.taskKey("t1"); got != "pages-deployer:task:t1" {
		t.Fatalf("unexpected task key %q", got)
	}
	if got := s.taskDeploymentsKey("t1"); got != "pages-deployer:task:t1:deployments" {
		t.Fatalf("unexpected task deployments key %q", got)
	}
}

// TestStoreAgainstRedis runs only when REDIS_TEST_ADDR points at a disposable server.
func TestStoreAgainstRedis(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	store, err := NewStore(addr, "", 0)
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}
	store.prefix = "pages-deployer-test:" + uuid.NewString() + ":"
	defer store.Close()

	ctx := context.Background()
	if rec, err := store.GetTaskRecord(ctx, "missing"); rec != nil || err != nil {
		t.Fatalf("expected nil, nil for unknown task, got %v, %v", rec, err)
	}

	rec := &entities.TaskRecord{Task: "t1", RepoName: "task-t1-00000000", Files: entities.FileSet{"a.txt": []byte("a")}}
	if err := store.SaveTaskRecord(ctx, rec); err != nil {
		t.Fatalf("SaveTaskRecord returned error: %v", err)
	}
	got, err := store.GetTaskRecord(ctx, "t1")
	if err != nil || got == nil || got.Files.String("a.txt") != "a" {
		t.Fatalf("GetTaskRecord = %+v, %v", got, err)
	}

	d := &entities.DeploymentEntity{ID: uuid.New(), Task: "t1", Status: entities.DeploymentStatusPending}
	if err := store.CreateDeployment(ctx, d); err != nil {
		t.Fatalf("CreateDeployment returned error: %v", err)
	}
	d.Status = entities.DeploymentStatusSucceeded
	if err := store.UpdateDeployment(ctx, d); err != nil {
		t.Fatalf("UpdateDeployment returned error: %v", err)
	}
	list, err := store.GetDeploymentsByTask(ctx, "t1")
	if err != nil || len(list) != 1 || list[0].Status != entities.DeploymentStatusSucceeded {
		t.Fatalf("GetDeploymentsByTask = %+v, %v", list, err)
	}
}
