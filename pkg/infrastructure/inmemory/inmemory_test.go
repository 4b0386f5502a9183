package inmemory

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/tokamak-network/pages-deployer/pkg/domain/entities"
)

func TestHostCommitsAndLatestCommit(t *testing.T) {
	ctx := context.Background()
	host := NewHost("octo")

	repo, err := host.CreateRepository(ctx, "task-a-12345678", "desc")
	if err != nil {
		t.Fatalf("CreateRepository returned error: %v", err)
	}
	if repo.URL != "https://github.com/octo/task-a-12345678" {
		t.Fatalf("unexpected url %q", repo.URL)
	}
	if _, err := host.CreateRepository(ctx, "task-a-12345678", "desc"); err == nil {
		t.Fatalf("expected duplicate repository to fail")
	}
	if _, err := host.GetLatestCommit(ctx, repo, "main"); err == nil {
		t.Fatalf("expected empty repository to have no commit")
	}

	_ = host.CommitFile(ctx, repo, "LICENSE", "Add LICENSE", []byte("MIT"))
	_ = host.CommitFile(ctx, repo, "README.md", "Add README.md", []byte("# a"))

	sha, err := host.GetLatestCommit(ctx, repo, "main")
	if err != nil {
		t.Fatalf("GetLatestCommit returned error: %v", err)
	}
	commits := host.Commits(repo.Name)
	if len(commits) != 2 || commits[1] != sha {
		t.Fatalf("latest commit %q does not match history %v", sha, commits)
	}
	if host.Files(repo.Name).String("README.md") != "# a" {
		t.Fatalf("README.md not stored")
	}

	missing := &entities.Repository{Name: "nope"}
	if err := host.CommitFile(ctx, missing, "x", "x", nil); err == nil {
		t.Fatalf("expected commit to unknown repository to fail")
	}
}

func TestStoreRecords(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	if rec, err := store.GetTaskRecord(ctx, "t"); rec != nil || err != nil {
		t.Fatalf("expected nil, nil for unknown task, got %v, %v", rec, err)
	}

	rec := &entities.TaskRecord{Task: "t", RepoName: "task-t-1", Files: entities.FileSet{"a": []byte("1")}}
	if err := store.SaveTaskRecord(ctx, rec); err != nil {
		t.Fatalf("SaveTaskRecord returned error: %v", err)
	}
	rec.Files["a"][0] = '2'

	got, _ := store.GetTaskRecord(ctx, "t")
	if got.RepoName != "task-t-1" || got.Files.String("a") != "1" {
		t.Fatalf("stored record was not isolated from caller: %+v", got)
	}

	d := &entities.DeploymentEntity{ID: uuid.New(), Task: "t", Status: entities.DeploymentStatusPending}
	_ = store.CreateDeployment(ctx, d)
	d.Status = entities.DeploymentStatusSucceeded
	_ = store.UpdateDeployment(ctx, d)

	byID, _ := store.GetDeploymentByID(ctx, d.ID.String())
	if byID == nil || byID.Status != entities.DeploymentStatusSucceeded {
		t.Fatalf("unexpected deployment %+v", byID)
	}
	list, _ := store.GetDeploymentsByTask(ctx, "t")
	if len(list) != 1 {
		t.Fatalf("expected one deployment for task, got %d", len(list))
	}
}
