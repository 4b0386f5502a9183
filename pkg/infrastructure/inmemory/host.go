package inmemory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/tokamak-network/pages-deployer/internal/consts"
	"github.com/tokamak-network/pages-deployer/internal/utils"
	"github.com/tokamak-network/pages-deployer/pkg/domain/entities"
)

const defaultOwner = "dry-run"

type hostedRepo struct {
	repo        entities.Repository
	description string
	files       entities.FileSet
	commits     []string
	pages       bool
}

// Host is a repository host that keeps everything in memory. It backs the
// dry-run mode and the service tests.
type Host struct {
	mu      sync.Mutex
	owner   string
	baseURL string
	repos   map[string]*hostedRepo
}

func NewHost(owner string) *Host {
	if owner == "" {
		owner = defaultOwner
	}
	return &Host{
		owner:   owner,
		baseURL: "https://github.com",
		repos:   make(map[string]*hostedRepo),
	}
}

func (h *Host) Owner() string   { return h.owner }
func (h *Host) BaseURL() string { return h.baseURL }

func (h *Host) CreateRepository(_ context.Context, name, description string) (*entities.Repository, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.repos[name]; ok {
		return nil, fmt.Errorf("repository %s already exists", name)
	}
	repo := entities.Repository{
		Owner:         h.owner,
		Name:          name,
		URL:           utils.GetRepositoryURL(h.baseURL, h.owner, name),
		DefaultBranch: consts.DefaultBranch,
	}
	h.repos[name] = &hostedRepo{repo: repo, description: description, files: entities.FileSet{}}
	return &repo, nil
}

func (h *Host) CommitFile(_ context.Context, repo *entities.Repository, path, _ string, content []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, err := h.lookup(repo)
	if err != nil {
		return err
	}
	r.files[path] = append([]byte(nil), content...)
	r.commits = append(r.commits, strings.ReplaceAll(uuid.NewString(), "-", ""))
	return nil
}

func (h *Host) GetLatestCommit(_ context.Context, repo *entities.Repository, branch string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, err := h.lookup(repo)
	if err != nil {
		return "", err
	}
	if branch != r.repo.DefaultBranch || len(r.commits) == 0 {
		return "", fmt.Errorf("branch %s of %s has no commit", branch, repo.Name)
	}
	return r.commits[len(r.commits)-1], nil
}

func (h *Host) EnablePages(_ context.Context, repo *entities.Repository, _ string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, err := h.lookup(repo)
	if err != nil {
		return err
	}
	r.pages = true
	return nil
}

func (h *Host) lookup(repo *entities.Repository) (*hostedRepo, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is nil")
	}
	r, ok := h.repos[repo.Name]
	if !ok {
		return nil, fmt.Errorf("repository %s not found", repo.Name)
	}
	return r, nil
}

// Files returns a copy of the files committed to a repository.
func (h *Host) Files(name string) entities.FileSet {
	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.repos[name]; ok {
		return r.files.Clone()
	}
	return nil
}

// Commits returns the commit shas of a repository, oldest first.
func (h *Host) Commits(name string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.repos[name]; ok {
		return append([]string(nil), r.commits...)
	}
	return nil
}

func (h *Host) PagesEnabled(name string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.repos[name]
	return ok && r.pages
}

func (h *Host) Repositories() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	names := make([]string, 0, len(h.repos))
	for name := range h.repos {
		names = append(names, name)
	}
	return names
}
