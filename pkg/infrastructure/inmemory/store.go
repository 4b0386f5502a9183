package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tokamak-network/pages-deployer/pkg/domain/entities"
)

// Store keeps deployment records and task records for the lifetime of the
// process. Lookups that find nothing return nil, nil.
type Store struct {
	mu          sync.RWMutex
	deployments map[string]*entities.DeploymentEntity
	byTask      map[string][]string
	tasks       map[string]*entities.TaskRecord
}

func NewStore() *Store {
	return &Store{
		deployments: make(map[string]*entities.DeploymentEntity),
		byTask:      make(map[string][]string),
		tasks:       make(map[string]*entities.TaskRecord),
	}
}

func (s *Store) CreateDeployment(_ context.Context, d *entities.DeploymentEntity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	cp := *d
	cp.CreatedAt, cp.UpdatedAt = now, now
	id := cp.ID.String()
	s.deployments[id] = &cp
	s.byTask[cp.Task] = append(s.byTask[cp.Task], id)
	d.CreatedAt, d.UpdatedAt = now, now
	return nil
}

func (s *Store) UpdateDeployment(_ context.Context, d *entities.DeploymentEntity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := d.ID.String()
	existing, ok := s.deployments[id]
	if !ok {
		return nil
	}
	cp := *d
	cp.CreatedAt = existing.CreatedAt
	cp.UpdatedAt = time.Now().UTC()
	s.deployments[id] = &cp
	d.UpdatedAt = cp.UpdatedAt
	return nil
}

func (s *Store) GetDeploymentByID(_ context.Context, id string) (*entities.DeploymentEntity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.deployments[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

// GetDeploymentsByTask returns the deployments of a task, newest first.
func (s *Store) GetDeploymentsByTask(_ context.Context, task string) ([]*entities.DeploymentEntity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byTask[task]
	out := make([]*entities.DeploymentEntity, 0, len(ids))
	for _, id := range ids {
		cp := *s.deployments[id]
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) GetTaskRecord(_ context.Context, task string) (*entities.TaskRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.tasks[task]
	if !ok {
		return nil, nil
	}
	cp := *rec
	cp.Files = rec.Files.Clone()
	return &cp, nil
}

func (s *Store) SaveTaskRecord(_ context.Context, rec *entities.TaskRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	cp.Files = rec.Files.Clone()
	cp.UpdatedAt = time.Now().UTC()
	s.tasks[rec.Task] = &cp
	rec.UpdatedAt = cp.UpdatedAt
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }
