package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/tokamak-network/pages-deployer/pkg/domain/entities"
)

const (
	defaultPrefix = "pages-deployer:"
	opTimeout     = 2 * time.Second
)

// Store keeps deployment and task records in Redis as JSON documents.
//
//	<prefix>deployment:<id>         deployment record
//	<prefix>task:<task>:deployments list of deployment ids
//	<prefix>task:<task>             task record
type Store struct {
	client redis.UniversalClient
	prefix string
}

func NewStore(addr, password string, db int) (*Store, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return NewStoreWithClient(client, defaultPrefix), nil
}

func NewStoreWithClient(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return s.client.Ping(ctx).Err()
}

func (s *Store) deploymentKey(id string) string { return s.prefix + "deployment:" + id }
func (s *Store) taskKey(task string) string     { return s.prefix + "task:" + task }
func (s *Store) taskDeploymentsKey(task string) string {
	return s.prefix + "task:" + task + ":deployments"
}

func (s *Store) CreateDeployment(ctx context.Context, d *entities.DeploymentEntity) error {
	now := time.Now().UTC()
	d.CreatedAt, d.UpdatedAt = now, now
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	id := d.ID.String()
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.deploymentKey(id), data, 0)
		pipe.RPush(ctx, s.taskDeploymentsKey(d.Task), id)
		return nil
	})
	return err
}

func (s *Store) UpdateDeployment(ctx context.Context, d *entities.DeploymentEntity) error {
	d.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	// XX: only overwrite records that were created first.
	return s.client.SetXX(ctx, s.deploymentKey(d.ID.String()), data, redis.KeepTTL).Err()
}

func (s *Store) GetDeploymentByID(ctx context.Context, id string) (*entities.DeploymentEntity, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	data, err := s.client.Get(ctx, s.deploymentKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var d entities.DeploymentEntity
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("corrupt deployment record %s: %w", id, err)
	}
	return &d, nil
}

// GetDeploymentsByTask returns the deployments of a task, newest first.
func (s *Store) GetDeploymentsByTask(ctx context.Context, task string) ([]*entities.DeploymentEntity, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	ids, err := s.client.LRange(ctx, s.taskDeploymentsKey(task), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*entities.DeploymentEntity{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.deploymentKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	deployments := make([]*entities.DeploymentEntity, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var d entities.DeploymentEntity
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			return nil, fmt.Errorf("corrupt deployment record %s: %w", ids[i], err)
		}
		deployments = append(deployments, &d)
	}
	sort.SliceStable(deployments, func(i, j int) bool {
		return deployments[i].CreatedAt.After(deployments[j].CreatedAt)
	})
	return deployments, nil
}

func (s *Store) GetTaskRecord(ctx context.Context, task string) (*entities.TaskRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	data, err := s.client.Get(ctx, s.taskKey(task)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var rec entities.TaskRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("corrupt task record %s: %w", task, err)
	}
	return &rec, nil
}

func (s *Store) SaveTaskRecord(ctx context.Context, rec *entities.TaskRecord) error {
	rec.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return s.client.Set(ctx, s.taskKey(rec.Task), data, 0).Err()
}
