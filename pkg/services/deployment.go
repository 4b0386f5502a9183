package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tokamak-network/pages-deployer/internal/consts"
	"github.com/tokamak-network/pages-deployer/internal/logger"
	"github.com/tokamak-network/pages-deployer/internal/utils"
	"github.com/tokamak-network/pages-deployer/pkg/attachments"
	"github.com/tokamak-network/pages-deployer/pkg/domain/entities"
	"github.com/tokamak-network/pages-deployer/pkg/metrics"
	"github.com/tokamak-network/pages-deployer/pkg/taskmanager"
	"github.com/tokamak-network/pages-deployer/pkg/templates"
)

var (
	ErrInvalidSecret = errors.New("invalid secret")
	ErrQueueFull     = errors.New("deployment queue is full")
	ErrShuttingDown  = errors.New("service is shutting down")
	ErrNoTaskRecord  = errors.New("no round 1 deployment recorded for task")
)

type RepositoryHost interface {
	CreateRepository(ctx context.Context, name, description string) (*entities.Repository, error)
	CommitFile(ctx context.Context, repo *entities.Repository, path, message string, content []byte) error
	GetLatestCommit(ctx context.Context, repo *entities.Repository, branch string) (string, error)
	EnablePages(ctx context.Context, repo *entities.Repository, branch string) error
	Owner() string
	BaseURL() string
}

type DeploymentRepository interface {
	CreateDeployment(ctx context.Context, deployment *entities.DeploymentEntity) error
	UpdateDeployment(ctx context.Context, deployment *entities.DeploymentEntity) error
	GetDeploymentByID(ctx context.Context, id string) (*entities.DeploymentEntity, error)
	GetDeploymentsByTask(ctx context.Context, task string) ([]*entities.DeploymentEntity, error)
}

type TaskRecordRepository interface {
	GetTaskRecord(ctx context.Context, task string) (*entities.TaskRecord, error)
	SaveTaskRecord(ctx context.Context, record *entities.TaskRecord) error
}

type Notifier interface {
	Notify(ctx context.Context, url string, payload any) error
}

type TaskManager interface {
	AddTask(task entities.Task) error
}

type DeploymentServiceConfig struct {
	Secret          string
	NotifyOnFailure bool
}

// Outcome is the terminal state of one run.
type Outcome struct {
	Status entities.DeploymentStatus
	Reason string
	Result *entities.DeploymentResult
}

type DeploymentService struct {
	cfg            DeploymentServiceConfig
	host           RepositoryHost
	deploymentRepo DeploymentRepository
	taskRecordRepo TaskRecordRepository
	notifier       Notifier
	taskManager    TaskManager
	metrics        *metrics.Metrics
}

func NewDeploymentService(
	cfg DeploymentServiceConfig,
	host RepositoryHost,
	deploymentRepo DeploymentRepository,
	taskRecordRepo TaskRecordRepository,
	notifier Notifier,
	taskManager TaskManager,
	m *metrics.Metrics,
) *DeploymentService {
	return &DeploymentService{
		cfg:            cfg,
		host:           host,
		deploymentRepo: deploymentRepo,
		taskRecordRepo: taskRecordRepo,
		notifier:       notifier,
		taskManager:    taskManager,
		metrics:        m,
	}
}

// VerifySecret compares the supplied secret with the configured one.
func (s *DeploymentService) VerifySecret(secret string) bool {
	return s.cfg.Secret != "" && secret == s.cfg.Secret
}

// Submit validates the secret and queues the deployment. It returns as soon
// as the run is queued; the outcome is delivered to the evaluation URL.
func (s *DeploymentService) Submit(ctx context.Context, req *entities.DeploymentRequest) (uuid.UUID, error) {
	if !s.VerifySecret(req.Secret) {
		logger.Warn("Rejected deployment with invalid secret", zap.String("task", req.Task), zap.Int("round", req.Round))
		return uuid.Nil, ErrInvalidSecret
	}

	deployment := &entities.DeploymentEntity{
		ID:     uuid.New(),
		Task:   req.Task,
		Round:  req.Round,
		Nonce:  req.Nonce,
		Email:  req.Email,
		Status: entities.DeploymentStatusPending,
	}
	deploymentID := deployment.ID
	s.createRecord(ctx, deployment)

	// The run outlives the HTTP request that queued it.
	runCtx := context.WithoutCancel(ctx)
	err := s.taskManager.AddTask(func() {
		s.Run(runCtx, req, deployment)
	})
	if err != nil {
		reason := err.Error()
		switch {
		case errors.Is(err, taskmanager.ErrQueueFull):
			err = ErrQueueFull
		case errors.Is(err, taskmanager.ErrStopped):
			err = ErrShuttingDown
		}
		deployment.Status = entities.DeploymentStatusFailed
		deployment.Reason = reason
		s.updateRecord(ctx, deployment)
		logger.Error("Failed to queue deployment", zap.String("task", req.Task), zap.Error(err))
		return uuid.Nil, err
	}

	logger.Info("Deployment queued",
		zap.String("deploymentId", deploymentID.String()),
		zap.String("task", req.Task),
		zap.Int("round", req.Round),
	)
	return deploymentID, nil
}

// Run drives one deployment to a terminal state. deployment may be nil when
// the caller does not track records.
func (s *DeploymentService) Run(ctx context.Context, req *entities.DeploymentRequest, deployment *entities.DeploymentEntity) (outcome Outcome) {
	start := time.Now()
	if deployment == nil {
		deployment = &entities.DeploymentEntity{
			ID:    uuid.New(),
			Task:  req.Task,
			Round: req.Round,
			Nonce: req.Nonce,
			Email: req.Email,
		}
	}
	log := logger.With(
		zap.String("deploymentId", deployment.ID.String()),
		zap.String("task", req.Task),
		zap.Int("round", req.Round),
	)

	defer func() {
		if r := recover(); r != nil {
			log.Error("Deployment panicked", zap.Any("panic", r), zap.Stack("stack"))
			outcome = Outcome{Status: entities.DeploymentStatusFailed, Reason: fmt.Sprintf("internal error: %v", r)}
			deployment.Status = outcome.Status
			deployment.Reason = outcome.Reason
			s.updateRecord(ctx, deployment)
		}
		s.metrics.ObserveDeployment(req.Round, deployment.Template, string(outcome.Status), time.Since(start))
	}()

	if !s.VerifySecret(req.Secret) {
		log.Warn("Deployment rejected")
		deployment.Status = entities.DeploymentStatusRejected
		deployment.Reason = ErrInvalidSecret.Error()
		s.updateRecord(ctx, deployment)
		return Outcome{Status: entities.DeploymentStatusRejected, Reason: deployment.Reason}
	}

	deployment.Status = entities.DeploymentStatusInProgress
	s.updateRecord(ctx, deployment)
	log.Info("Deployment started")

	result, err := s.deploy(ctx, req, deployment)
	if err != nil {
		log.Error("Deployment failed", zap.Error(err))
		deployment.Status = entities.DeploymentStatusFailed
		deployment.Reason = err.Error()
		if s.cfg.NotifyOnFailure {
			failure := entities.NewDeploymentResult(req)
			failure.RepoURL = deployment.RepoURL
			failure.CommitSHA = deployment.CommitSHA
			failure.PagesURL = deployment.PagesURL
			failure.Status = entities.NotificationStatusFailed
			failure.Error = err.Error()
			deployment.Notified = s.notify(ctx, req.EvaluationURL, failure)
		}
		s.updateRecord(ctx, deployment)
		return Outcome{Status: entities.DeploymentStatusFailed, Reason: deployment.Reason}
	}

	deployment.Notified = s.notify(ctx, req.EvaluationURL, result)
	deployment.Status = entities.DeploymentStatusSucceeded
	s.updateRecord(ctx, deployment)
	log.Info("Deployment succeeded",
		zap.String("repoUrl", result.RepoURL),
		zap.String("pagesUrl", result.PagesURL),
		zap.String("commitSha", result.CommitSHA),
		zap.Bool("notified", deployment.Notified),
	)
	return Outcome{Status: entities.DeploymentStatusSucceeded, Result: result}
}

func (s *DeploymentService) deploy(
	ctx context.Context,
	req *entities.DeploymentRequest,
	deployment *entities.DeploymentEntity,
) (*entities.DeploymentResult, error) {
	decoded, err := attachments.Decode(req.Attachments)
	if err != nil {
		return nil, err
	}

	var record *entities.TaskRecord
	if req.Round == entities.RoundRevision {
		record, err = s.taskRecordRepo.GetTaskRecord(ctx, req.Task)
		if err != nil {
			return nil, fmt.Errorf("failed to load task record: %w", err)
		}
		if record == nil {
			return nil, ErrNoTaskRecord
		}
	}

	tpl := selectTemplate(req.Brief, record)
	deployment.Template = tpl.Kind().String()
	in := templates.Input{Brief: req.Brief, Checks: req.Checks, Attachments: decoded}

	var files entities.FileSet
	switch req.Round {
	case entities.RoundInitial:
		files, err = tpl.GenerateRound1(in)
	case entities.RoundRevision:
		files, err = tpl.GenerateRound2(in, record.Files)
	default:
		return nil, fmt.Errorf("unsupported round %d", req.Round)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s project: %w", tpl.Kind(), err)
	}
	files[consts.LicenseFile] = []byte(consts.MITLicense)

	var repo *entities.Repository
	if record == nil {
		repo, err = s.host.CreateRepository(ctx,
			utils.GetRepositoryName(req.Task),
			utils.GetRepositoryDescription(req.Brief),
		)
		if err != nil {
			return nil, err
		}
		logger.Info("Repository created", zap.String("task", req.Task), zap.String("repo", repo.Name))
	} else {
		repo = &entities.Repository{
			Owner:         s.host.Owner(),
			Name:          record.RepoName,
			URL:           record.RepoURL,
			DefaultBranch: consts.DefaultBranch,
		}
	}
	if repo.URL == "" {
		repo.URL = utils.GetRepositoryURL(s.host.BaseURL(), repo.Owner, repo.Name)
	}
	if repo.DefaultBranch == "" {
		repo.DefaultBranch = consts.DefaultBranch
	}
	deployment.RepoName = repo.Name
	deployment.RepoURL = repo.URL

	for _, path := range files.CommitOrder() {
		if err := s.host.CommitFile(ctx, repo, path, commitMessage(req.Round, path), files[path]); err != nil {
			return nil, err
		}
	}

	sha, err := s.host.GetLatestCommit(ctx, repo, repo.DefaultBranch)
	if err != nil {
		return nil, err
	}
	deployment.CommitSHA = sha

	if err := s.host.EnablePages(ctx, repo, repo.DefaultBranch); err != nil {
		logger.Warn("Failed to enable pages", zap.String("repo", repo.Name), zap.Error(err))
	}
	deployment.PagesURL = utils.GetPagesURL(repo.Owner, repo.Name)

	err = s.taskRecordRepo.SaveTaskRecord(ctx, &entities.TaskRecord{
		Task:      req.Task,
		Round:     req.Round,
		Template:  deployment.Template,
		RepoName:  repo.Name,
		RepoURL:   repo.URL,
		PagesURL:  deployment.PagesURL,
		CommitSHA: sha,
		Files:     files,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save task record: %w", err)
	}

	result := entities.NewDeploymentResult(req)
	result.RepoURL = repo.URL
	result.CommitSHA = sha
	result.PagesURL = deployment.PagesURL
	return result, nil
}

// selectTemplate falls back to the recorded round 1 template when the brief
// matches no keyword rule.
func selectTemplate(brief string, record *entities.TaskRecord) templates.ProjectTemplate {
	kind, matched := templates.Match(brief)
	if !matched && record != nil && record.Template != "" {
		kind = templates.Kind(record.Template)
	}
	if tpl, ok := templates.ByKind(kind); ok {
		return tpl
	}
	return templates.Select(brief)
}

func commitMessage(round int, path string) string {
	if round == entities.RoundRevision {
		return fmt.Sprintf("Update %s for round 2", path)
	}
	return fmt.Sprintf("Add %s", path)
}

func (s *DeploymentService) notify(ctx context.Context, url string, payload *entities.DeploymentResult) bool {
	if err := s.notifier.Notify(ctx, url, payload); err != nil {
		logger.Error("Failed to notify evaluation URL",
			zap.String("task", payload.Task),
			zap.String("url", url),
			zap.Error(err),
		)
		return false
	}
	return true
}

func (s *DeploymentService) createRecord(ctx context.Context, deployment *entities.DeploymentEntity) {
	if s.deploymentRepo == nil {
		return
	}
	if err := s.deploymentRepo.CreateDeployment(ctx, deployment); err != nil {
		logger.Error("Failed to create deployment record", zap.String("deploymentId", deployment.ID.String()), zap.Error(err))
	}
}

func (s *DeploymentService) updateRecord(ctx context.Context, deployment *entities.DeploymentEntity) {
	if s.deploymentRepo == nil {
		return
	}
	if err := s.deploymentRepo.UpdateDeployment(ctx, deployment); err != nil {
		logger.Error("Failed to update deployment record", zap.String("deploymentId", deployment.ID.String()), zap.Error(err))
	}
}

func (s *DeploymentService) GetDeployment(ctx context.Context, id string) (*entities.DeploymentEntity, error) {
	if s.deploymentRepo == nil {
		return nil, nil
	}
	return s.deploymentRepo.GetDeploymentByID(ctx, id)
}

func (s *DeploymentService) GetDeploymentsByTask(ctx context.Context, task string) ([]*entities.DeploymentEntity, error) {
	if s.deploymentRepo == nil {
		return []*entities.DeploymentEntity{}, nil
	}
	return s.deploymentRepo.GetDeploymentsByTask(ctx, task)
}

func (s *DeploymentService) GetTaskRecord(ctx context.Context, task string) (*entities.TaskRecord, error) {
	return s.taskRecordRepo.GetTaskRecord(ctx, task)
}
