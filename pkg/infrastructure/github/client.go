package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	gh "github.com/google/go-github/v66/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/tokamak-network/pages-deployer/internal/consts"
	"github.com/tokamak-network/pages-deployer/internal/logger"
	"github.com/tokamak-network/pages-deployer/pkg/domain/entities"
)

const defaultWebURL = "https://github.com"

var ErrMissingToken = errors.New("github token is required")

type Config struct {
	Token string
	// Owner is the account or organization that owns created repositories.
	// When empty it is resolved from the token.
	Owner   string
	APIURL  string
	Private bool
}

// Client is the repository host backed by the GitHub REST API.
type Client struct {
	client  *gh.Client
	webURL  string
	private bool

	mu    sync.Mutex
	owner string
	// org is set when Owner is an organization rather than the token user.
	org string
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, ErrMissingToken
	}

	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}))
	client := gh.NewClient(httpClient)
	webURL := defaultWebURL
	if cfg.APIURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(cfg.APIURL, cfg.APIURL)
		if err != nil {
			return nil, fmt.Errorf("invalid github api url %q: %w", cfg.APIURL, err)
		}
		webURL = webURLFromAPI(cfg.APIURL)
	}

	c := &Client{
		client:  client,
		webURL:  webURL,
		private: cfg.Private,
	}
	if err := c.resolveOwner(ctx, cfg.Owner); err != nil {
		return nil, err
	}
	return c, nil
}

// webURLFromAPI maps an enterprise API root (https://ghe.example/api/v3/) to
// its web root (https://ghe.example).
func webURLFromAPI(apiURL string) string {
	u := strings.TrimRight(apiURL, "/")
	u = strings.TrimSuffix(u, "/api/v3")
	if strings.HasPrefix(u, "https://api.github.com") {
		return defaultWebURL
	}
	return u
}

func (c *Client) resolveOwner(ctx context.Context, owner string) error {
	user, _, err := c.client.Users.Get(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to resolve github user from token: %w", err)
	}
	login := user.GetLogin()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.owner = login
	if owner != "" && !strings.EqualFold(owner, login) {
		c.owner = owner
		c.org = owner
	}
	logger.Info("Connected to GitHub", zap.String("owner", c.owner), zap.Bool("organization", c.org != ""))
	return nil
}

func (c *Client) Owner() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.owner
}

func (c *Client) BaseURL() string {
	return c.webURL
}

func (c *Client) CreateRepository(ctx context.Context, name, description string) (*entities.Repository, error) {
	repo, _, err := c.client.Repositories.Create(ctx, c.org, &gh.Repository{
		Name:        gh.String(name),
		Description: gh.String(description),
		Private:     gh.Bool(c.private),
		AutoInit:    gh.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create repository %s: %w", name, err)
	}

	branch := repo.GetDefaultBranch()
	if branch == "" {
		branch = consts.DefaultBranch
	}
	url := repo.GetHTMLURL()
	if url == "" {
		url = fmt.Sprintf("%s/%s/%s", c.webURL, c.Owner(), name)
	}
	return &entities.Repository{
		Owner:         c.Owner(),
		Name:          repo.GetName(),
		URL:           url,
		DefaultBranch: branch,
	}, nil
}

// CommitFile creates path on the default branch, or updates it when it
// already exists.
func (c *Client) CommitFile(ctx context.Context, repo *entities.Repository, path, message string, content []byte) error {
	opts := &gh.RepositoryContentFileOptions{
		Message: gh.String(message),
		Content: content,
	}

	sha, err := c.fileSHA(ctx, repo, path)
	if err != nil {
		return err
	}
	if sha == "" {
		_, _, err = c.client.Repositories.CreateFile(ctx, repo.Owner, repo.Name, path, opts)
		if err != nil {
			return fmt.Errorf("failed to create %s in %s: %w", path, repo.Name, err)
		}
		return nil
	}

	opts.SHA = gh.String(sha)
	if _, _, err = c.client.Repositories.UpdateFile(ctx, repo.Owner, repo.Name, path, opts); err != nil {
		return fmt.Errorf("failed to update %s in %s: %w", path, repo.Name, err)
	}
	return nil
}

// fileSHA returns the blob sha of path, or "" when the file does not exist.
func (c *Client) fileSHA(ctx context.Context, repo *entities.Repository, path string) (string, error) {
	file, _, resp, err := c.client.Repositories.GetContents(ctx, repo.Owner, repo.Name, path, nil)
	if err != nil {
		if isNotFound(resp) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read %s in %s: %w", path, repo.Name, err)
	}
	if file == nil {
		return "", fmt.Errorf("%s in %s is a directory", path, repo.Name)
	}
	return file.GetSHA(), nil
}

func (c *Client) GetLatestCommit(ctx context.Context, repo *entities.Repository, branch string) (string, error) {
	b, _, err := c.client.Repositories.GetBranch(ctx, repo.Owner, repo.Name, branch, 1)
	if err != nil {
		return "", fmt.Errorf("failed to read branch %s of %s: %w", branch, repo.Name, err)
	}
	sha := b.GetCommit().GetSHA()
	if sha == "" {
		return "", fmt.Errorf("branch %s of %s has no commit", branch, repo.Name)
	}
	return sha, nil
}

// EnablePages publishes the root of branch. A site that is already enabled
// counts as success.
func (c *Client) EnablePages(ctx context.Context, repo *entities.Repository, branch string) error {
	_, resp, err := c.client.Repositories.EnablePages(ctx, repo.Owner, repo.Name, &gh.Pages{
		Source: &gh.PagesSource{
			Branch: gh.String(branch),
			Path:   gh.String("/"),
		},
	})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusConflict {
			return nil
		}
		return fmt.Errorf("failed to enable pages for %s: %w", repo.Name, err)
	}
	return nil
}

func isNotFound(resp *gh.Response) bool {
	return resp != nil && resp.StatusCode == http.StatusNotFound
}
