package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/tokamak-network/pages-deployer/internal/consts"
)

// GitHub repository names are limited to 100 characters of [A-Za-z0-9._-].
const maxRepoNameLength = 100

var invalidRepoChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeTask turns a task id into something usable inside a repository name.
func SanitizeTask(task string) string {
	s := invalidRepoChars.ReplaceAllString(strings.TrimSpace(task), "-")
	s = strings.Trim(s, "-.")
	if s == "" {
		return "unnamed"
	}
	return s
}

// GetRepositoryName returns task-<task>-<8 hex chars>. The suffix keeps
// repeated round 1 requests for one task from colliding.
func GetRepositoryName(task string) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:consts.RepoSuffixLength]
	base := SanitizeTask(task)
	budget := maxRepoNameLength - len(consts.RepoNamePrefix) - len(suffix) - 2
	if len(base) > budget {
		base = strings.TrimRight(base[:budget], "-.")
	}
	return fmt.Sprintf("%s-%s-%s", consts.RepoNamePrefix, base, suffix)
}

func GetRepositoryDescription(brief string) string {
	runes := []rune(brief)
	if len(runes) > consts.RepoDescriptionMax {
		runes = runes[:consts.RepoDescriptionMax]
	}
	return consts.RepoDescriptionPrefix + string(runes)
}

// GetRepositoryURL builds the browse URL of a repository. baseURL is the web
// root of the host, e.g. https://github.com.
func GetRepositoryURL(baseURL, owner, name string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(baseURL, "/"), owner, name)
}

// GetPagesURL is where GitHub Pages serves a project site. Pages hosts
// lower-case the owner.
func GetPagesURL(owner, name string) string {
	return fmt.Sprintf("https://%s.github.io/%s/", strings.ToLower(owner), name)
}
