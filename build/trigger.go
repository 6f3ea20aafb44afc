// Package build turns a CI webhook into a scored submission.
//
// The pipeline runs in three stages against the external build system:
// job lookup, package-run lookup, then report fetch. The parsed report
// updates the submission exactly once and pushes one refresh signal to
// the dashboard.
package build

import (
	"encoding/json"
	"strings"

	"github.com/nanhai/arena/errors"
)

// repoHostMarker splits the project web URL; everything after it is the
// repository path the build system knows.
const repoHostMarker = "huawei.com/"

// fallbackRepoPath is used when the web URL does not carry the marker
const fallbackRepoPath = "innersource/fuyao_G/CodeAgent/Permission"

// Trigger is the parsed webhook payload plus the derived repository path
type Trigger struct {
	GitBatch     string `json:"gitBatch"`
	UserUsername string `json:"userUsername"`
	RepoPath     string `json:"-"`
}

type triggerPayload struct {
	GitBranch    string `json:"git_branch"`
	UserUsername string `json:"user_username"`
	Project      struct {
		WebURL string `json:"web_url"`
	} `json:"project"`
}

// ParseTrigger decodes a webhook body into a Trigger
func ParseTrigger(body []byte) (*Trigger, error) {
	var payload triggerPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidRequest, err.Error())
	}

	return &Trigger{
		GitBatch:     payload.GitBranch,
		UserUsername: payload.UserUsername,
		RepoPath:     deriveRepoPath(payload.Project.WebURL),
	}, nil
}

// deriveRepoPath extracts the repository path from the project web URL
func deriveRepoPath(webURL string) string {
	if idx := strings.Index(webURL, repoHostMarker); idx >= 0 {
		if path := webURL[idx+len(repoHostMarker):]; path != "" {
			return path
		}
	}
	return fallbackRepoPath
}
