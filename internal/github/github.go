package github

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
)

// CmdRunner provides gh command execution. Interface for testing.
type CmdRunner interface {
	Run(args ...string) (string, error)
}

// ExecRunner runs gh commands via exec.
type ExecRunner struct{}

func (r *ExecRunner) Run(args ...string) (string, error) {
	cmd := exec.Command("gh", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return strings.TrimSpace(string(out)), fmt.Errorf("gh %s: %s: %w", strings.Join(args, " "), strings.TrimSpace(string(out)), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Client provides the GitHub operations scagate needs.
type Client struct {
	cmd CmdRunner
}

// NewClient creates a GitHub client.
func NewClient(cmd CmdRunner) *Client {
	return &Client{cmd: cmd}
}

// Comment is the subset of the issue-comment API shape we read back.
type Comment struct {
	ID   int64  `json:"id"`
	Body string `json:"body"`
}

// ValidateRepo checks that a repo slug looks like owner/name.
func ValidateRepo(repo string) error {
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("invalid repo %q: want owner/name", repo)
	}
	return nil
}

// FindComment returns the id of the first PR comment whose body contains
// marker, or 0 if none exists.
func (c *Client) FindComment(repo string, pr int, marker string) (int64, error) {
	out, err := c.cmd.Run("api", fmt.Sprintf("repos/%s/issues/%d/comments", repo, pr), "--paginate")
	if err != nil {
		return 0, fmt.Errorf("list comments: %w", err)
	}

	var comments []Comment
	if err := json.Unmarshal([]byte(out), &comments); err != nil {
		return 0, fmt.Errorf("parse comments: %w", err)
	}
	for _, cm := range comments {
		if strings.Contains(cm.Body, marker) {
			return cm.ID, nil
		}
	}
	return 0, nil
}

// CreateComment posts a new comment on a pull request.
func (c *Client) CreateComment(repo string, pr int, body string) error {
	_, err := c.cmd.Run("api", fmt.Sprintf("repos/%s/issues/%d/comments", repo, pr),
		"-f", "body="+body)
	if err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

// UpdateComment replaces the body of an existing comment.
func (c *Client) UpdateComment(repo string, commentID int64, body string) error {
	_, err := c.cmd.Run("api", "--method", "PATCH",
		fmt.Sprintf("repos/%s/issues/comments/%d", repo, commentID),
		"-f", "body="+body)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	return nil
}

// UpsertComment updates the marker comment if one exists, otherwise creates
// it. One comment per PR; reruns edit in place instead of piling up.
func (c *Client) UpsertComment(repo string, pr int, marker, body string) (created bool, err error) {
	if err := ValidateRepo(repo); err != nil {
		return false, err
	}
	if pr <= 0 {
		return false, fmt.Errorf("invalid PR number %d", pr)
	}

	id, err := c.FindComment(repo, pr, marker)
	if err != nil {
		return false, err
	}
	if id > 0 {
		return false, c.UpdateComment(repo, id, body)
	}
	return true, c.CreateComment(repo, pr, body)
}
