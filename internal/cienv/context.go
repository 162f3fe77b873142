package cienv

import (
	"os"
	"strconv"
	"strings"
)

// Platform identifies the hosting CI system.
type Platform string

const (
	PlatformGitHub Platform = "github"
	PlatformAzure  Platform = "azure"
	PlatformNone   Platform = "none"
)

// Context is the CI run context assembled from environment variables. It is
// built from an explicit env map rather than read ambiently, so everything
// downstream is testable without process environment setup.
type Context struct {
	Platform    Platform
	Repo        string // owner/name slug
	PR          int    // 0 when not a pull-request build
	Branch      string
	Ref         string
	Event       string
	Workspace   string
	OutputsPath string // GITHUB_OUTPUT file; GitHub only
}

// IsPR reports whether the run is attached to a pull request.
func (c Context) IsPR() bool {
	return c.PR > 0
}

// Detect assembles a Context from the given environment map.
func Detect(env map[string]string) Context {
	switch {
	case env["GITHUB_ACTIONS"] == "true":
		return detectGitHub(env)
	case strings.EqualFold(env["TF_BUILD"], "true"):
		return detectAzure(env)
	default:
		return Context{Platform: PlatformNone}
	}
}

// FromOS builds a Context from the process environment. Core logic should
// take a Context, not call this.
func FromOS() Context {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return Detect(env)
}

func detectGitHub(env map[string]string) Context {
	ctx := Context{
		Platform:    PlatformGitHub,
		Repo:        env["GITHUB_REPOSITORY"],
		Branch:      env["GITHUB_REF_NAME"],
		Ref:         env["GITHUB_REF"],
		Event:       env["GITHUB_EVENT_NAME"],
		Workspace:   env["GITHUB_WORKSPACE"],
		OutputsPath: env["GITHUB_OUTPUT"],
	}
	// Pull-request refs look like refs/pull/<n>/merge.
	if parts := strings.Split(ctx.Ref, "/"); len(parts) >= 3 && parts[1] == "pull" {
		if n, err := strconv.Atoi(parts[2]); err == nil {
			ctx.PR = n
		}
	}
	if head := env["GITHUB_HEAD_REF"]; head != "" {
		ctx.Branch = head
	}
	return ctx
}

func detectAzure(env map[string]string) Context {
	ctx := Context{
		Platform:  PlatformAzure,
		Repo:      env["BUILD_REPOSITORY_NAME"],
		Branch:    env["BUILD_SOURCEBRANCHNAME"],
		Ref:       env["BUILD_SOURCEBRANCH"],
		Event:     env["BUILD_REASON"],
		Workspace: env["SYSTEM_DEFAULTWORKINGDIRECTORY"],
	}
	if n, err := strconv.Atoi(env["SYSTEM_PULLREQUEST_PULLREQUESTNUMBER"]); err == nil {
		ctx.PR = n
	}
	return ctx
}
