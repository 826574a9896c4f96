// Package vcsinfo reads lightweight repository metadata for the
// architecture overview's narrative header. It never errors: any
// failure to open or read the repository yields a zero-value Info,
// since this is an enrichment, not a required input.
package vcsinfo

import (
	"github.com/go-git/go-git/v5"
)

// Info is the repository metadata surfaced in a narrative header.
type Info struct {
	IsRepo     bool   `json:"is_repo"`
	Branch     string `json:"branch,omitempty"`
	CommitHash string `json:"commit_hash,omitempty"`
	RemoteURL  string `json:"remote_url,omitempty"`
	Dirty      bool   `json:"dirty"`
}

// Load reads metadata for the git repository containing root, searching
// parent directories the way git itself does. Returns Info{} when root
// is not inside a git repository.
func Load(root string) Info {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return Info{}
	}

	info := Info{IsRepo: true}

	if head, err := repo.Head(); err == nil {
		info.CommitHash = head.Hash().String()[:shortHashLen(head.Hash().String())]
		if head.Name().IsBranch() {
			info.Branch = head.Name().Short()
		}
	}

	if remote, err := repo.Remote("origin"); err == nil {
		if cfg := remote.Config(); cfg != nil && len(cfg.URLs) > 0 {
			info.RemoteURL = cfg.URLs[0]
		}
	}

	if wt, err := repo.Worktree(); err == nil {
		if status, err := wt.Status(); err == nil {
			info.Dirty = !status.IsClean()
		}
	}

	return info
}

func shortHashLen(full string) int {
	const n = 12
	if len(full) < n {
		return len(full)
	}
	return n
}
