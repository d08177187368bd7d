// Package git describes the repository revision a cases table comes from.
package git

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Info is the checked-out revision of a repository.
type Info struct {
	Branch string // empty for detached HEAD
	Hash   string // abbreviated HEAD hash
	Dirty  bool   // worktree has uncommitted changes
}

// String formats info as branch@hash with a -dirty suffix, or "" for no repository.
func (i Info) String() string {
	if i.Hash == "" {
		return ""
	}
	res := i.Hash
	if i.Branch != "" {
		res = i.Branch + "@" + i.Hash
	}
	if i.Dirty {
		res += "-dirty"
	}
	return res
}

// Describe reads the revision of the repository containing path, a file or directory.
// a path outside any repository, or a repository without commits, gives an empty Info.
func Describe(path string) (Info, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Info{}, fmt.Errorf("resolve path: %w", err)
	}
	if st, err := os.Stat(abs); err == nil && !st.IsDir() {
		abs = filepath.Dir(abs)
	}

	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return Info{}, nil
	}
	if err != nil {
		return Info{}, fmt.Errorf("open git repository %s: %w", abs, err)
	}
	return describe(repo)
}

func describe(repo *git.Repository) (Info, error) {
	head, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return Info{}, nil // no commits yet
	}
	if err != nil {
		return Info{}, fmt.Errorf("get HEAD: %w", err)
	}

	info := Info{Hash: head.Hash().String()[:7]}
	if head.Name().IsBranch() {
		info.Branch = head.Name().Short()
	}

	wt, err := repo.Worktree()
	if errors.Is(err, git.ErrIsBareRepository) {
		return info, nil
	}
	if err != nil {
		return Info{}, fmt.Errorf("get worktree: %w", err)
	}
	st, err := wt.Status()
	if err != nil {
		return Info{}, fmt.Errorf("get status: %w", err)
	}
	info.Dirty = !st.IsClean()
	return info, nil
}
