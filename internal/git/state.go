package git

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// ErrNotRepository is returned when the directory is not inside a git work tree.
var ErrNotRepository = errors.New("not a git repository")

// SourceState describes the git state of a source tree.
type SourceState struct {
	// WorkTree is the root of the enclosing repository.
	WorkTree string
	// Commit is the HEAD commit hash, empty for a repository without commits.
	Commit string
	// Branch is the short branch name, empty when HEAD is detached.
	Branch string
	// Changed lists uncommitted paths below the inspected directory,
	// relative to the work tree and sorted.
	Changed []string
}

// Dirty reports whether the inspected directory has uncommitted changes.
func (s *SourceState) Dirty() bool { return len(s.Changed) > 0 }

// ShortCommit returns the abbreviated commit hash.
func (s *SourceState) ShortCommit() string {
	if len(s.Commit) > 12 {
		return s.Commit[:12]
	}
	return s.Commit
}

// Inspect opens the repository enclosing dir and reports its HEAD and the
// uncommitted changes below dir. Untracked files count as changes unless
// ignored.
func Inspect(dir string) (*SourceState, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}

	repository, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, ErrNotRepository
		}
		return nil, fmt.Errorf("open repository: %w", err)
	}

	worktree, err := repository.Worktree()
	if err != nil {
		// Bare repositories have no work tree to package.
		return nil, ErrNotRepository
	}

	state := &SourceState{WorkTree: worktree.Filesystem.Root()}

	ref, err := repository.Head()
	switch {
	case err == nil:
		state.Commit = ref.Hash().String()
		if ref.Name().IsBranch() {
			state.Branch = ref.Name().Short()
		}
	case errors.Is(err, plumbing.ErrReferenceNotFound):
		// Fresh repository without commits.
	default:
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("worktree status: %w", err)
	}

	prefix, err := relativePrefix(state.WorkTree, abs)
	if err != nil {
		return nil, err
	}
	for path, fs := range status {
		if fs.Staging == git.Unmodified && fs.Worktree == git.Unmodified {
			continue
		}
		if prefix != "" && path != strings.TrimSuffix(prefix, "/") && !strings.HasPrefix(path, prefix) {
			continue
		}
		state.Changed = append(state.Changed, path)
	}
	sort.Strings(state.Changed)
	return state, nil
}

// relativePrefix returns dir relative to root as a slash-terminated prefix,
// or "" when dir is the root itself.
func relativePrefix(root, dir string) (string, error) {
	root, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", fmt.Errorf("resolve work tree: %w", err)
	}
	dir, err = filepath.EvalSymlinks(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return "", fmt.Errorf("relate %s to work tree: %w", dir, err)
	}
	if rel == "." {
		return "", nil
	}
	return filepath.ToSlash(rel) + "/", nil
}
