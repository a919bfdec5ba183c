package loader

import (
	"github.com/go-git/go-git/v5"
)

// repoInfo carries the git state recorded on loaded documents.
type repoInfo struct {
	Revision string
	Branch   string
}

// detectRepo looks for a git repository at or above root. Documentation
// trees often live inside a repo checkout; when one is found, the HEAD
// revision and branch are stamped onto every document so search results
// can be traced back to a version.
func detectRepo(root string) (repoInfo, bool) {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return repoInfo{}, false
	}

	head, err := repo.Head()
	if err != nil {
		return repoInfo{}, false
	}

	revision := head.Hash().String()
	if len(revision) > 12 {
		revision = revision[:12]
	}

	branch := "detached"
	if head.Name().IsBranch() {
		branch = head.Name().Short()
	}

	return repoInfo{Revision: revision, Branch: branch}, true
}
