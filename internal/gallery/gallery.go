// Package gallery keeps the designs the user decided to keep. Each saved
// design is committed to a local git repository, giving a browsable history
// of the session's choices for free.
package gallery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing/object"

	"github.com/tilevision/tilevision/internal/log"
	"github.com/tilevision/tilevision/internal/photo"
)

// Gallery is a git-backed directory of kept designs.
type Gallery struct {
	dir  string
	repo *git.Repository
}

// Open opens the gallery at dir, initializing the directory and repository
// on first use.
func Open(dir string) (*Gallery, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating gallery dir: %w", err)
	}

	repo, err := git.PlainOpen(dir)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.PlainInit(dir, false)
	}
	if err != nil {
		return nil, fmt.Errorf("opening gallery repository: %w", err)
	}

	return &Gallery{dir: dir, repo: repo}, nil
}

// Dir returns the gallery directory.
func (g *Gallery) Dir() string { return g.dir }

// Save writes a kept design to disk and commits it. The commit is
// best-effort: a versioning failure must not lose the file, so the path is
// returned even when the commit errors.
func (g *Gallery) Save(design *photo.Encoded, id string) (string, error) {
	name := fmt.Sprintf("%s-%s%s", time.Now().Format("20060102-150405"), id, extensionFor(design.MIME))
	path := filepath.Join(g.dir, name)

	if err := os.WriteFile(path, design.Bytes, 0o644); err != nil {
		return "", fmt.Errorf("writing design: %w", err)
	}

	if err := g.commit(name); err != nil {
		log.Warnf("design saved but not versioned: %v", err)
	}
	return path, nil
}

func (g *Gallery) commit(name string) error {
	worktree, err := g.repo.Worktree()
	if err != nil {
		return err
	}
	if _, err := worktree.Add(name); err != nil {
		return err
	}
	_, err = worktree.Commit(fmt.Sprintf("Keep design %s", name), &git.CommitOptions{
		Author: &object.Signature{
			Name:  "tilevision",
			Email: "studio@tilevision.local",
			When:  time.Now(),
		},
	})
	return err
}

// History returns the commit messages of kept designs, newest first.
func (g *Gallery) History() ([]string, error) {
	head, err := g.repo.Head()
	if err != nil {
		return nil, nil // empty gallery
	}

	iter, err := g.repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var messages []string
	err = iter.ForEach(func(c *object.Commit) error {
		messages = append(messages, c.Message)
		return nil
	})
	return messages, err
}

func extensionFor(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	default:
		return ".jpg"
	}
}
