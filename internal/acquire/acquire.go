// Package acquire materializes the target repository into an
// ephemeral working directory and guarantees its cleanup.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/flakehound/detector/internal/validate"
)

// CloneTimeout bounds both remote clones and local copies.
const CloneTimeout = 300 * time.Second

// ErrorKind distinguishes the fatal acquisition failure modes.
type ErrorKind string

const (
	CloneFailed   ErrorKind = "clone_failed"
	CloneTimedOut ErrorKind = "clone_timed_out"
	BadLocalPath  ErrorKind = "bad_local_path"
)

// Error is fatal: the job aborts without a summary.
type Error struct {
	Kind  ErrorKind
	Cause string
}

func (e *Error) Error() string {
	return fmt.Sprintf("repository acquisition failed (%s): %s", e.Kind, e.Cause)
}

// Workspace owns the ephemeral directory a job runs in. Every
// subprocess receives its path as the working directory instead of
// the process chdir-ing into it, so there is no process-wide state
// to restore. Close removes the tree.
type Workspace struct {
	dir    string
	log    *slog.Logger
	closed bool
}

func (w *Workspace) Dir() string { return w.dir }

// Close deletes the ephemeral tree. It is safe to call more than
// once; callers defer it immediately after a successful Acquire.
func (w *Workspace) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := os.RemoveAll(w.dir); err != nil {
		w.log.Warn("failed to remove workspace", "dir", w.dir, "error", err)
		return fmt.Errorf("failed to remove workspace %s: %w", w.dir, err)
	}
	w.log.Debug("removed workspace", "dir", w.dir)
	return nil
}

// Acquire clones a remote repository, or copies a local one, into a
// freshly created uniquely named temporary directory. The uuid suffix
// keeps concurrent jobs from colliding on workdir naming.
func Acquire(ctx context.Context, log *slog.Logger, repo string) (*Workspace, error) {
	dir, err := os.MkdirTemp("", "flakehound-"+uuid.NewString()+"-*")
	if err != nil {
		return nil, &Error{Kind: CloneFailed, Cause: fmt.Sprintf("failed to create workdir: %v", err)}
	}

	ws := &Workspace{dir: dir, log: log}

	if validate.IsRemote(repo) {
		err = cloneRemote(ctx, log, repo, dir)
	} else {
		err = copyLocal(log, repo, dir)
	}
	if err != nil {
		_ = ws.Close()
		return nil, err
	}

	return ws, nil
}

func cloneRemote(ctx context.Context, log *slog.Logger, repo, dir string) error {
	ctx, cancel := context.WithTimeout(ctx, CloneTimeout)
	defer cancel()

	log.Info("cloning repository", "repo", repo, "dir", dir)

	cmd := exec.CommandContext(ctx, "git", "clone", repo, dir)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return &Error{
				Kind:  CloneTimedOut,
				Cause: fmt.Sprintf("clone of %s exceeded %s", repo, CloneTimeout),
			}
		}
		return &Error{
			Kind:  CloneFailed,
			Cause: fmt.Sprintf("git clone %s: %v: %s", repo, err, out),
		}
	}

	log.Info("cloned repository", "repo", repo)
	return nil
}

// copyLocal mirrors a local tree into the workspace so iterative
// local use never mutates the source. Symlinks are skipped.
func copyLocal(log *slog.Logger, src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return &Error{Kind: BadLocalPath, Cause: fmt.Sprintf("stat %s: %v", src, err)}
	}
	if !info.IsDir() {
		return &Error{Kind: BadLocalPath, Cause: fmt.Sprintf("%s is not a directory", src)}
	}

	log.Info("copying local repository", "repo", src, "dir", dst)

	err = filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		switch {
		case d.IsDir():
			return os.MkdirAll(target, 0755)
		case d.Type().IsRegular():
			return copyFile(path, target)
		default:
			return nil
		}
	})
	if err != nil {
		return &Error{Kind: BadLocalPath, Cause: fmt.Sprintf("copy %s: %v", src, err)}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
