package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/turtacn/cdforge/internal/infrastructure/monitoring/logging"
)

// ErrWaitTimeout is returned by WaitForFile when the file did not appear in time.
var ErrWaitTimeout = errors.New("workspace: timed out waiting for file")

// WaitOptions bounds WaitForFile.
type WaitOptions struct {
	// Timeout is the hard ceiling on the whole wait.
	Timeout time.Duration
	// PollInterval is the stat fallback period for filesystems where
	// change notifications are unavailable or lossy.
	PollInterval time.Duration
	// Done, when non-nil, is the producer's completion signal.  The file is
	// not considered ready before it fires, even if it already exists.  A
	// non-nil error received on it ends the wait with that error.  A nil value or a closed channel hands over to the
	// file watch for the remaining time.
	Done <-chan error
	// Logger receives debug output; nil disables it.
	Logger logging.Logger
}

// WaitForFile blocks until the producer signals completion (when Done is
// set) and path exists, the producer reports failure, the timeout elapses
// (ErrWaitTimeout) or ctx is cancelled (ctx.Err()).
func WaitForFile(ctx context.Context, path string, opts WaitOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}

	waitCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	if opts.Done != nil {
		select {
		case <-waitCtx.Done():
			return waitErr(ctx)
		case err := <-opts.Done:
			if err != nil {
				return err
			}
		}
		if exists(path) {
			return nil
		}
		logger.Debug("producer finished before output appeared", logging.String("path", path))
	}
	return watchFile(ctx, waitCtx, path, opts.PollInterval, logger)
}

// watchFile waits for path with an fsnotify watch on its directory plus a
// stat ticker.
func watchFile(ctx, waitCtx context.Context, path string, poll time.Duration, logger logging.Logger) error {
	if exists(path) {
		return nil
	}

	var events <-chan fsnotify.Event
	var watchErrs <-chan error
	if w, err := fsnotify.NewWatcher(); err != nil {
		logger.Debug("fsnotify unavailable, polling only", logging.Err(err))
	} else {
		defer w.Close()
		if err := w.Add(filepath.Dir(path)); err != nil {
			logger.Debug("cannot watch directory, polling only", logging.String("dir", filepath.Dir(path)), logging.Err(err))
		} else {
			events, watchErrs = w.Events, w.Errors
		}
	}

	// The watch may have been installed after the file appeared.
	if exists(path) {
		return nil
	}

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	target := filepath.Clean(path)
	for {
		select {
		case <-waitCtx.Done():
			if exists(path) {
				return nil
			}
			return waitErr(ctx)

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(ev.Name) == target && (ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) || ev.Has(fsnotify.Rename)) {
				if exists(path) {
					return nil
				}
			}

		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			logger.Debug("watcher error", logging.Err(err))

		case <-ticker.C:
			if exists(path) {
				return nil
			}
		}
	}
}

func waitErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return ErrWaitTimeout
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

//Personal.AI order the ending
