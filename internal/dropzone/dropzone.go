// Package dropzone turns files appearing in a watched directory into
// capture selections.
package dropzone

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yildizm/PcapView/internal/logger"
)

// minTick bounds how often pending files are checked
const minTick = 10 * time.Millisecond

// Zone watches one directory. A file created or moved into it is reported on
// Drops once it has not been written to for the settle period.
type Zone struct {
	dir     string
	settle  time.Duration
	watcher *fsnotify.Watcher
	log     *logger.Logger

	drops  chan string
	errors chan error
	done   chan struct{}

	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// Watch starts watching dir. settle of zero reports files on their create event.
func Watch(dir string, settle time.Duration, log *logger.Logger) (*Zone, error) {
	if log == nil {
		log = logger.Discard()
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve drop directory: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to access drop directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("drop zone %s is not a directory", abs)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(abs); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch directory: %w", err)
	}

	z := &Zone{
		dir:     abs,
		settle:  settle,
		watcher: watcher,
		log:     log.WithComponent("dropzone"),
		drops:   make(chan string, 16),
		errors:  make(chan error, 4),
		done:    make(chan struct{}),
	}

	z.wg.Add(1)
	go z.run()

	z.log.Info("watching %s", abs)
	return z, nil
}

// Dir returns the absolute watched directory
func (z *Zone) Dir() string { return z.dir }

// Drops delivers absolute paths of dropped files. It is closed by Close.
func (z *Zone) Drops() <-chan string { return z.drops }

// Errors delivers watcher failures. It is closed by Close.
func (z *Zone) Errors() <-chan error { return z.errors }

// Close stops watching. Safe to call more than once.
func (z *Zone) Close() error {
	z.closeOnce.Do(func() {
		close(z.done)
		z.closeErr = z.watcher.Close()
		z.wg.Wait()
		close(z.drops)
		close(z.errors)
	})
	return z.closeErr
}

func (z *Zone) run() {
	defer z.wg.Done()

	tick := z.settle / 2
	if tick < minTick {
		tick = minTick
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	// last activity per path
	pending := make(map[string]time.Time)

	for {
		select {
		case <-z.done:
			return

		case event, ok := <-z.watcher.Events:
			if !ok {
				return
			}
			z.handle(event, pending)

		case err, ok := <-z.watcher.Errors:
			if !ok {
				return
			}
			z.log.Warn("watcher error: %v", err)
			select {
			case z.errors <- err:
			case <-z.done:
				return
			default:
			}

		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < z.settle {
					continue
				}
				delete(pending, path)
				if !z.emit(path) {
					return
				}
			}
		}
	}
}

func (z *Zone) handle(event fsnotify.Event, pending map[string]time.Time) {
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		delete(pending, event.Name)
	case event.Has(fsnotify.Create):
		if z.settle == 0 {
			z.emit(event.Name)
			return
		}
		pending[event.Name] = time.Now()
	case event.Has(fsnotify.Write):
		if _, ok := pending[event.Name]; ok {
			pending[event.Name] = time.Now()
		}
	}
}

// emit reports path if it is still a regular file. It returns false once the zone is closing.
func (z *Zone) emit(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		z.log.Debug("ignoring %s", path)
		return true
	}

	z.log.DebugWithFields("file dropped", []logger.Field{
		logger.F("path", path),
		logger.Bytes(info.Size()),
	})

	select {
	case z.drops <- path:
		return true
	case <-z.done:
		return false
	}
}
