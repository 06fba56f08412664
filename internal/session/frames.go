package session

import (
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// FrameSource hands camera frames to the detection loop. Frame returns the
// newest frame that arrived since the previous call, or nil when the camera
// has produced nothing new; the loop then just re-arms its timer.
type FrameSource interface {
	Frame() ([]byte, error)
	Close() error
}

// SpoolSource watches a spool directory into which a capture process drops
// frame images. Only the newest unprocessed frame matters: recognition is
// live, so intermediate frames that arrive while a pass is running are
// skipped, which is also what keeps a slow detector from building a backlog.
type SpoolSource struct {
	dir     string
	watcher *fsnotify.Watcher

	mu     sync.Mutex
	latest string
	served string
}

// NewSpoolSource starts watching dir. Existing frames are considered: the
// newest one becomes the first frame served.
func NewSpoolSource(dir string) (*SpoolSource, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	s := &SpoolSource{dir: dir, watcher: watcher}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}
	s.backfill()

	go func() {
		for {
			select {
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 && isImage(evt.Name) {
					s.mu.Lock()
					s.latest = evt.Name
					s.mu.Unlock()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("frame watcher error: %v", err)
			}
		}
	}()
	return s, nil
}

// backfill seeds latest with the newest image already in the spool.
func (s *SpoolSource) backfill() {
	entries, err := filepath.Glob(filepath.Join(s.dir, "*"))
	if err != nil {
		return
	}
	var images []string
	for _, e := range entries {
		if isImage(e) {
			images = append(images, e)
		}
	}
	if len(images) == 0 {
		return
	}
	sort.Strings(images)
	s.latest = images[len(images)-1]
}

// Frame returns the newest spooled frame, once.
func (s *SpoolSource) Frame() ([]byte, error) {
	s.mu.Lock()
	path := s.latest
	if path == "" || path == s.served {
		s.mu.Unlock()
		return nil, nil
	}
	s.served = path
	s.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		// The capture process may still be writing or may have rotated the
		// file away; skip and wait for the next one.
		log.Printf("skipping frame %s: %v", filepath.Base(path), err)
		return nil, nil
	}
	return data, nil
}

// Close stops the watcher.
func (s *SpoolSource) Close() error {
	return s.watcher.Close()
}

func isImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".webp":
		return true
	default:
		return false
	}
}
