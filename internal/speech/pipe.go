package speech

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"
)

// PipeEngine bridges an external speech-to-text process that writes one
// transcript line per utterance to a named pipe or growing file. Every line
// read is delivered as a final fragment.
type PipeEngine struct {
	path string

	mu   sync.Mutex
	file *os.File
}

// NewPipeEngine creates an engine reading transcripts from the given path.
func NewPipeEngine(path string) *PipeEngine {
	return &PipeEngine{path: path}
}

// Start opens the transcript source and streams lines to the callback until
// Stop closes it.
func (e *PipeEngine) Start(onFragment func(text string, final bool)) error {
	f, err := os.Open(e.path)
	if err != nil {
		return fmt.Errorf("opening transcript source: %w", err)
	}

	e.mu.Lock()
	if e.file != nil {
		e.file.Close()
	}
	e.file = f
	e.mu.Unlock()

	go func() {
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" {
				onFragment(line, true)
			}
		}
	}()
	return nil
}

// Stop closes the transcript source, ending the reader goroutine.
func (e *PipeEngine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.file != nil {
		e.file.Close()
		e.file = nil
	}
}
