package announce

import (
	"fmt"
	"log"
	"os/exec"
	"strconv"
	"sync"
)

// CommandSpeaker speaks by running an external text-to-speech program such as
// espeak-ng. Rate is words per minute, pitch is the 0-99 espeak scale.
type CommandSpeaker struct {
	command string
	voice   string
	rate    int
	pitch   int

	mu      sync.Mutex
	current *exec.Cmd
}

// NewCommandSpeaker creates a speaker around the given TTS command and voice.
func NewCommandSpeaker(command, voice string, rate, pitch int) *CommandSpeaker {
	return &CommandSpeaker{
		command: command,
		voice:   voice,
		rate:    rate,
		pitch:   pitch,
	}
}

// Speak runs the TTS program and waits for the utterance to finish.
func (s *CommandSpeaker) Speak(text string) error {
	cmd := exec.Command(s.command,
		"-v", s.voice,
		"-s", strconv.Itoa(s.rate),
		"-p", strconv.Itoa(s.pitch),
		text,
	)

	s.mu.Lock()
	s.current = cmd
	s.mu.Unlock()

	err := cmd.Run()

	s.mu.Lock()
	if s.current == cmd {
		s.current = nil
	}
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("running %s: %w", s.command, err)
	}
	return nil
}

// SpeakThen speaks asynchronously and invokes done once the utterance
// finishes or fails.
func (s *CommandSpeaker) SpeakThen(text string, done func()) error {
	go func() {
		if err := s.Speak(text); err != nil {
			log.Printf("speech failed: %v", err)
		}
		if done != nil {
			done()
		}
	}()
	return nil
}

// Stop kills the currently running utterance, if any.
func (s *CommandSpeaker) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current.Process != nil {
		_ = s.current.Process.Kill()
		s.current = nil
	}
}
