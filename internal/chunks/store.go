// Package chunks keeps large string fragments of a report out of the
// in-memory output until it is streamed.
package chunks

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/google/uuid"
	"github.com/mabhi256/vardig/utils"
)

const (
	tokenPrefix = "@@@"
	tokenSuffix = "@@@"
)

var tokenPattern = regexp.MustCompile(`@@@([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})@@@`)

// Store holds chunks either in memory or as files in a private temp directory
type Store struct {
	mu        sync.Mutex
	threshold int
	dir       string
	memory    map[string]string
	files     map[string]string
}

// NewStore creates a store that chunks strings longer than threshold. With
// an empty baseDir chunks stay in memory, otherwise each one is written to a
// file in a new directory below baseDir.
func NewStore(threshold utils.MemorySize, baseDir string) (*Store, error) {
	s := &Store{
		threshold: int(threshold),
		memory:    map[string]string{},
		files:     map[string]string{},
	}
	if baseDir == "" {
		return s, nil
	}

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create chunk directory %s: %w", baseDir, err)
	}
	dir, err := os.MkdirTemp(baseDir, "vardig-chunks-")
	if err != nil {
		return nil, fmt.Errorf("failed to create chunk directory in %s: %w", baseDir, err)
	}
	s.dir = dir
	return s, nil
}

// Chunk stores s when it is above the threshold and returns a token that
// stands in for it. Short strings are returned unchanged.
func (s *Store) Chunk(str string) (string, error) {
	if s.threshold <= 0 || len(str) <= s.threshold {
		return str, nil
	}

	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dir == "" {
		s.memory[id] = str
		return tokenPrefix + id + tokenSuffix, nil
	}

	path := filepath.Join(s.dir, id+".chunk")
	if err := os.WriteFile(path, []byte(str), 0600); err != nil {
		return "", fmt.Errorf("failed to write chunk %s: %w", id, err)
	}
	s.files[id] = path
	return tokenPrefix + id + tokenSuffix, nil
}

// Send writes str to w, replacing every token by its chunk. Chunks may
// themselves contain tokens.
func (s *Store) Send(w io.Writer, str string) error {
	return s.send(w, str, map[string]bool{})
}

func (s *Store) send(w io.Writer, str string, open map[string]bool) error {
	for {
		loc := tokenPattern.FindStringSubmatchIndex(str)
		if loc == nil {
			_, err := io.WriteString(w, str)
			return err
		}

		if _, err := io.WriteString(w, str[:loc[0]]); err != nil {
			return err
		}

		id := str[loc[2]:loc[3]]
		content, ok, err := s.load(id)
		if err != nil {
			return err
		}
		switch {
		case !ok:
			// not ours, pass through
			if _, err := io.WriteString(w, str[loc[0]:loc[1]]); err != nil {
				return err
			}
		case open[id]:
			return fmt.Errorf("chunk %s contains itself", id)
		default:
			open[id] = true
			if err := s.send(w, content, open); err != nil {
				return err
			}
			delete(open, id)
		}

		str = str[loc[1]:]
	}
}

func (s *Store) load(id string) (string, bool, error) {
	s.mu.Lock()
	content, inMemory := s.memory[id]
	path, onDisk := s.files[id]
	s.mu.Unlock()

	switch {
	case inMemory:
		return content, true, nil
	case onDisk:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", false, fmt.Errorf("failed to read chunk %s: %w", id, err)
		}
		return string(data), true, nil
	}
	return "", false, nil
}

// Len returns the number of stored chunks
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.memory) + len(s.files)
}

// Cleanup drops every chunk and removes the chunk directory
func (s *Store) Cleanup() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.memory = map[string]string{}
	s.files = map[string]string{}
	if s.dir == "" {
		return nil
	}
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("failed to remove chunk directory %s: %w", s.dir, err)
	}
	return nil
}
