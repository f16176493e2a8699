// Package feedback persists user corrections given during interactive
// extraction refinement. Records are stored as append-only JSON lines in a
// local file so that a rerun over the same transcript can replay every
// correction from earlier rounds.
package feedback

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// Record is a single feedback entry written to the file store.
type Record struct {
	Timestamp  time.Time `json:"timestamp"`
	Transcript string    `json:"transcript"`
	Feedback   string    `json:"feedback"`
}

// FileStore persists feedback as JSON lines in a local file.
// Thread-safe for concurrent use.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a FileStore that writes to the given path.
// The file is created on first append if it does not exist.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Append writes a feedback record for the given transcript identifier.
// Blank feedback is ignored.
func (fs *FileStore) Append(transcript, fb string) error {
	if strings.TrimSpace(fb) == "" {
		return nil
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	record := Record{
		Timestamp:  time.Now().UTC(),
		Transcript: transcript,
		Feedback:   fb,
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("feedback: marshal: %w", err)
	}
	data = append(data, '\n')

	f, err := os.OpenFile(fs.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("feedback: open file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("feedback: write: %w", err)
	}
	return nil
}

// History returns all feedback recorded for the given transcript identifier,
// oldest first. A missing store file yields an empty history.
func (fs *FileStore) History(transcript string) ([]string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	f, err := os.Open(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("feedback: open file: %w", err)
	}
	defer f.Close()

	var history []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			// Skip corrupted lines rather than losing the whole history.
			continue
		}
		if rec.Transcript == transcript {
			history = append(history, rec.Feedback)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("feedback: read: %w", err)
	}
	return history, nil
}

// Combined returns the full feedback history for transcript joined into one
// block, newline-separated, suitable for inclusion in an extraction prompt.
func (fs *FileStore) Combined(transcript string) (string, error) {
	history, err := fs.History(transcript)
	if err != nil {
		return "", err
	}
	return strings.Join(history, "\n"), nil
}
