// Package history writes per-session JSONL mutation logs and tail output.
package history

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Entry is one recorded planner mutation.
type Entry struct {
	Time   time.Time `json:"ts"`
	Op     string    `json:"op"`
	Date   string    `json:"date,omitempty"`
	TaskID int       `json:"task_id,omitempty"`
	Detail string    `json:"detail,omitempty"`
}

// SessionLog appends planner mutations to a per-session JSONL file.
// A nil *SessionLog is valid and records nothing, so callers can hold one
// unconditionally and leave history disabled.
type SessionLog struct {
	Dir       string
	SessionID string
	LogPath   string
	file      *os.File
	enc       *json.Encoder
}

// NewSessionLog creates the history directory and a session JSONL file.
func NewSessionLog(dir string) (*SessionLog, error) {
	if dir == "" {
		return nil, fmt.Errorf("history dir is empty")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	id := sessionID()
	logPath := filepath.Join(dir, fmt.Sprintf("%s.jsonl", id))
	file, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("create history file: %w", err)
	}

	return &SessionLog{
		Dir:       dir,
		SessionID: id,
		LogPath:   logPath,
		file:      file,
		enc:       json.NewEncoder(file),
	}, nil
}

// Record appends one mutation entry with the current time.
func (l *SessionLog) Record(op, date string, taskID int, detail string) error {
	if l == nil || l.enc == nil {
		return nil
	}
	entry := Entry{
		Time:   time.Now().UTC(),
		Op:     op,
		Date:   date,
		TaskID: taskID,
		Detail: detail,
	}
	if err := l.enc.Encode(&entry); err != nil {
		return fmt.Errorf("write history entry: %w", err)
	}
	return nil
}

// Close closes the session file.
func (l *SessionLog) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

func sessionID() string {
	return fmt.Sprintf("%s-%d", time.Now().UTC().Format("20060102-150405"), os.Getpid())
}

// FindLatest finds the latest session JSONL file in a directory.
func FindLatest(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read history dir: %w", err)
	}

	var latest string
	var latestTime time.Time

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".jsonl") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latest = filepath.Join(dir, name)
		}
	}

	return latest, nil
}

// Tail writes a session file to a writer, optionally following.
func Tail(w io.Writer, path string, n int, follow bool) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open history file: %w", err)
	}
	defer file.Close()

	// If n > 0, seek to show only last n lines
	if n > 0 {
		if err := tailSeek(file, n); err != nil {
			return fmt.Errorf("seek to tail position: %w", err)
		}
	}

	if follow {
		return tailFollow(w, file)
	}

	// Just dump the rest of the file
	_, err = io.Copy(w, file)
	return err
}

// tailSeek seeks to a position that shows approximately the last n lines.
func tailSeek(file *os.File, n int) error {
	const avgLineLength = 100

	stat, err := file.Stat()
	if err != nil {
		return err
	}

	size := stat.Size()
	if size < avgLineLength*int64(n) {
		// File is small enough, just read from start
		_, err = file.Seek(0, io.SeekStart)
		return err
	}

	// Seek back from end
	offset := size - int64(n*avgLineLength)
	if offset < 0 {
		offset = 0
	}
	_, err = file.Seek(offset, io.SeekStart)
	if err != nil {
		return err
	}

	// Discard partial first line
	buf := make([]byte, 1)
	_, err = file.Read(buf)
	if err != nil {
		return err
	}
	for {
		if buf[0] == '\n' {
			break
		}
		_, err := file.Read(buf)
		if err != nil {
			break
		}
	}

	return nil
}

// tailFollow follows a file like tail -f.
func tailFollow(w io.Writer, file *os.File) error {
	// First, copy existing content
	if _, err := io.Copy(w, file); err != nil {
		return err
	}

	// Then follow for new content
	for {
		_, err := io.Copy(w, file)
		if err != nil {
			return err
		}

		// Wait briefly before checking for more data
		time.Sleep(100 * time.Millisecond)

		// Check if more data is available
		var buf [1]byte
		_, err = file.Read(buf[:])
		if err != nil {
			if err == io.EOF {
				continue
			}
			return err
		}
		// We read a byte, write it and continue copying
		if _, err := w.Write(buf[:]); err != nil {
			return err
		}
	}
}
