package moderation

import (
	"bufio"
	"bytes"
	"embed"
	"io/fs"
	"ipk-chat/errors"
	"strings"

	"github.com/samber/lo"
)

const (
	blockedFile = "words/blocked.txt"
	triggerFile = "words/segment.txt"
)

//go:embed words/*.txt
var DefaultWords embed.FS

// WordLists carries the loaded lists, used for logging at startup.
type WordLists struct {
	Blocked  []string
	Triggers []string
}

// WordLoader reads word lists, one word per line, from a filesystem.
type WordLoader struct {
	fs fs.FS
}

func NewWordLoader(f fs.FS) *WordLoader {
	return &WordLoader{fs: f}
}

func (l *WordLoader) LoadAll() (WordLists, error) {
	blocked, err := l.Load(blockedFile)
	if err != nil {
		return WordLists{}, err
	}
	triggers, err := l.Load(triggerFile)
	if err != nil {
		return WordLists{}, err
	}
	return WordLists{Blocked: blocked, Triggers: triggers}, nil
}

// Load parses one list, skipping blank lines and duplicates.
func (l *WordLoader) Load(name string) ([]string, error) {
	data, err := fs.ReadFile(l.fs, name)
	if err != nil {
		return nil, err
	}

	// Use a scanner to handle different line endings (\n vs \r\n) correctly
	var words []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			words = append(words, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, errors.ErrEmptyWords
	}
	return lo.Uniq(words), nil
}

// ParseList splits a comma separated list as found in environment variables.
func ParseList(csv string) []string {
	return lo.Uniq(lo.Compact(lo.Map(strings.Split(csv, ","), func(item string, _ int) string {
		return strings.TrimSpace(item)
	})))
}
