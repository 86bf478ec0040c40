// Package json persists transcripts as versioned JSON files.
package json

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pwalczyk/trickle"
)

// envelope is the v1 wire format for a persisted transcript.
type envelope struct {
	Version      int        `json:"version"`
	ID           string     `json:"id"`
	Model        string     `json:"model"`
	Instructions string     `json:"instructions,omitempty"`
	Input        []inputDTO `json:"input"`
	OutputText   string     `json:"output_text"`
	Usage        usageDTO   `json:"usage"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type inputDTO struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type usageDTO struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	CachedTokens int `json:"cached_tokens,omitempty"`
	TotalTokens  int `json:"total_tokens"`
}

// MarshalTranscript serializes a Transcript to JSON in v1 envelope format.
func MarshalTranscript(tr trickle.Transcript) ([]byte, error) {
	env := envelope{
		Version:      1,
		ID:           tr.ID,
		Model:        tr.Model,
		Instructions: tr.Instructions,
		Input:        make([]inputDTO, len(tr.Input)),
		OutputText:   tr.OutputText,
		Usage: usageDTO{
			InputTokens:  tr.Usage.InputTokens,
			OutputTokens: tr.Usage.OutputTokens,
			CachedTokens: tr.Usage.CachedTokens,
			TotalTokens:  tr.Usage.TotalTokens,
		},
		CreatedAt: tr.CreatedAt,
		UpdatedAt: tr.UpdatedAt,
	}
	for i, m := range tr.Input {
		env.Input[i] = inputDTO{Role: string(m.Role), Content: m.Content}
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalTranscript deserializes a Transcript from JSON in v1 envelope
// format.
func UnmarshalTranscript(data []byte) (trickle.Transcript, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return trickle.Transcript{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != 1 {
		return trickle.Transcript{}, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	tr := trickle.Transcript{
		ID:           env.ID,
		Model:        env.Model,
		Instructions: env.Instructions,
		Input:        make([]trickle.Message, len(env.Input)),
		OutputText:   env.OutputText,
		Usage: trickle.Usage{
			InputTokens:  env.Usage.InputTokens,
			OutputTokens: env.Usage.OutputTokens,
			CachedTokens: env.Usage.CachedTokens,
			TotalTokens:  env.Usage.TotalTokens,
		},
		CreatedAt: env.CreatedAt,
		UpdatedAt: env.UpdatedAt,
	}
	for i, dto := range env.Input {
		tr.Input[i] = trickle.Message{Role: trickle.Role(dto.Role), Content: dto.Content}
	}
	return tr, nil
}

// Save writes a Transcript to a JSON file, creating parent directories as
// needed. The write goes through a temp file and a rename so a crash never
// leaves a half-written transcript behind.
func Save(path string, tr trickle.Transcript) error {
	data, err := MarshalTranscript(tr)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads a Transcript from a JSON file.
func Load(path string) (trickle.Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return trickle.Transcript{}, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalTranscript(data)
}

// List returns the paths of transcript files under dir matching pattern,
// sorted lexically. Patterns support ** for recursive matching; an empty
// pattern lists every .json file.
func List(dir, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "**/*.json"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern: %s", pattern)
	}
	matches, err := doublestar.Glob(os.DirFS(dir), pattern)
	if err != nil {
		return nil, fmt.Errorf("match pattern: %w", err)
	}
	paths := make([]string, len(matches))
	for i, m := range matches {
		paths[i] = filepath.Join(dir, filepath.FromSlash(m))
	}
	sort.Strings(paths)
	return paths, nil
}
