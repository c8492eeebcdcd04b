// Package studio is the terminal client of the kirie API: it calls the HTTP
// endpoints, keeps a local generation history and saves images to disk.
package studio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/i18n"
	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/storage"
)

// HistoryLimit caps the number of remembered generations.
const HistoryLimit = 50

const stateKey = "history.json"

// HistoryEntry is one successful generation.
type HistoryEntry struct {
	ImageURL  string    `json:"imageUrl"`
	Prompt    string    `json:"prompt"`
	Style     string    `json:"style"`
	StyleName string    `json:"styleName,omitempty"`
	Model     string    `json:"model,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type stateFile struct {
	Language string         `json:"language"`
	Current  int            `json:"current"`
	History  []HistoryEntry `json:"history"`
}

// State holds the client's history, the image on screen and the UI
// language. It is not safe for concurrent use.
type State struct {
	store    *storage.FileStore
	history  []HistoryEntry
	current  int
	language string
}

// Load reads the persisted state from store. A missing or unreadable file
// yields an empty history.
func Load(ctx context.Context, store *storage.FileStore) (*State, error) {
	s := &State{store: store, current: -1, language: i18n.DefaultLocale}
	data, err := store.Read(ctx, stateKey)
	if errors.Is(err, storage.ErrNotFound) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	var file stateFile
	if err := json.Unmarshal(data, &file); err != nil {
		return s, nil
	}
	s.language = i18n.Normalize(file.Language)
	s.history = file.History
	if len(s.history) > HistoryLimit {
		s.history = s.history[:HistoryLimit]
	}
	s.current = -1
	if file.Current >= 0 && file.Current < len(s.history) {
		s.current = file.Current
	}
	return s, nil
}

// Record puts entry at the head of the history, evicting the oldest one past
// HistoryLimit, makes it current and persists.
func (s *State) Record(ctx context.Context, entry HistoryEntry) error {
	s.history = append([]HistoryEntry{entry}, s.history...)
	if len(s.history) > HistoryLimit {
		s.history = s.history[:HistoryLimit]
	}
	s.current = 0
	return s.save(ctx)
}

// Clear drops every entry and persists.
func (s *State) Clear(ctx context.Context) error {
	s.history = nil
	s.current = -1
	return s.save(ctx)
}

// Show makes the entry at index current.
func (s *State) Show(ctx context.Context, index int) (HistoryEntry, error) {
	if index < 0 || index >= len(s.history) {
		return HistoryEntry{}, fmt.Errorf("history index %d out of range", index)
	}
	s.current = index
	return s.history[index], s.save(ctx)
}

// Current returns the image on screen, if any.
func (s *State) Current() (HistoryEntry, bool) {
	if s.current < 0 || s.current >= len(s.history) {
		return HistoryEntry{}, false
	}
	return s.history[s.current], true
}

// History returns a copy of the entries, newest first.
func (s *State) History() []HistoryEntry {
	out := make([]HistoryEntry, len(s.history))
	copy(out, s.history)
	return out
}

// Language returns the UI locale.
func (s *State) Language() string { return s.language }

// SetLanguage switches the UI locale and persists it.
func (s *State) SetLanguage(ctx context.Context, locale string) error {
	s.language = i18n.Normalize(locale)
	return s.save(ctx)
}

// T renders a message in the state's language.
func (s *State) T(key string, args ...any) string {
	return i18n.T(s.language, key, args...)
}

func (s *State) save(ctx context.Context) error {
	data, err := json.MarshalIndent(stateFile{Language: s.language, Current: s.current, History: s.history}, "", "  ")
	if err != nil {
		return fmt.Errorf("studio: encode state: %w", err)
	}
	if _, err := s.store.Write(ctx, stateKey, data); err != nil {
		return fmt.Errorf("studio: save state: %w", err)
	}
	return nil
}
