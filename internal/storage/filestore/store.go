// Package filestore is a storage backend that keeps the whole dataset in one
// JSON document. Every committed write rewrites the file.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/wabdoteth/sappy-care/internal/storage"
)

type state struct {
	Companion   *storage.Companion          `json:"companion,omitempty"`
	Goals       []storage.Goal              `json:"goals"`
	Completions []storage.GoalCompletion    `json:"goalCompletions"`
	Checkins    []storage.Checkin           `json:"checkins"`
	Sessions    []storage.ActivitySession   `json:"activitySessions"`
	Quests      []storage.Quest             `json:"quests"`
	Ledger      []storage.RewardLedgerEntry `json:"rewardLedger"`
	Items       []storage.Item              `json:"items"`
	StoryCards  []storage.StoryCard         `json:"storyCards"`
	Inventory   []storage.UserItem          `json:"userItems"`
	BloomRuns   []storage.BloomRun          `json:"bloomRuns"`
	Instances   []storage.StoryCardInstance `json:"storyCardInstances"`
	Friends     []storage.Friend            `json:"friends"`
	Notes       []storage.SupportNote       `json:"supportNotes"`
	FriendCode  string                      `json:"friendCode,omitempty"`
	Settings    storage.Settings            `json:"settings"`
}

// clone deep-copies the state through its JSON form.
func (st *state) clone() (*state, error) {
	data, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("snapshot state: %w", err)
	}
	var out state
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("snapshot state: %w", err)
	}
	return &out, nil
}

// Store is a JSON file backed store. The zero value is not usable; use Open or OpenMemory.
//
// Other processes may rewrite the file (the CLI next to a running board or
// MCP server), so every access first reloads the file if it changed since
// this Store last read or wrote it.
type Store struct {
	mu   sync.Mutex
	path string
	st   *state
	// seen is the file as of the last load or save; nil if it did not exist.
	seen os.FileInfo
}

var _ storage.Store = (*Store)(nil)

// Open loads the store at path, creating an empty one if the file is missing.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	s := &Store{path: path, st: &state{}}
	if err := s.syncLocked(); err != nil {
		return nil, err
	}
	return s, nil
}

// syncLocked reloads the file when it differs from what this Store last saw.
// A missing file leaves the in-memory state alone.
func (s *Store) syncLocked() error {
	if s.path == "" {
		return nil
	}
	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat store: %w", err)
	}
	if s.seen != nil && os.SameFile(info, s.seen) && info.ModTime().Equal(s.seen.ModTime()) && info.Size() == s.seen.Size() {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read store: %w", err)
	}
	next := &state{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, next); err != nil {
			return fmt.Errorf("decode store %s: %w", s.path, err)
		}
	}
	s.st = next
	s.seen = info
	return nil
}

// OpenMemory returns a store that is never written to disk.
func OpenMemory() *Store {
	return &Store{st: &state{}}
}

// Path returns the backing file, or "" for memory stores.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) Repos() storage.Repos {
	return reposFor(&view{s: s})
}

// Atomic runs fn against a private copy of the state. The copy replaces the
// live state and is written to disk only when fn succeeds.
func (s *Store) Atomic(ctx context.Context, fn func(r storage.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.syncLocked(); err != nil {
		return err
	}
	next, err := s.st.clone()
	if err != nil {
		return err
	}
	if err := fn(reposFor(&view{s: s, tx: next})); err != nil {
		return err
	}
	if err := s.saveLocked(next); err != nil {
		return err
	}
	s.st = next
	return nil
}

// Reset drops all user data. Items and story cards are kept.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.syncLocked(); err != nil {
		return err
	}
	next := &state{Items: s.st.Items, StoryCards: s.st.StoryCards}
	if err := s.saveLocked(next); err != nil {
		return err
	}
	s.st = next
	return nil
}

func (s *Store) saveLocked(st *state) error {
	if s.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace store: %w", err)
	}
	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("stat store: %w", err)
	}
	s.seen = info
	return nil
}

// view routes repository calls either to the live state (locking and saving
// per call) or to a transaction copy owned by Atomic.
type view struct {
	s  *Store
	tx *state
}

func (v *view) read(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if v.tx != nil {
		return fn(v.tx)
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.syncLocked(); err != nil {
		return err
	}
	return fn(v.s.st)
}

func (v *view) write(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if v.tx != nil {
		return fn(v.tx)
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.syncLocked(); err != nil {
		return err
	}

	next, err := v.s.st.clone()
	if err != nil {
		return err
	}
	if err := fn(next); err != nil {
		return err
	}
	if err := v.s.saveLocked(next); err != nil {
		return err
	}
	v.s.st = next
	return nil
}

func reposFor(v *view) storage.Repos {
	return storage.Repos{
		Companion: &companionRepo{v: v},
		Goals:     &goalRepo{v: v},
		Checkins:  &checkinRepo{v: v},
		Activity:  &activityRepo{v: v},
		Quests:    &questRepo{v: v},
		Rewards:   &rewardRepo{v: v},
		Shop:      &shopRepo{v: v},
		Bloom:     &bloomRepo{v: v},
		Friends:   &friendRepo{v: v},
		Settings:  &settingsRepo{v: v},
	}
}
