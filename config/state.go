package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bizdesk/log"

	"github.com/gofrs/flock"
)

const (
	StateFileName = "state.json"
)

// AppState handles application-level state
type AppState interface {
	// GetHelpScreensSeen returns the bitmask of seen help screens
	GetHelpScreensSeen() uint32
	// SetHelpScreensSeen updates the bitmask of seen help screens
	SetHelpScreensSeen(seen uint32) error
	// GetLastResource returns the resource list that was open on exit
	GetLastResource() string
	// SetLastResource records the open resource list
	SetLastResource(id string) error
}

// State represents the application state that persists between sessions
type State struct {
	// HelpScreensSeen is a bitmask tracking which resource help screens have been shown
	HelpScreensSeen uint32 `json:"help_screens_seen"`
	// LastResource is the id of the resource list open when the app last saved
	LastResource string `json:"last_resource"`

	dir string

	// Lock file for coordinating state access across processes
	lockFile    *flock.Flock
	lockTimeout time.Duration
}

const (
	// DefaultLockTimeout is the default timeout for acquiring locks
	DefaultLockTimeout = 5 * time.Second
	// LockFileName is the name of the lock file
	LockFileName = "state.lock"
)

// DefaultState returns the default state stored under the config directory
func DefaultState() *State {
	configDir, err := GetConfigDir()
	if err != nil {
		log.ErrorLog.Printf("failed to get config directory: %v", err)
		// Return a minimal state without locking if we can't get the config dir
		return &State{}
	}
	return NewState(configDir)
}

// NewState returns an empty state stored in dir.
func NewState(dir string) *State {
	return &State{
		dir:         dir,
		lockFile:    flock.New(filepath.Join(dir, LockFileName)),
		lockTimeout: DefaultLockTimeout,
	}
}

// LoadState loads the state from disk with locking. If it cannot be done, we return the default state.
func LoadState() *State {
	state := DefaultState()
	if err := state.loadFromDisk(); err != nil {
		log.WarningLog.Printf("failed to load state from disk: %v", err)
	}
	return state
}

// loadFromDisk loads state from disk with a shared read lock
func (s *State) loadFromDisk() error {
	if s.lockFile == nil {
		log.WarningLog.Printf("lock file not initialized, loading state without locking")
		return s.loadFromDiskWithoutLocking()
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.lockTimeout)
	defer cancel()

	locked, err := s.lockFile.TryRLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("failed to acquire read lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("could not acquire read lock within timeout")
	}
	defer s.lockFile.Unlock()

	return s.loadFromDiskWithoutLocking()
}

// loadFromDiskWithoutLocking loads state from disk without locking
func (s *State) loadFromDiskWithoutLocking() error {
	if s.dir == "" {
		return fmt.Errorf("no state directory")
	}
	data, err := os.ReadFile(filepath.Join(s.dir, StateFileName))
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist yet - keep the default state
			return nil
		}
		return fmt.Errorf("failed to read state file: %w", err)
	}

	var onDisk State
	if err := json.Unmarshal(data, &onDisk); err != nil {
		return fmt.Errorf("failed to parse state file: %w", err)
	}
	s.HelpScreensSeen = onDisk.HelpScreensSeen
	s.LastResource = onDisk.LastResource
	return nil
}

// SaveState saves the state to disk with locking
func SaveState(state *State) error {
	if err := state.mergeWithExistingState(); err != nil {
		log.WarningLog.Printf("failed to merge with existing state: %v", err)
		// Continue with save anyway
	}
	return state.saveToDisk()
}

// mergeWithExistingState folds in help screens another process has marked
// seen, so a concurrent save never un-sees a screen.
func (s *State) mergeWithExistingState() error {
	if s.dir == "" {
		return nil
	}
	diskState := NewState(s.dir)
	diskState.lockTimeout = s.lockTimeout
	if err := diskState.loadFromDisk(); err != nil {
		return fmt.Errorf("failed to load existing state for merging: %w", err)
	}
	s.HelpScreensSeen |= diskState.HelpScreensSeen
	return nil
}

// saveToDisk saves state to disk with an exclusive write lock
func (s *State) saveToDisk() error {
	if s.lockFile == nil {
		log.WarningLog.Printf("lock file not initialized, saving state without locking")
		return s.saveToDiskWithoutLocking()
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.lockTimeout)
	defer cancel()

	locked, err := s.lockFile.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("failed to acquire write lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("could not acquire write lock within timeout")
	}
	defer s.lockFile.Unlock()

	return s.saveToDiskWithoutLocking()
}

// saveToDiskWithoutLocking writes the file through a temporary file and a
// rename so readers never see a partial write.
func (s *State) saveToDiskWithoutLocking() error {
	if s.dir == "" {
		return fmt.Errorf("no state directory")
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	statePath := filepath.Join(s.dir, StateFileName)
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tmpPath := statePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary state file: %w", err)
	}
	if err := os.Rename(tmpPath, statePath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to atomically update state file: %w", err)
	}
	return nil
}

// RefreshState reloads state from disk to pick up changes by other processes.
// Help screens seen in this process stay seen.
func (s *State) RefreshState() error {
	seen := s.HelpScreensSeen
	if err := s.loadFromDisk(); err != nil {
		return err
	}
	s.HelpScreensSeen |= seen
	return nil
}

// AppState interface implementation

func (s *State) GetHelpScreensSeen() uint32 {
	return s.HelpScreensSeen
}

func (s *State) SetHelpScreensSeen(seen uint32) error {
	s.HelpScreensSeen = seen
	return SaveState(s)
}

func (s *State) GetLastResource() string {
	return s.LastResource
}

func (s *State) SetLastResource(id string) error {
	s.LastResource = id
	return SaveState(s)
}

// Close releases the lock file handle.
func (s *State) Close() error {
	if s.lockFile == nil {
		return nil
	}
	return s.lockFile.Close()
}
