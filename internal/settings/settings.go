package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"liquiditySupply/internal/router"
	"liquiditySupply/internal/slippage"
)

var ErrInvalidDeadline = errors.New("deadline must be at least one minute")

// Settings are the user's transaction preferences.
type Settings struct {
	SlippageBps  uint32 `json:"slippage_bps"`
	DeadlineSecs int64  `json:"deadline_secs"`
	ExpertMode   bool   `json:"expert_mode"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

func Defaults() Settings {
	return Settings{
		SlippageBps:  slippage.DefaultToleranceBps,
		DeadlineSecs: int64(router.DefaultDeadlineTTL / time.Second),
	}
}

// Deadline returns the configured deadline window.
func (s Settings) Deadline() time.Duration {
	return time.Duration(s.DeadlineSecs) * time.Second
}

func (s Settings) Validate() error {
	if s.SlippageBps > slippage.BpsDenominator {
		return slippage.ErrInvalidTolerance
	}
	if s.DeadlineSecs < 60 {
		return ErrInvalidDeadline
	}
	return nil
}

// Store persists settings to disk.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns the saved settings, or defaults and false when none exist.
func (s *Store) Load() (Settings, bool, error) {
	stat, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Defaults(), false, nil
		}
		return Settings{}, false, fmt.Errorf("stat settings: %w", err)
	}
	if stat.IsDir() {
		return Settings{}, false, fmt.Errorf("settings path is a directory")
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return Settings{}, false, fmt.Errorf("read settings: %w", err)
	}

	out := Defaults()
	if err := json.Unmarshal(data, &out); err != nil {
		return Settings{}, false, fmt.Errorf("parse settings: %w", err)
	}
	if err := out.Validate(); err != nil {
		return Settings{}, false, fmt.Errorf("invalid settings: %w", err)
	}
	return out, true, nil
}

// Save validates and atomically replaces the settings file.
func (s *Store) Save(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}

	settings.UpdatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write settings tmp: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("rename settings: %w", err)
	}
	return nil
}
