package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pfrederiksen/masters-pool/internal/competitor"
	"github.com/pfrederiksen/masters-pool/internal/leaderboard"
	"github.com/pfrederiksen/masters-pool/internal/logger"
)

const poolFileName = "pool.json"

// ErrNotFound is returned when a competitor ID does not exist.
var ErrNotFound = errors.New("competitor not found")

// poolFile is the on-disk layout
type poolFile struct {
	Competitors []*competitor.Competitor `json:"competitors"`
	Ledger      *competitor.Ledger       `json:"ledger"`
	UpdatedAt   string                   `json:"updated_at"`
}

// Storage handles persistence of competitors and master scores
type Storage struct {
	dataDir string
	mu      sync.Mutex
}

// New creates a new Storage instance
func New(dataDir string) (*Storage, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
	}, nil
}

// Path returns the pool file location
func (s *Storage) Path() string {
	return filepath.Join(s.dataDir, poolFileName)
}

// load reads the pool file; a missing file is an empty pool
func (s *Storage) load() (*poolFile, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return &poolFile{Ledger: competitor.NewLedger()}, nil
		}
		return nil, fmt.Errorf("reading pool: %w", err)
	}

	var pf poolFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parsing pool: %w", err)
	}

	if pf.Ledger == nil {
		pf.Ledger = competitor.NewLedger()
	}
	if pf.Ledger.Scores == nil {
		pf.Ledger.Scores = make(map[string]*competitor.MasterScore)
	}

	return &pf, nil
}

// save writes the pool file via a temp file and rename
func (s *Storage) save(pf *poolFile) error {
	pf.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(pf, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding pool: %w", err)
	}

	tmp, err := os.CreateTemp(s.dataDir, poolFileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing pool: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing pool: %w", err)
	}
	if err := os.Rename(tmpName, s.Path()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing pool: %w", err)
	}

	return nil
}

// ListCompetitors returns all competitors in the order they were added
func (s *Storage) ListCompetitors() ([]competitor.Competitor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pf, err := s.load()
	if err != nil {
		return nil, err
	}

	out := make([]competitor.Competitor, 0, len(pf.Competitors))
	for _, c := range pf.Competitors {
		out = append(out, *c)
	}
	return out, nil
}

// GetCompetitor returns one competitor by ID
func (s *Storage) GetCompetitor(id string) (*competitor.Competitor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pf, err := s.load()
	if err != nil {
		return nil, err
	}

	for _, c := range pf.Competitors {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// AddCompetitor validates and appends a competitor
func (s *Storage) AddCompetitor(c *competitor.Competitor) error {
	c.Normalize()
	if err := c.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pf, err := s.load()
	if err != nil {
		return err
	}

	pf.Competitors = append(pf.Competitors, c)
	if err := s.save(pf); err != nil {
		return err
	}

	logger.Info("Competitor added", logger.Fields{
		"id":   c.ID,
		"name": c.Name,
	})
	return nil
}

// UpdateCompetitor replaces the name and picks of an existing competitor
func (s *Storage) UpdateCompetitor(c *competitor.Competitor) error {
	c.Normalize()
	if err := c.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pf, err := s.load()
	if err != nil {
		return err
	}

	for _, existing := range pf.Competitors {
		if existing.ID == c.ID {
			existing.Name = c.Name
			existing.Players = c.Players
			return s.save(pf)
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, c.ID)
}

// DeleteCompetitor removes a competitor by ID
func (s *Storage) DeleteCompetitor(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pf, err := s.load()
	if err != nil {
		return err
	}

	for i, c := range pf.Competitors {
		if c.ID == id {
			pf.Competitors = append(pf.Competitors[:i], pf.Competitors[i+1:]...)
			if err := s.save(pf); err != nil {
				return err
			}
			logger.Info("Competitor removed", logger.Fields{"id": id})
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// MasterScores returns every known player's current score and history
func (s *Storage) MasterScores() ([]competitor.MasterScore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pf, err := s.load()
	if err != nil {
		return nil, err
	}
	return pf.Ledger.List(), nil
}

// RecordScores applies a fetched leaderboard to the ledger and persists it
func (s *Storage) RecordScores(scraped []leaderboard.PlayerScore, now time.Time) ([]competitor.Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pf, err := s.load()
	if err != nil {
		return nil, err
	}

	changes := pf.Ledger.Apply(scraped, now)
	if err := s.save(pf); err != nil {
		return nil, err
	}
	return changes, nil
}
