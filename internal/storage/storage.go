// Package storage persists engine settings, game results and analysed
// positions in a badger database.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hailam/chesscore/internal/board"
)

const (
	keySettings     = "settings"
	keyStats        = "stats"
	analysisPrefix  = "analysis/"
	defaultAnalysis = 30 * 24 * time.Hour
)

// Settings are the engine options remembered between runs.
type Settings struct {
	Difficulty   string    `json:"difficulty"`
	HashMB       int       `json:"hash_mb"`
	DefaultDepth int       `json:"default_depth"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func DefaultSettings() Settings {
	return Settings{
		Difficulty:   "hard",
		HashMB:       16,
		DefaultDepth: 4,
	}
}

// GameStats counts finished games by result.
type GameStats struct {
	GamesPlayed int            `json:"games_played"`
	WhiteWins   int            `json:"white_wins"`
	BlackWins   int            `json:"black_wins"`
	Draws       int            `json:"draws"`
	DrawReasons map[string]int `json:"draw_reasons"`
	TotalPlies  int            `json:"total_plies"`
}

func NewGameStats() *GameStats {
	return &GameStats{DrawReasons: make(map[string]int)}
}

// WhiteScore is White's percentage score, counting draws as half.
func (s *GameStats) WhiteScore() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return (float64(s.WhiteWins) + float64(s.Draws)/2) / float64(s.GamesPlayed) * 100
}

// Analysis is a stored search result for one position.
type Analysis struct {
	FEN        string    `json:"fen"`
	Move       string    `json:"move"`
	Score      int       `json:"score"`
	Depth      int       `json:"depth"`
	Nodes      uint64    `json:"nodes"`
	PV         []string  `json:"pv,omitempty"`
	SearchedAt time.Time `json:"searched_at"`
}

// Storage wraps a badger database.
type Storage struct {
	db          *badger.DB
	analysisTTL time.Duration
}

// Open opens or creates the database in dir.
func Open(dir string) (*Storage, error) {
	return open(badger.DefaultOptions(dir))
}

// OpenDefault opens the database in the platform data directory.
func OpenDefault() (*Storage, error) {
	dir, err := DatabaseDir()
	if err != nil {
		return nil, fmt.Errorf("storage: locate database: %w", err)
	}
	return Open(dir)
}

// OpenInMemory opens a database that lives only as long as the process.
func OpenInMemory() (*Storage, error) {
	return open(badger.DefaultOptions("").WithInMemory(true))
}

func open(opts badger.Options) (*Storage, error) {
	opts.Logger = badgerLogger{log.Logger.With().Str("component", "badger").Logger()}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("storage: open %q: %w", opts.Dir, err)
	}
	return &Storage{db: db, analysisTTL: defaultAnalysis}, nil
}

// SetAnalysisTTL sets how long new analysis entries are kept. Zero keeps
// them forever.
func (s *Storage) SetAnalysisTTL(d time.Duration) { s.analysisTTL = d }

func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Storage) put(key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", key, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), data)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("storage: write %s: %w", key, err)
	}
	return nil
}

// get decodes the value at key into v and reports whether it was present.
func (s *Storage) get(key string, v any) (bool, error) {
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
	if err != nil {
		return false, fmt.Errorf("storage: read %s: %w", key, err)
	}
	return found, nil
}

// SaveSettings stores settings, stamping UpdatedAt.
func (s *Storage) SaveSettings(st Settings) error {
	st.UpdatedAt = time.Now()
	return s.put(keySettings, st, 0)
}

// LoadSettings returns the stored settings, or the defaults if none were
// saved.
func (s *Storage) LoadSettings() (Settings, error) {
	st := DefaultSettings()
	_, err := s.get(keySettings, &st)
	return st, err
}

func (s *Storage) LoadStats() (*GameStats, error) {
	stats := NewGameStats()
	_, err := s.get(keyStats, stats)
	return stats, err
}

// RecordGame adds a finished game to the statistics.
func (s *Storage) RecordGame(status board.Status, reason board.DrawReason, plies int) error {
	if status == board.Ongoing {
		return fmt.Errorf("storage: record game: game is not over")
	}
	stats, err := s.LoadStats()
	if err != nil {
		return err
	}
	stats.GamesPlayed++
	stats.TotalPlies += plies
	switch status {
	case board.WhiteWins:
		stats.WhiteWins++
	case board.BlackWins:
		stats.BlackWins++
	case board.Draw:
		stats.Draws++
		stats.DrawReasons[reason.String()]++
	}
	return s.put(keyStats, stats, 0)
}

func analysisKey(hash uint64) string {
	return fmt.Sprintf("%s%016x", analysisPrefix, hash)
}

// LoadAnalysis returns the analysis stored under a Zobrist key. Entries
// whose FEN differs from fen are treated as missing, so hash collisions
// never surface.
func (s *Storage) LoadAnalysis(hash uint64, fen string) (Analysis, bool, error) {
	var a Analysis
	found, err := s.get(analysisKey(hash), &a)
	if err != nil {
		return Analysis{}, false, err
	}
	if !found || a.FEN != fen {
		log.Debug().Str("fen", fen).Msg("analysis-cache-miss")
		return Analysis{}, false, nil
	}
	log.Debug().Str("fen", fen).Int("depth", a.Depth).Msg("analysis-cache-hit")
	return a, true, nil
}

// SaveAnalysis stores a, keeping an existing entry that was searched
// deeper.
func (s *Storage) SaveAnalysis(hash uint64, a Analysis) error {
	old, ok, err := s.LoadAnalysis(hash, a.FEN)
	if err != nil {
		return err
	}
	if ok && old.Depth > a.Depth {
		return nil
	}
	if a.SearchedAt.IsZero() {
		a.SearchedAt = time.Now()
	}
	return s.put(analysisKey(hash), a, s.analysisTTL)
}

// CountAnalysis returns the number of stored analysis entries.
func (s *Storage) CountAnalysis() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(analysisPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("storage: count analysis: %w", err)
	}
	return n, nil
}

// ClearAnalysis removes every stored analysis entry.
func (s *Storage) ClearAnalysis() error {
	if err := s.db.DropPrefix([]byte(analysisPrefix)); err != nil {
		return fmt.Errorf("storage: clear analysis: %w", err)
	}
	return nil
}

// badgerLogger routes badger's own messages into zerolog. Info and debug
// chatter is demoted to trace.
type badgerLogger struct{ l zerolog.Logger }

func (b badgerLogger) Errorf(f string, args ...any)   { b.l.Error().Msgf(f, args...) }
func (b badgerLogger) Warningf(f string, args ...any) { b.l.Warn().Msgf(f, args...) }
func (b badgerLogger) Infof(f string, args ...any)    { b.l.Trace().Msgf(f, args...) }
func (b badgerLogger) Debugf(f string, args ...any)   { b.l.Trace().Msgf(f, args...) }
