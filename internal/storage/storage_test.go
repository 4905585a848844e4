package storage

import (
	"os"
	"testing"
	"time"

	"github.com/hailam/chesscore/internal/board"
)

func openTest(t *testing.T) *Storage {
	t.Helper()
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSettings(t *testing.T) {
	s := openTest(t)

	got, err := s.LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if got != DefaultSettings() {
		t.Errorf("LoadSettings on empty db = %+v, want defaults", got)
	}

	want := Settings{Difficulty: "medium", HashMB: 64, DefaultDepth: 6}
	if err := s.SaveSettings(want); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	got, err = s.LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if got.Difficulty != want.Difficulty || got.HashMB != want.HashMB || got.DefaultDepth != want.DefaultDepth {
		t.Errorf("LoadSettings = %+v, want %+v", got, want)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not stamped")
	}
}

func TestRecordGame(t *testing.T) {
	s := openTest(t)

	games := []struct {
		status board.Status
		reason board.DrawReason
	}{
		{board.WhiteWins, board.NotDrawn},
		{board.Draw, board.Stalemate},
		{board.Draw, board.ThreefoldRepetition},
		{board.BlackWins, board.NotDrawn},
	}
	for _, g := range games {
		if err := s.RecordGame(g.status, g.reason, 40); err != nil {
			t.Fatalf("RecordGame: %v", err)
		}
	}
	if err := s.RecordGame(board.Ongoing, board.NotDrawn, 1); err == nil {
		t.Error("RecordGame accepted an unfinished game")
	}

	stats, err := s.LoadStats()
	if err != nil {
		t.Fatalf("LoadStats: %v", err)
	}
	if stats.GamesPlayed != 4 || stats.WhiteWins != 1 || stats.BlackWins != 1 || stats.Draws != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.DrawReasons[board.Stalemate.String()] != 1 {
		t.Errorf("draw reasons = %v", stats.DrawReasons)
	}
	if stats.TotalPlies != 160 {
		t.Errorf("TotalPlies = %d, want 160", stats.TotalPlies)
	}
	if got := stats.WhiteScore(); got != 50 {
		t.Errorf("WhiteScore = %v, want 50", got)
	}
}

func TestAnalysisCache(t *testing.T) {
	s := openTest(t)
	pos := board.NewPosition()
	fen := pos.FEN()

	if _, ok, err := s.LoadAnalysis(pos.Hash, fen); err != nil || ok {
		t.Fatalf("LoadAnalysis on empty db = %v, %v", ok, err)
	}

	deep := Analysis{FEN: fen, Move: "e2e4", Score: 30, Depth: 6, Nodes: 1000}
	if err := s.SaveAnalysis(pos.Hash, deep); err != nil {
		t.Fatalf("SaveAnalysis: %v", err)
	}
	shallow := Analysis{FEN: fen, Move: "a2a3", Score: -5, Depth: 2}
	if err := s.SaveAnalysis(pos.Hash, shallow); err != nil {
		t.Fatalf("SaveAnalysis: %v", err)
	}

	got, ok, err := s.LoadAnalysis(pos.Hash, fen)
	if err != nil || !ok {
		t.Fatalf("LoadAnalysis = %v, %v", ok, err)
	}
	if got.Move != "e2e4" || got.Depth != 6 {
		t.Errorf("LoadAnalysis = %+v, want the deeper entry", got)
	}
	if got.SearchedAt.IsZero() {
		t.Error("SearchedAt not stamped")
	}

	// Same key, different position: treated as a miss.
	if _, ok, _ := s.LoadAnalysis(pos.Hash, "8/8/8/8/8/8/8/K6k w - - 0 1"); ok {
		t.Error("LoadAnalysis matched a different FEN")
	}

	if n, err := s.CountAnalysis(); err != nil || n != 1 {
		t.Errorf("CountAnalysis = %d, %v, want 1", n, err)
	}
	if err := s.ClearAnalysis(); err != nil {
		t.Fatalf("ClearAnalysis: %v", err)
	}
	if n, _ := s.CountAnalysis(); n != 0 {
		t.Errorf("CountAnalysis after clear = %d", n)
	}
}

func TestOpenOnDisk(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s.SetAnalysisTTL(time.Hour)
	if err := s.SaveSettings(Settings{Difficulty: "easy", HashMB: 1, DefaultDepth: 1}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	st, err := s.LoadSettings()
	if err != nil {
		t.Fatal(err)
	}
	if st.Difficulty != "easy" {
		t.Errorf("Difficulty after reopen = %q, want easy", st.Difficulty)
	}
}

func TestDataDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("APPDATA", os.Getenv("XDG_DATA_HOME"))
	dir, err := DatabaseDir()
	if err != nil {
		t.Fatalf("DatabaseDir: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("database dir not created: %v", err)
	}
}
