package archive

import (
	"strings"
	"testing"
	"time"

	"github.com/halfmove/chessduel/internal/domain"
)

func foolsMateSession() *domain.Session {
	return &domain.Session{
		ID:          "g1",
		WhitePlayer: "alice",
		BlackPlayer: "bob",
		Status:      domain.StatusFinished,
		Result:      &domain.Result{Winner: domain.WinnerBlack, Termination: domain.TerminationCheckmate},
		UpdatedAt:   time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC),
		Moves: []domain.Move{
			{From: "f2", To: "f3", SAN: "f3", Side: domain.White},
			{From: "e7", To: "e5", SAN: "e5", Side: domain.Black},
			{From: "g2", To: "g4", SAN: "g4", Side: domain.White},
			{From: "d8", To: "h4", SAN: "Qh4#", Side: domain.Black},
		},
	}
}

func TestBuildPGN(t *testing.T) {
	pgn := BuildPGN(foolsMateSession())

	for _, want := range []string{
		"[White \"alice\"]",
		"[Black \"bob\"]",
		"[Date \"2026.08.26\"]",
		"[Termination \"checkmate\"]",
		"[Result \"0-1\"]",
		"1. f3 e5 2. g4 Qh4#",
	} {
		if !strings.Contains(pgn, want) {
			t.Fatalf("PGN missing %q:\n%s", want, pgn)
		}
	}
	if !strings.HasSuffix(pgn, "0-1") {
		t.Fatalf("PGN does not end with the result:\n%s", pgn)
	}
}

func TestBuildPGNFallsBackToUCI(t *testing.T) {
	sess := foolsMateSession()
	sess.Moves[0].SAN = ""
	pgn := BuildPGN(sess)
	if !strings.Contains(pgn, "1. f2f3 e5") {
		t.Fatalf("expected coordinate fallback:\n%s", pgn)
	}
}

func TestBuildPGNUnfinished(t *testing.T) {
	sess := foolsMateSession()
	sess.Result = nil
	pgn := BuildPGN(sess)
	if !strings.Contains(pgn, "[Result \"*\"]") || !strings.HasSuffix(pgn, "*") {
		t.Fatalf("unfinished game should use '*':\n%s", pgn)
	}
}

func TestSanitizePGN(t *testing.T) {
	if got := sanitizePGN(` al"ice\ `); got != "al'ice" {
		t.Fatalf("sanitizePGN = %q", got)
	}
}
