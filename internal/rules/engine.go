// Package rules wraps the chess rule library behind a small capability
// interface so the game service can be exercised against a fake engine.
package rules

import (
	"errors"
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"

	"github.com/halfmove/chessduel/internal/domain"
)

// ErrRejected is returned when a proposed move is not legal in the given
// position. The caller owns the user-visible phrasing.
var ErrRejected = errors.New("move rejected")

// Applied is the outcome of a successfully validated move.
type Applied struct {
	FEN string // resulting position
	SAN string // the applied move in algebraic notation, for archival
}

// TerminalKind classifies a position that ends the game.
type TerminalKind string

const (
	TerminalNone                 TerminalKind = "none"
	TerminalCheckmate            TerminalKind = "checkmate"
	TerminalStalemate            TerminalKind = "stalemate"
	TerminalInsufficientMaterial TerminalKind = "insufficient_material"
	TerminalFivefoldRepetition   TerminalKind = "fivefold_repetition"
	TerminalSeventyFiveMoveRule  TerminalKind = "seventy_five_move_rule"
)

// Terminal is the classification of a position. Winner is set only for
// checkmate and names the side that delivered mate.
type Terminal struct {
	Kind   TerminalKind
	Winner domain.Color
}

// Engine validates moves against a position and classifies terminal positions.
// Positions are exchanged as FEN strings; the side to move is encoded in the
// FEN. Implementations must be pure: no hidden state, no I/O.
type Engine interface {
	ValidateAndApply(fen, from, to string) (Applied, error)
	ClassifyTerminal(fen string) (Terminal, error)
	OccupantAt(fen, square string) (domain.Color, bool)
}

type libraryEngine struct{}

// NewEngine returns the production rules engine backed by corentings/chess.
func NewEngine() Engine { return libraryEngine{} }

func gameFromFEN(fen string) (*nchess.Game, error) {
	withFEN, err := nchess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse fen: %w", err)
	}
	return nchess.NewGame(withFEN), nil
}

func (libraryEngine) ValidateAndApply(fen, from, to string) (Applied, error) {
	game, err := gameFromFEN(fen)
	if err != nil {
		return Applied{}, err
	}
	pos := game.Position()
	uci := strings.ToLower(strings.TrimSpace(from + to))
	move, err := (nchess.UCINotation{}).Decode(pos, uci)
	if err != nil {
		return Applied{}, ErrRejected
	}
	if err := game.Move(move, nil); err != nil {
		return Applied{}, ErrRejected
	}
	return Applied{
		FEN: game.FEN(),
		SAN: (nchess.AlgebraicNotation{}).Encode(pos, move),
	}, nil
}

func (libraryEngine) ClassifyTerminal(fen string) (Terminal, error) {
	game, err := gameFromFEN(fen)
	if err != nil {
		return Terminal{}, err
	}
	switch game.Method() {
	case nchess.Checkmate:
		winner := domain.Black
		if game.Outcome() == nchess.WhiteWon {
			winner = domain.White
		}
		return Terminal{Kind: TerminalCheckmate, Winner: winner}, nil
	case nchess.Stalemate:
		return Terminal{Kind: TerminalStalemate}, nil
	case nchess.InsufficientMaterial:
		return Terminal{Kind: TerminalInsufficientMaterial}, nil
	case nchess.FivefoldRepetition:
		return Terminal{Kind: TerminalFivefoldRepetition}, nil
	case nchess.SeventyFiveMoveRule:
		return Terminal{Kind: TerminalSeventyFiveMoveRule}, nil
	}
	return Terminal{Kind: TerminalNone}, nil
}

func (libraryEngine) OccupantAt(fen, square string) (domain.Color, bool) {
	game, err := gameFromFEN(fen)
	if err != nil {
		return "", false
	}
	sq, ok := parseSquare(square)
	if !ok {
		return "", false
	}
	piece := game.Position().Board().Piece(sq)
	if piece == nchess.NoPiece {
		return "", false
	}
	if piece.Color() == nchess.White {
		return domain.White, true
	}
	return domain.Black, true
}

// ParseSquare reports whether s is a two-character algebraic coordinate
// (file a-h, rank 1-8).
func ParseSquare(s string) bool {
	_, ok := parseSquare(s)
	return ok
}

func parseSquare(s string) (nchess.Square, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 2 {
		return 0, false
	}
	file := s[0]
	rank := s[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return 0, false
	}
	return nchess.NewSquare(nchess.File(file-'a'), nchess.Rank(rank-'1')), true
}
