package domain

import "time"

// Color identifies a chess side.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Opponent returns the other side.
func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

// Status represents a session lifecycle state. Transitions only move forward:
// awaiting_opponent -> in_progress -> finished.
type Status string

const (
	StatusAwaitingOpponent Status = "awaiting_opponent"
	StatusInProgress       Status = "in_progress"
	StatusFinished         Status = "finished"
)

// Winner is the stored result of a finished game.
type Winner string

const (
	WinnerWhite Winner = "white"
	WinnerBlack Winner = "black"
	WinnerDraw  Winner = "draw"
)

// Termination is the rules-based cause a game ended.
type Termination string

const (
	TerminationCheckmate            Termination = "checkmate"
	TerminationStalemate            Termination = "stalemate"
	TerminationInsufficientMaterial Termination = "insufficient_material"
	TerminationFivefoldRepetition   Termination = "fivefold_repetition"
	TerminationSeventyFiveMoveRule  Termination = "seventy_five_move_rule"
	TerminationResignation          Termination = "resignation"
	TerminationDrawAgreement        Termination = "draw_agreement"
)

// Result is set exactly once, when a session reaches StatusFinished.
type Result struct {
	Winner      Winner      `json:"winner"`
	Termination Termination `json:"termination"`
}

// Move is one applied half-move. History entries are append-only.
type Move struct {
	From     string    `json:"from"`
	To       string    `json:"to"`
	SAN      string    `json:"san,omitempty"`
	Side     Color     `json:"side"`
	PlayedAt time.Time `json:"played_at"`
}

// UCI returns the move in coordinate notation, e.g. "e2e4".
func (m Move) UCI() string { return m.From + m.To }

// StartFEN is the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Session is the persisted state of one game between up to two players.
// It is mutated only through the game service; Version backs the repository's
// optimistic concurrency check.
type Session struct {
	ID          string    `json:"id"`
	WhitePlayer string    `json:"white_player,omitempty"`
	BlackPlayer string    `json:"black_player,omitempty"`
	FEN         string    `json:"fen"`
	Moves       []Move    `json:"moves"`
	Status      Status    `json:"status"`
	Result      *Result   `json:"result,omitempty"`
	DrawOffers  [2]bool   `json:"draw_offers"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Version int64 `json:"-"`
}

// SideToMove derives the side to move from move-count parity: white moves on
// even-indexed plies.
func (s *Session) SideToMove() Color {
	if len(s.Moves)%2 == 0 {
		return White
	}
	return Black
}

// PlayerFor returns the identity bound to a color, empty if the slot is open.
func (s *Session) PlayerFor(c Color) string {
	if c == White {
		return s.WhitePlayer
	}
	return s.BlackPlayer
}

// ColorOf reports the color a player is bound to.
func (s *Session) ColorOf(player string) (Color, bool) {
	switch {
	case player != "" && player == s.WhitePlayer:
		return White, true
	case player != "" && player == s.BlackPlayer:
		return Black, true
	default:
		return "", false
	}
}

// Full reports whether both color slots are bound.
func (s *Session) Full() bool {
	return s.WhitePlayer != "" && s.BlackPlayer != ""
}

// OpenColor returns the unbound color slot of a session awaiting an opponent.
func (s *Session) OpenColor() (Color, bool) {
	switch {
	case s.WhitePlayer == "":
		return White, true
	case s.BlackPlayer == "":
		return Black, true
	default:
		return "", false
	}
}

// OfferDraw records a draw offer for a side and reports whether both sides
// have now offered.
func (s *Session) OfferDraw(c Color) bool {
	if c == White {
		s.DrawOffers[0] = true
	} else {
		s.DrawOffers[1] = true
	}
	return s.DrawOffers[0] && s.DrawOffers[1]
}

// Clone returns a deep copy so callers can mutate without aliasing the
// repository's stored state.
func (s *Session) Clone() *Session {
	cp := *s
	cp.Moves = append([]Move(nil), s.Moves...)
	if s.Result != nil {
		r := *s.Result
		cp.Result = &r
	}
	return &cp
}
