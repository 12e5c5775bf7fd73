package domain

import "testing"

func TestSideToMove(t *testing.T) {
	s := &Session{}
	if s.SideToMove() != White {
		t.Fatal("white moves first")
	}
	s.Moves = append(s.Moves, Move{From: "e2", To: "e4", Side: White})
	if s.SideToMove() != Black {
		t.Fatal("black moves on odd plies")
	}
	s.Moves = append(s.Moves, Move{From: "e7", To: "e5", Side: Black})
	if s.SideToMove() != White {
		t.Fatal("white moves on even plies")
	}
}

func TestColorOf(t *testing.T) {
	s := &Session{WhitePlayer: "alice"}
	if c, ok := s.ColorOf("alice"); !ok || c != White {
		t.Fatalf("ColorOf(alice) = %s, %v", c, ok)
	}
	if _, ok := s.ColorOf("bob"); ok {
		t.Fatal("bob is not bound")
	}
	// An empty identity never matches an open slot.
	if _, ok := s.ColorOf(""); ok {
		t.Fatal("empty identity matched")
	}
}

func TestOpenColor(t *testing.T) {
	s := &Session{BlackPlayer: "alice"}
	open, ok := s.OpenColor()
	if !ok || open != White {
		t.Fatalf("OpenColor = %s, %v", open, ok)
	}
	s.WhitePlayer = "bob"
	if _, ok := s.OpenColor(); ok {
		t.Fatal("full session reported an open slot")
	}
}

func TestOfferDraw(t *testing.T) {
	s := &Session{}
	if s.OfferDraw(White) {
		t.Fatal("one offer is not an agreement")
	}
	if s.OfferDraw(White) {
		t.Fatal("repeat offer from the same side is not an agreement")
	}
	if !s.OfferDraw(Black) {
		t.Fatal("both sides offered, expected agreement")
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := &Session{
		ID:     "g1",
		Moves:  []Move{{From: "e2", To: "e4", Side: White}},
		Result: &Result{Winner: WinnerWhite, Termination: TerminationResignation},
	}
	cp := s.Clone()
	cp.Moves[0].From = "a1"
	cp.Result.Winner = WinnerBlack

	if s.Moves[0].From != "e2" {
		t.Fatal("move history aliased")
	}
	if s.Result.Winner != WinnerWhite {
		t.Fatal("result aliased")
	}
}
