package game

import (
	"github.com/halfmove/chessduel/internal/domain"
	"github.com/halfmove/chessduel/internal/rules"
)

// Classify maps a rules-engine terminal classification onto a stored result.
// Checkmate credits the side that delivered mate; every other terminal kind is
// a draw. Non-terminal positions yield nil. Pure and deterministic.
func Classify(t rules.Terminal) *domain.Result {
	switch t.Kind {
	case rules.TerminalCheckmate:
		winner := domain.WinnerWhite
		if t.Winner == domain.Black {
			winner = domain.WinnerBlack
		}
		return &domain.Result{Winner: winner, Termination: domain.TerminationCheckmate}
	case rules.TerminalStalemate:
		return &domain.Result{Winner: domain.WinnerDraw, Termination: domain.TerminationStalemate}
	case rules.TerminalInsufficientMaterial:
		return &domain.Result{Winner: domain.WinnerDraw, Termination: domain.TerminationInsufficientMaterial}
	case rules.TerminalFivefoldRepetition:
		return &domain.Result{Winner: domain.WinnerDraw, Termination: domain.TerminationFivefoldRepetition}
	case rules.TerminalSeventyFiveMoveRule:
		return &domain.Result{Winner: domain.WinnerDraw, Termination: domain.TerminationSeventyFiveMoveRule}
	}
	return nil
}
