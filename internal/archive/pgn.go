package archive

import (
	"fmt"
	"strings"
	"time"

	"github.com/halfmove/chessduel/internal/domain"
)

// BuildPGN renders a finished session as PGN text from its stored SAN moves.
func BuildPGN(sess *domain.Session) string {
	if sess == nil {
		return ""
	}
	result := pgnResult(sess)

	var b strings.Builder
	date := sess.UpdatedAt
	if date.IsZero() {
		date = time.Now()
	}
	b.WriteString("[Event \"chessduel\"]\n")
	b.WriteString(fmt.Sprintf("[Date \"%04d.%02d.%02d\"]\n", date.Year(), int(date.Month()), date.Day()))
	b.WriteString(fmt.Sprintf("[White \"%s\"]\n", sanitizePGN(sess.WhitePlayer)))
	b.WriteString(fmt.Sprintf("[Black \"%s\"]\n", sanitizePGN(sess.BlackPlayer)))
	if sess.Result != nil {
		b.WriteString(fmt.Sprintf("[Termination \"%s\"]\n", string(sess.Result.Termination)))
	}
	b.WriteString(fmt.Sprintf("[Result \"%s\"]\n\n", result))

	for i := 0; i < len(sess.Moves); i += 2 {
		b.WriteString(fmt.Sprintf("%d. %s", i/2+1, moveText(sess.Moves[i])))
		if i+1 < len(sess.Moves) {
			b.WriteString(" ")
			b.WriteString(moveText(sess.Moves[i+1]))
		}
		b.WriteString(" ")
	}
	b.WriteString(result)
	return b.String()
}

func moveText(m domain.Move) string {
	if san := strings.TrimSpace(m.SAN); san != "" {
		return san
	}
	return m.UCI()
}

func pgnResult(sess *domain.Session) string {
	if sess.Result == nil {
		return "*"
	}
	switch sess.Result.Winner {
	case domain.WinnerWhite:
		return "1-0"
	case domain.WinnerBlack:
		return "0-1"
	case domain.WinnerDraw:
		return "1/2-1/2"
	}
	return "*"
}

func sanitizePGN(s string) string {
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.TrimSpace(s)
}
