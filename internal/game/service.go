package game

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/halfmove/chessduel/internal/domain"
	"github.com/halfmove/chessduel/internal/rules"
)

// saveAttempts bounds the optimistic-save retry loop. A retry reloads the
// session and re-validates, so a caller racing another mutation surfaces the
// ordinary domain error for the state it lost to.
const saveAttempts = 3

// Service owns session lifecycle: creation, joining, moves, resignation and
// draw agreement. All rule legality is delegated to the rules engine.
type Service struct {
	engine   rules.Engine
	repo     Repository
	archiver ResultArchiver
	flip     func() domain.Color
	logger   *zap.Logger
}

type Option func(*Service)

// WithArchiver wires long-term storage for finished games. Archive failures
// are logged, never surfaced to the mover.
func WithArchiver(a ResultArchiver) Option {
	return func(s *Service) { s.archiver = a }
}

// WithCoinFlip overrides the random color assignment, for deterministic tests.
func WithCoinFlip(flip func() domain.Color) Option {
	return func(s *Service) { s.flip = flip }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func NewService(engine rules.Engine, repo Repository, opts ...Option) (*Service, error) {
	if engine == nil {
		return nil, fmt.Errorf("rules engine is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("session repository is required")
	}
	s := &Service{
		engine: engine,
		repo:   repo,
		flip:   cryptoFlip,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func cryptoFlip() domain.Color {
	if n, err := rand.Int(rand.Reader, big.NewInt(2)); err == nil && n.Int64() == 0 {
		return domain.Black
	}
	return domain.White
}

// Summary is the session view handed back to the transport layer.
type Summary struct {
	ID          string
	FEN         string
	WhitePlayer string
	BlackPlayer string
	SideToMove  domain.Color
	Status      domain.Status
	Result      *domain.Result
	Moves       []domain.Move
}

func summarize(s *domain.Session) *Summary {
	sum := &Summary{
		ID:          s.ID,
		FEN:         s.FEN,
		WhitePlayer: s.WhitePlayer,
		BlackPlayer: s.BlackPlayer,
		SideToMove:  s.SideToMove(),
		Status:      s.Status,
		Moves:       append([]domain.Move(nil), s.Moves...),
	}
	if s.Result != nil {
		r := *s.Result
		sum.Result = &r
	}
	return sum
}

func parsePreferredColor(raw string) (domain.Color, bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "white":
		return domain.White, false, nil
	case "black":
		return domain.Black, false, nil
	case "random":
		return "", true, nil
	}
	return "", false, errInvalidInput("preferred_color must be white, black or random")
}

// CreateSession allocates a session with the creator bound to the resolved
// color and no opponent yet.
func (s *Service) CreateSession(ctx context.Context, creator, preferredColor string) (*Summary, error) {
	creator = strings.TrimSpace(creator)
	if creator == "" {
		return nil, errInvalidInput("creator identity is required")
	}
	color, random, err := parsePreferredColor(preferredColor)
	if err != nil {
		return nil, err
	}
	if random {
		color = s.flip()
	}

	now := time.Now()
	sess := &domain.Session{
		ID:        uuid.NewString(),
		FEN:       domain.StartFEN,
		Moves:     []domain.Move{},
		Status:    domain.StatusAwaitingOpponent,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if color == domain.White {
		sess.WhitePlayer = creator
	} else {
		sess.BlackPlayer = creator
	}

	if err := s.repo.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save new session: %w", err)
	}
	s.logger.Info("game_create",
		zap.String("game_id", sess.ID),
		zap.String("creator", creator),
		zap.String("color", string(color)),
	)
	return summarize(sess), nil
}

// JoinSession binds the joiner to the open color slot and starts the game.
func (s *Service) JoinSession(ctx context.Context, id, joiner, preferredColor string) (*Summary, error) {
	joiner = strings.TrimSpace(joiner)
	if joiner == "" {
		return nil, errInvalidInput("joiner identity is required")
	}
	want, random, err := parsePreferredColor(preferredColor)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < saveAttempts; attempt++ {
		sess, err := s.loadSession(ctx, id)
		if err != nil {
			return nil, err
		}
		if _, bound := sess.ColorOf(joiner); bound || sess.Full() {
			return nil, errAlreadyFull()
		}
		open, _ := sess.OpenColor()
		if !random && want != open {
			return nil, errColorUnavailable(string(want))
		}
		if open == domain.White {
			sess.WhitePlayer = joiner
		} else {
			sess.BlackPlayer = joiner
		}
		sess.Status = domain.StatusInProgress
		sess.UpdatedAt = time.Now()

		if err := s.repo.Save(ctx, sess); err != nil {
			if errors.Is(err, ErrVersionConflict) {
				continue
			}
			return nil, fmt.Errorf("save joined session: %w", err)
		}
		s.logger.Info("game_join",
			zap.String("game_id", sess.ID),
			zap.String("joiner", joiner),
			zap.String("color", string(open)),
		)
		return summarize(sess), nil
	}
	return nil, errConflict(id)
}

// ApplyMove authorizes the mover against the side to move, delegates legality
// to the rules engine and advances or finishes the session.
func (s *Service) ApplyMove(ctx context.Context, id, mover, from, to string) (*Summary, error) {
	mover = strings.TrimSpace(mover)
	from = strings.ToLower(strings.TrimSpace(from))
	to = strings.ToLower(strings.TrimSpace(to))
	if !rules.ParseSquare(from) || !rules.ParseSquare(to) {
		return nil, errIllegalMove(from, to)
	}

	for attempt := 0; attempt < saveAttempts; attempt++ {
		sess, err := s.loadSession(ctx, id)
		if err != nil {
			return nil, err
		}
		if sess.Status != domain.StatusInProgress {
			return nil, errNotInProgress()
		}
		side := sess.SideToMove()
		color, bound := sess.ColorOf(mover)
		if !bound || color != side {
			return nil, errWrongPlayer()
		}
		// Moving from an empty square or an opponent-held square is the same
		// authorization failure as moving out of turn.
		if occupant, occupied := s.engine.OccupantAt(sess.FEN, from); !occupied || occupant != side {
			return nil, errWrongPlayer()
		}

		applied, err := s.engine.ValidateAndApply(sess.FEN, from, to)
		if err != nil {
			if errors.Is(err, rules.ErrRejected) {
				return nil, errIllegalMove(from, to)
			}
			return nil, fmt.Errorf("rules engine: %w", err)
		}

		sess.Moves = append(sess.Moves, domain.Move{
			From:     from,
			To:       to,
			SAN:      applied.SAN,
			Side:     side,
			PlayedAt: time.Now(),
		})
		sess.FEN = applied.FEN
		sess.UpdatedAt = time.Now()

		terminal, err := s.engine.ClassifyTerminal(applied.FEN)
		if err != nil {
			return nil, fmt.Errorf("classify position: %w", err)
		}
		if result := Classify(terminal); result != nil {
			sess.Status = domain.StatusFinished
			sess.Result = result
		}

		if err := s.repo.Save(ctx, sess); err != nil {
			if errors.Is(err, ErrVersionConflict) {
				continue
			}
			return nil, fmt.Errorf("save session after move: %w", err)
		}
		s.logger.Info("game_move",
			zap.String("game_id", sess.ID),
			zap.String("mover", mover),
			zap.String("uci", from+to),
			zap.Int("ply", len(sess.Moves)),
			zap.String("status", string(sess.Status)),
		)
		s.archiveIfFinished(ctx, sess)
		return summarize(sess), nil
	}
	return nil, errConflict(id)
}

// Resign finishes the game in favor of the opponent.
func (s *Service) Resign(ctx context.Context, id, player string) (*Summary, error) {
	return s.finishWith(ctx, id, player, "game_resign", func(sess *domain.Session, color domain.Color) bool {
		winner := domain.WinnerWhite
		if color == domain.White {
			winner = domain.WinnerBlack
		}
		sess.Result = &domain.Result{Winner: winner, Termination: domain.TerminationResignation}
		return true
	})
}

// OfferDraw records a draw offer; when both players have offered, the game
// finishes as a draw by agreement.
func (s *Service) OfferDraw(ctx context.Context, id, player string) (*Summary, error) {
	return s.finishWith(ctx, id, player, "game_draw_offer", func(sess *domain.Session, color domain.Color) bool {
		if !sess.OfferDraw(color) {
			return false
		}
		sess.Result = &domain.Result{Winner: domain.WinnerDraw, Termination: domain.TerminationDrawAgreement}
		return true
	})
}

// finishWith runs the shared authorize/mutate/save path for resignation and
// draw offers. mutate reports whether the session is now finished.
func (s *Service) finishWith(ctx context.Context, id, player, event string, mutate func(*domain.Session, domain.Color) bool) (*Summary, error) {
	player = strings.TrimSpace(player)
	for attempt := 0; attempt < saveAttempts; attempt++ {
		sess, err := s.loadSession(ctx, id)
		if err != nil {
			return nil, err
		}
		if sess.Status != domain.StatusInProgress {
			return nil, errNotInProgress()
		}
		color, bound := sess.ColorOf(player)
		if !bound {
			return nil, errWrongPlayer()
		}
		if mutate(sess, color) {
			sess.Status = domain.StatusFinished
		}
		sess.UpdatedAt = time.Now()

		if err := s.repo.Save(ctx, sess); err != nil {
			if errors.Is(err, ErrVersionConflict) {
				continue
			}
			return nil, fmt.Errorf("save session: %w", err)
		}
		s.logger.Info(event,
			zap.String("game_id", sess.ID),
			zap.String("player", player),
			zap.String("status", string(sess.Status)),
		)
		s.archiveIfFinished(ctx, sess)
		return summarize(sess), nil
	}
	return nil, errConflict(id)
}

// GetSession returns a read-only summary.
func (s *Service) GetSession(ctx context.Context, id string) (*Summary, error) {
	sess, err := s.loadSession(ctx, id)
	if err != nil {
		return nil, err
	}
	return summarize(sess), nil
}

func (s *Service) loadSession(ctx context.Context, id string) (*domain.Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errNotFound(id)
	}
	sess, err := s.repo.Load(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, errNotFound(id)
		}
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	return sess, nil
}

func (s *Service) archiveIfFinished(ctx context.Context, sess *domain.Session) {
	if s.archiver == nil || sess.Status != domain.StatusFinished {
		return
	}
	if err := s.archiver.ArchiveResult(ctx, sess); err != nil {
		s.logger.Error("game_result_archive_error",
			zap.String("game_id", sess.ID),
			zap.Error(err),
		)
		return
	}
	s.logger.Info("game_result_archive",
		zap.String("game_id", sess.ID),
		zap.String("winner", string(sess.Result.Winner)),
		zap.String("termination", string(sess.Result.Termination)),
	)
}
