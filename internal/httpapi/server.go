// Package httpapi is the request/response surface over the game service.
// Routing, parsing and identity extraction only; all game semantics live in
// internal/game.
package httpapi

import (
	"errors"
	"fmt"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/halfmove/chessduel/internal/game"
	"github.com/halfmove/chessduel/internal/msgcat"
	"github.com/halfmove/chessduel/internal/render"
)

// identityHeader carries the authenticated caller id, injected by the
// fronting auth proxy. Account management is not this service's concern.
const identityHeader = "X-User-Id"

type Server struct {
	svc      *game.Service
	renderer render.BoardRenderer
	catalog  *msgcat.Catalog
	logger   *zap.Logger
}

func NewServer(svc *game.Service, renderer render.BoardRenderer, catalog *msgcat.Catalog, logger *zap.Logger) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("game service is required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("message catalog is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{svc: svc, renderer: renderer, catalog: catalog, logger: logger}, nil
}

// Handler returns the fasthttp request handler for the API routes.
func (s *Server) Handler() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		path := string(ctx.Path())
		method := string(ctx.Method())

		switch {
		case path == "/healthz" && method == fasthttp.MethodGet:
			s.writeJSON(ctx, fasthttp.StatusOK, map[string]string{"status": "ok"})
		case path == "/chess/game" && method == fasthttp.MethodPost:
			s.handleCreate(ctx)
		case path == "/chess/game" && method == fasthttp.MethodGet:
			s.handleRetrieve(ctx)
		case path == "/chess/game/join" && method == fasthttp.MethodPut:
			s.handleJoin(ctx)
		case path == "/chess/game/move" && method == fasthttp.MethodPut:
			s.handleMove(ctx)
		case path == "/chess/game/resign" && method == fasthttp.MethodPost:
			s.handleResign(ctx)
		case path == "/chess/game/draw" && method == fasthttp.MethodPost:
			s.handleDraw(ctx)
		case path == "/chess/game/board" && method == fasthttp.MethodGet:
			s.handleBoard(ctx)
		default:
			ctx.SetStatusCode(fasthttp.StatusNotFound)
		}
	}
}

// ListenAndServe blocks serving the API on addr.
func (s *Server) ListenAndServe(addr string) error {
	srv := &fasthttp.Server{
		Handler: s.Handler(),
		Name:    "chessduel",
	}
	s.logger.Info("http_listen", zap.String("addr", addr))
	return srv.ListenAndServe(addr)
}

func statusForKind(kind game.Kind) int {
	switch kind {
	case game.KindInvalidInput, game.KindIllegalMove:
		return fasthttp.StatusBadRequest
	case game.KindNotFound:
		return fasthttp.StatusNotFound
	case game.KindWrongPlayer:
		return fasthttp.StatusForbidden
	case game.KindAlreadyFull, game.KindColorUnavailable, game.KindNotInProgress, game.KindConflict:
		return fasthttp.StatusConflict
	}
	return fasthttp.StatusInternalServerError
}

func catalogKeyForKind(kind game.Kind) string {
	switch kind {
	case game.KindInvalidInput:
		return "error.invalid_input"
	case game.KindNotFound:
		return "error.not_found"
	case game.KindAlreadyFull:
		return "error.already_full"
	case game.KindColorUnavailable:
		return "error.color_unavailable"
	case game.KindNotInProgress:
		return "error.not_in_progress"
	case game.KindWrongPlayer:
		return "error.wrong_player"
	case game.KindIllegalMove:
		return "error.illegal_move"
	case game.KindConflict:
		return "error.conflict"
	}
	return "error.internal"
}

// writeError resolves the response text through the message catalog, falling
// back to the service error's own message.
func (s *Server) writeError(ctx *fasthttp.RequestCtx, err error, data map[string]any) {
	var svcErr *game.Error
	if !errors.As(err, &svcErr) {
		s.logger.Error("request_error", zap.String("path", string(ctx.Path())), zap.Error(err))
		s.writeErrorText(ctx, fasthttp.StatusInternalServerError, game.Kind(""), s.renderText("error.internal", nil, "internal error"))
		return
	}
	text := s.renderText(catalogKeyForKind(svcErr.Kind), data, svcErr.Message)
	s.writeErrorText(ctx, statusForKind(svcErr.Kind), svcErr.Kind, text)
}

func (s *Server) renderText(key string, data map[string]any, fallback string) string {
	text, err := s.catalog.Render(key, data)
	if err != nil {
		return fallback
	}
	return text
}
