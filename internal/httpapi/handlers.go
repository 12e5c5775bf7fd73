package httpapi

import (
	"encoding/json"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/halfmove/chessduel/internal/domain"
	"github.com/halfmove/chessduel/internal/game"
	"github.com/halfmove/chessduel/internal/render"
	"github.com/halfmove/chessduel/pkg/gamedto"
)

func (s *Server) handleCreate(ctx *fasthttp.RequestCtx) {
	caller, ok := s.identity(ctx)
	if !ok {
		return
	}
	var req gamedto.CreateGameRequest
	if !s.decodeBody(ctx, &req) {
		return
	}
	summary, err := s.svc.CreateSession(ctx, caller, req.PreferredColor)
	if err != nil {
		s.writeError(ctx, err, nil)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusCreated, toGameResponse(summary))
}

func (s *Server) handleRetrieve(ctx *fasthttp.RequestCtx) {
	if _, ok := s.identity(ctx); !ok {
		return
	}
	id := string(ctx.QueryArgs().Peek("uuid"))
	summary, err := s.svc.GetSession(ctx, id)
	if err != nil {
		s.writeError(ctx, err, nil)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, toGameResponse(summary))
}

func (s *Server) handleJoin(ctx *fasthttp.RequestCtx) {
	caller, ok := s.identity(ctx)
	if !ok {
		return
	}
	var req gamedto.JoinGameRequest
	if !s.decodeBody(ctx, &req) {
		return
	}
	summary, err := s.svc.JoinSession(ctx, req.UUID, caller, req.PreferredColor)
	if err != nil {
		s.writeError(ctx, err, map[string]any{"Color": req.PreferredColor})
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, toGameResponse(summary))
}

func (s *Server) handleMove(ctx *fasthttp.RequestCtx) {
	caller, ok := s.identity(ctx)
	if !ok {
		return
	}
	var req gamedto.MoveRequest
	if !s.decodeBody(ctx, &req) {
		return
	}
	summary, err := s.svc.ApplyMove(ctx, req.UUID, caller, req.FromSquare, req.ToSquare)
	if err != nil {
		s.writeError(ctx, err, map[string]any{"From": req.FromSquare, "To": req.ToSquare})
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, toGameResponse(summary))
}

func (s *Server) handleResign(ctx *fasthttp.RequestCtx) {
	caller, ok := s.identity(ctx)
	if !ok {
		return
	}
	var req gamedto.GameActionRequest
	if !s.decodeBody(ctx, &req) {
		return
	}
	summary, err := s.svc.Resign(ctx, req.UUID, caller)
	if err != nil {
		s.writeError(ctx, err, nil)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, toGameResponse(summary))
}

func (s *Server) handleDraw(ctx *fasthttp.RequestCtx) {
	caller, ok := s.identity(ctx)
	if !ok {
		return
	}
	var req gamedto.GameActionRequest
	if !s.decodeBody(ctx, &req) {
		return
	}
	summary, err := s.svc.OfferDraw(ctx, req.UUID, caller)
	if err != nil {
		s.writeError(ctx, err, nil)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, toGameResponse(summary))
}

func (s *Server) handleBoard(ctx *fasthttp.RequestCtx) {
	if _, ok := s.identity(ctx); !ok {
		return
	}
	if s.renderer == nil {
		ctx.SetStatusCode(fasthttp.StatusNotImplemented)
		return
	}
	id := string(ctx.QueryArgs().Peek("uuid"))
	summary, err := s.svc.GetSession(ctx, id)
	if err != nil {
		s.writeError(ctx, err, nil)
		return
	}
	var opts render.Options
	if n := len(summary.Moves); n > 0 {
		last := summary.Moves[n-1]
		opts.Highlight = &render.Highlight{From: last.From, To: last.To}
	}
	png, err := s.renderer.RenderPNG(ctx, summary.FEN, opts)
	if err != nil {
		s.logger.Error("board_render_error", zap.String("game_id", summary.ID), zap.Error(err))
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("image/png")
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBody(png)
}

func (s *Server) identity(ctx *fasthttp.RequestCtx) (string, bool) {
	id := string(ctx.Request.Header.Peek(identityHeader))
	if id == "" {
		s.writeErrorText(ctx, fasthttp.StatusUnauthorized, "", s.renderText("error.missing_identity", nil, "missing identity"))
		return "", false
	}
	return id, true
}

func (s *Server) decodeBody(ctx *fasthttp.RequestCtx, v any) bool {
	if err := json.Unmarshal(ctx.PostBody(), v); err != nil {
		s.writeErrorText(ctx, fasthttp.StatusBadRequest, "", s.renderText("error.bad_request", nil, "malformed request body"))
		return false
	}
	return true
}

func (s *Server) writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(payload)
}

// writeErrorText keeps the original API's field split: illegal moves answer
// under "message", everything else under "detail".
func (s *Server) writeErrorText(ctx *fasthttp.RequestCtx, status int, kind game.Kind, text string) {
	resp := gamedto.ErrorResponse{}
	if kind == game.KindIllegalMove {
		resp.Message = text
	} else {
		resp.Detail = text
	}
	s.writeJSON(ctx, status, resp)
}

func toGameResponse(sum *game.Summary) gamedto.GameResponse {
	resp := gamedto.GameResponse{
		UUID:        sum.ID,
		Board:       sum.FEN,
		WhitePlayer: sum.WhitePlayer,
		BlackPlayer: sum.BlackPlayer,
		Status:      string(sum.Status),
		Moves:       make([]gamedto.MoveResponse, 0, len(sum.Moves)),
	}
	if sum.Status != domain.StatusFinished {
		resp.Turn = string(sum.SideToMove)
	}
	if sum.Result != nil {
		resp.Result = &gamedto.ResultResponse{
			Winner:      string(sum.Result.Winner),
			Termination: string(sum.Result.Termination),
		}
	}
	for _, m := range sum.Moves {
		resp.Moves = append(resp.Moves, gamedto.MoveResponse{
			From:     m.From,
			To:       m.To,
			SAN:      m.SAN,
			Side:     string(m.Side),
			PlayedAt: m.PlayedAt,
		})
	}
	return resp
}
