package httpapi

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/halfmove/chessduel/internal/game"
	"github.com/halfmove/chessduel/internal/msgcat"
	"github.com/halfmove/chessduel/internal/render"
	"github.com/halfmove/chessduel/internal/rules"
	"github.com/halfmove/chessduel/pkg/gamedto"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	svc, err := game.NewService(rules.NewEngine(), game.NewMemoryRepository())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	catalog, err := msgcat.New("")
	if err != nil {
		t.Fatalf("msgcat.New: %v", err)
	}
	srv, err := NewServer(svc, render.NewSVGBoardRenderer(), catalog, zap.NewNop())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv
}

func doRequest(t *testing.T, srv *Server, method, uri, user string, body any) *fasthttp.RequestCtx {
	t.Helper()
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	if user != "" {
		req.Header.Set("X-User-Id", user)
	}
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		req.SetBody(payload)
	}
	var ctx fasthttp.RequestCtx
	ctx.Init(&req, nil, nil)
	srv.Handler()(&ctx)
	return &ctx
}

func decodeGame(t *testing.T, ctx *fasthttp.RequestCtx) gamedto.GameResponse {
	t.Helper()
	var resp gamedto.GameResponse
	if err := json.Unmarshal(ctx.Response.Body(), &resp); err != nil {
		t.Fatalf("decode response: %v\n%s", err, ctx.Response.Body())
	}
	return resp
}

func decodeError(t *testing.T, ctx *fasthttp.RequestCtx) gamedto.ErrorResponse {
	t.Helper()
	var resp gamedto.ErrorResponse
	if err := json.Unmarshal(ctx.Response.Body(), &resp); err != nil {
		t.Fatalf("decode error response: %v\n%s", err, ctx.Response.Body())
	}
	return resp
}

// createAndJoin sets up a started game between alice (white) and bob (black).
func createAndJoin(t *testing.T, srv *Server) string {
	t.Helper()
	ctx := doRequest(t, srv, fasthttp.MethodPost, "/chess/game", "alice",
		gamedto.CreateGameRequest{PreferredColor: "white"})
	if ctx.Response.StatusCode() != fasthttp.StatusCreated {
		t.Fatalf("create status = %d: %s", ctx.Response.StatusCode(), ctx.Response.Body())
	}
	id := decodeGame(t, ctx).UUID

	ctx = doRequest(t, srv, fasthttp.MethodPut, "/chess/game/join", "bob",
		gamedto.JoinGameRequest{UUID: id, PreferredColor: "black"})
	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("join status = %d: %s", ctx.Response.StatusCode(), ctx.Response.Body())
	}
	return id
}

func TestMissingIdentity(t *testing.T) {
	srv := newTestServer(t)
	ctx := doRequest(t, srv, fasthttp.MethodPost, "/chess/game", "",
		gamedto.CreateGameRequest{PreferredColor: "white"})
	if ctx.Response.StatusCode() != fasthttp.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", ctx.Response.StatusCode())
	}
	if detail := decodeError(t, ctx).Detail; detail != "Missing X-User-Id header" {
		t.Fatalf("detail = %q", detail)
	}
}

func TestCreateGame(t *testing.T) {
	srv := newTestServer(t)
	ctx := doRequest(t, srv, fasthttp.MethodPost, "/chess/game", "alice",
		gamedto.CreateGameRequest{PreferredColor: "white"})
	if ctx.Response.StatusCode() != fasthttp.StatusCreated {
		t.Fatalf("status = %d: %s", ctx.Response.StatusCode(), ctx.Response.Body())
	}
	resp := decodeGame(t, ctx)
	if resp.UUID == "" {
		t.Fatal("missing uuid")
	}
	if resp.Status != "awaiting_opponent" || resp.WhitePlayer != "alice" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestCreateGameMalformedBody(t *testing.T) {
	srv := newTestServer(t)
	var req fasthttp.Request
	req.Header.SetMethod(fasthttp.MethodPost)
	req.SetRequestURI("/chess/game")
	req.Header.Set("X-User-Id", "alice")
	req.SetBodyString("{not json")
	var ctx fasthttp.RequestCtx
	ctx.Init(&req, nil, nil)
	srv.Handler()(&ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", ctx.Response.StatusCode())
	}
	if detail := decodeError(t, &ctx).Detail; detail != "Malformed request body" {
		t.Fatalf("detail = %q", detail)
	}
}

func TestRetrieveGame(t *testing.T) {
	srv := newTestServer(t)
	id := createAndJoin(t, srv)

	ctx := doRequest(t, srv, fasthttp.MethodGet, "/chess/game?uuid="+id, "alice", nil)
	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("status = %d: %s", ctx.Response.StatusCode(), ctx.Response.Body())
	}
	resp := decodeGame(t, ctx)
	if resp.Status != "in_progress" || resp.Turn != "white" || resp.BlackPlayer != "bob" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestRetrieveUnknownGame(t *testing.T) {
	srv := newTestServer(t)
	ctx := doRequest(t, srv, fasthttp.MethodGet, "/chess/game?uuid=nope", "alice", nil)
	if ctx.Response.StatusCode() != fasthttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", ctx.Response.StatusCode())
	}
	if detail := decodeError(t, ctx).Detail; detail != "Game not found" {
		t.Fatalf("detail = %q", detail)
	}
}

func TestMoveRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	id := createAndJoin(t, srv)

	ctx := doRequest(t, srv, fasthttp.MethodPut, "/chess/game/move", "alice",
		gamedto.MoveRequest{UUID: id, FromSquare: "e2", ToSquare: "e4"})
	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("status = %d: %s", ctx.Response.StatusCode(), ctx.Response.Body())
	}
	resp := decodeGame(t, ctx)
	if len(resp.Moves) != 1 || resp.Moves[0].From != "e2" || resp.Moves[0].To != "e4" {
		t.Fatalf("unexpected history: %+v", resp.Moves)
	}
	if resp.Turn != "black" {
		t.Fatalf("turn = %q, want black", resp.Turn)
	}
}

func TestMoveErrors(t *testing.T) {
	srv := newTestServer(t)
	id := createAndJoin(t, srv)

	// Moving out of turn answers under "detail".
	ctx := doRequest(t, srv, fasthttp.MethodPut, "/chess/game/move", "bob",
		gamedto.MoveRequest{UUID: id, FromSquare: "e7", ToSquare: "e5"})
	if ctx.Response.StatusCode() != fasthttp.StatusForbidden {
		t.Fatalf("status = %d, want 403", ctx.Response.StatusCode())
	}
	resp := decodeError(t, ctx)
	if resp.Detail != "You can't move a piece at that square" || resp.Message != "" {
		t.Fatalf("unexpected body: %+v", resp)
	}

	// An illegal move answers under "message".
	ctx = doRequest(t, srv, fasthttp.MethodPut, "/chess/game/move", "alice",
		gamedto.MoveRequest{UUID: id, FromSquare: "e2", ToSquare: "e6"})
	if ctx.Response.StatusCode() != fasthttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", ctx.Response.StatusCode())
	}
	resp = decodeError(t, ctx)
	if resp.Message != "e2e6 is not a valid move." || resp.Detail != "" {
		t.Fatalf("unexpected body: %+v", resp)
	}
}

func TestJoinConflicts(t *testing.T) {
	srv := newTestServer(t)
	id := createAndJoin(t, srv)

	ctx := doRequest(t, srv, fasthttp.MethodPut, "/chess/game/join", "carol",
		gamedto.JoinGameRequest{UUID: id, PreferredColor: "random"})
	if ctx.Response.StatusCode() != fasthttp.StatusConflict {
		t.Fatalf("status = %d, want 409", ctx.Response.StatusCode())
	}
	if detail := decodeError(t, ctx).Detail; detail != "This game already has two players" {
		t.Fatalf("detail = %q", detail)
	}
}

func TestResignEndpoint(t *testing.T) {
	srv := newTestServer(t)
	id := createAndJoin(t, srv)

	ctx := doRequest(t, srv, fasthttp.MethodPost, "/chess/game/resign", "bob",
		gamedto.GameActionRequest{UUID: id})
	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("status = %d: %s", ctx.Response.StatusCode(), ctx.Response.Body())
	}
	resp := decodeGame(t, ctx)
	if resp.Status != "finished" || resp.Result == nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Result.Winner != "white" || resp.Result.Termination != "resignation" {
		t.Fatalf("unexpected result: %+v", resp.Result)
	}
	if resp.Turn != "" {
		t.Fatalf("finished game still reports a turn: %q", resp.Turn)
	}
}

func TestDrawEndpoint(t *testing.T) {
	srv := newTestServer(t)
	id := createAndJoin(t, srv)

	ctx := doRequest(t, srv, fasthttp.MethodPost, "/chess/game/draw", "alice",
		gamedto.GameActionRequest{UUID: id})
	if decodeGame(t, ctx).Status != "in_progress" {
		t.Fatal("single draw offer should not finish the game")
	}
	ctx = doRequest(t, srv, fasthttp.MethodPost, "/chess/game/draw", "bob",
		gamedto.GameActionRequest{UUID: id})
	resp := decodeGame(t, ctx)
	if resp.Status != "finished" || resp.Result == nil || resp.Result.Winner != "draw" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestBoardEndpoint(t *testing.T) {
	srv := newTestServer(t)
	id := createAndJoin(t, srv)

	ctx := doRequest(t, srv, fasthttp.MethodGet, "/chess/game/board?uuid="+id, "alice", nil)
	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("status = %d: %s", ctx.Response.StatusCode(), ctx.Response.Body())
	}
	if ct := string(ctx.Response.Header.ContentType()); ct != "image/png" {
		t.Fatalf("content type = %q", ct)
	}
	if !bytes.HasPrefix(ctx.Response.Body(), []byte("\x89PNG\r\n\x1a\n")) {
		t.Fatal("body is not a PNG")
	}
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t)
	ctx := doRequest(t, srv, fasthttp.MethodGet, "/chess/what", "alice", nil)
	if ctx.Response.StatusCode() != fasthttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", ctx.Response.StatusCode())
	}
}
