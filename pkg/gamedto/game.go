// Package gamedto defines the JSON shapes exchanged with API clients.
package gamedto

import "time"

type CreateGameRequest struct {
	PreferredColor string `json:"preferred_color"`
}

type JoinGameRequest struct {
	UUID           string `json:"uuid"`
	PreferredColor string `json:"preferred_color"`
}

type MoveRequest struct {
	UUID       string `json:"uuid"`
	FromSquare string `json:"from_square"`
	ToSquare   string `json:"to_square"`
}

// GameActionRequest covers resign and draw-offer calls.
type GameActionRequest struct {
	UUID string `json:"uuid"`
}

type MoveResponse struct {
	From     string    `json:"from"`
	To       string    `json:"to"`
	SAN      string    `json:"san,omitempty"`
	Side     string    `json:"side"`
	PlayedAt time.Time `json:"played_at"`
}

type ResultResponse struct {
	Winner      string `json:"winner"`
	Termination string `json:"termination"`
}

type GameResponse struct {
	UUID        string          `json:"uuid"`
	Board       string          `json:"board"`
	WhitePlayer string          `json:"white_player,omitempty"`
	BlackPlayer string          `json:"black_player,omitempty"`
	Turn        string          `json:"turn,omitempty"`
	Status      string          `json:"status"`
	Result      *ResultResponse `json:"result,omitempty"`
	Moves       []MoveResponse  `json:"moves"`
}

// ErrorResponse mirrors the API's historical field split: move legality
// failures arrive under "message", everything else under "detail".
type ErrorResponse struct {
	Detail  string `json:"detail,omitempty"`
	Message string `json:"message,omitempty"`
}
