// Package render rasterizes a chess position into a PNG for API clients.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"strings"

	nchess "github.com/corentings/chess/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Highlight marks the squares of the most recent move.
type Highlight struct {
	From string
	To   string
}

type Options struct {
	Highlight *Highlight
}

type BoardRenderer interface {
	RenderPNG(ctx context.Context, fen string, opts Options) ([]byte, error)
}

const (
	squareSize   = 64
	boardSquares = 8
	boardSize    = squareSize * boardSquares
	margin       = 22
)

var (
	lightSquare   = color.RGBA{R: 0xf0, G: 0xd9, B: 0xb5, A: 0xff}
	darkSquare    = color.RGBA{R: 0xb5, G: 0x88, B: 0x63, A: 0xff}
	highlightTint = color.RGBA{R: 0x9b, G: 0xc7, B: 0x00, A: 0x69}
	frameColor    = color.RGBA{R: 0x30, G: 0x2e, B: 0x2b, A: 0xff}
	labelColor    = color.RGBA{R: 0xe8, G: 0xe6, B: 0xe1, A: 0xff}
)

type svgBoardRenderer struct{}

// NewSVGBoardRenderer renders positions with the embedded SVG piece set.
func NewSVGBoardRenderer() BoardRenderer { return &svgBoardRenderer{} }

func (r *svgBoardRenderer) RenderPNG(ctx context.Context, fen string, opts Options) ([]byte, error) {
	withFEN, err := nchess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse fen: %w", err)
	}
	board := nchess.NewGame(withFEN).Position().Board()

	total := boardSize + margin*2
	img := image.NewRGBA(image.Rect(0, 0, total, total))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(frameColor), image.Point{}, imagedraw.Src)

	highlighted := map[nchess.Square]bool{}
	if opts.Highlight != nil {
		if sq, ok := squareFromCoord(opts.Highlight.From); ok {
			highlighted[sq] = true
		}
		if sq, ok := squareFromCoord(opts.Highlight.To); ok {
			highlighted[sq] = true
		}
	}

	for file := nchess.FileA; file <= nchess.FileH; file++ {
		for rank := nchess.Rank1; rank <= nchess.Rank8; rank++ {
			sq := nchess.NewSquare(file, rank)
			rect := squareRect(file, rank)

			fill := lightSquare
			if (int(file)+int(rank))%2 == 0 {
				fill = darkSquare
			}
			imagedraw.Draw(img, rect, image.NewUniform(fill), image.Point{}, imagedraw.Src)
			if highlighted[sq] {
				imagedraw.Draw(img, rect, image.NewUniform(highlightTint), image.Point{}, imagedraw.Over)
			}

			piece := board.Piece(sq)
			if piece == nchess.NoPiece {
				continue
			}
			sprite, err := renderPieceImage(piece, squareSize)
			if err != nil {
				return nil, err
			}
			imagedraw.Draw(img, rect, sprite, image.Point{}, imagedraw.Over)
		}
	}

	drawCoordinates(img)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// squareRect positions rank 8 at the top, white's point of view.
func squareRect(file nchess.File, rank nchess.Rank) image.Rectangle {
	x := margin + int(file)*squareSize
	y := margin + (boardSquares-1-int(rank))*squareSize
	return image.Rect(x, y, x+squareSize, y+squareSize)
}

func squareFromCoord(coord string) (nchess.Square, bool) {
	coord = strings.ToLower(strings.TrimSpace(coord))
	if len(coord) != 2 || coord[0] < 'a' || coord[0] > 'h' || coord[1] < '1' || coord[1] > '8' {
		return 0, false
	}
	return nchess.NewSquare(nchess.File(coord[0]-'a'), nchess.Rank(coord[1]-'1')), true
}

func drawCoordinates(img *image.RGBA) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(labelColor),
		Face: face,
	}
	for i := 0; i < boardSquares; i++ {
		fileLabel := string(rune('a' + i))
		x := margin + i*squareSize + squareSize/2 - font.MeasureString(face, fileLabel).Ceil()/2
		drawer.Dot = fixed.P(x, margin+boardSize+margin/2+face.Ascent/2)
		drawer.DrawString(fileLabel)

		rankLabel := string(rune('1' + i))
		y := margin + (boardSquares-1-i)*squareSize + squareSize/2 + face.Ascent/2
		drawer.Dot = fixed.P(margin/2-font.MeasureString(face, rankLabel).Ceil()/2, y)
		drawer.DrawString(rankLabel)
	}
}
