// Command visualize renders a position plus its current root evaluation
// to a PNG, and the live search tree to a Graphviz DOT file — the debug
// tool spec.md's cmd/visualize responsibility names.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log"
	"os"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/kestrelchess/puctcore/arena"
	"github.com/kestrelchess/puctcore/eval"
	"github.com/kestrelchess/puctcore/mcts"
	"github.com/kestrelchess/puctcore/nnue"
	"github.com/kestrelchess/puctcore/policy"
	"github.com/kestrelchess/puctcore/position"
)

const squareSize = 48
const boardPixels = squareSize * 8

var pieceGlyph = [2][6]string{
	{"P", "N", "B", "R", "Q", "K"}, // white
	{"p", "n", "b", "r", "q", "k"}, // black
}

func main() {
	fen := flag.String("fen", "", "FEN to render (default: starting position)")
	playouts := flag.Int("playouts", 2000, "playouts to run before rendering the tree")
	weightsDir := flag.String("weights", "weights", "directory holding the NNUE weight files")
	policyPath := flag.String("policy", "weights/policy_weights.bin", "path to the policy network weight file")
	dotDepth := flag.Int("dot-depth", 3, "max depth of the exported search tree")
	pngOut := flag.String("png", "position.png", "output PNG path")
	dotOut := flag.String("dot", "tree.dot", "output DOT path")
	flag.Parse()

	var st *position.State
	var err error
	if *fen == "" {
		st = position.New()
	} else {
		st, err = position.FromFEN(*fen)
		if err != nil {
			log.Fatalf("visualize: parsing FEN: %v", err)
		}
	}

	weights, err := nnue.LoadWeights(*weightsDir)
	if err != nil {
		log.Fatalf("visualize: loading NNUE weights: %v", err)
	}
	pol, err := policy.Load(*policyPath)
	if err != nil {
		log.Fatalf("visualize: loading policy weights: %v", err)
	}
	evaluator := eval.New(weights, pol)

	table := arena.NewLRTable[mcts.Node, *mcts.Node, mcts.Edge](1<<16, 1<<20)
	tree := mcts.New(st, mcts.DefaultConfig(), evaluator, table)
	for i := 0; i < *playouts; i++ {
		if !tree.Playout(nil) {
			break
		}
	}

	score := evaluator.EvaluateState(st)
	if err := renderBoard(st, eval.CentipawnString(score), *pngOut); err != nil {
		log.Fatalf("visualize: rendering board: %v", err)
	}
	if err := os.WriteFile(*dotOut, []byte(tree.DOT(*dotDepth)), 0o644); err != nil {
		log.Fatalf("visualize: writing DOT file: %v", err)
	}
	fmt.Printf("wrote %s and %s\n", *pngOut, *dotOut)
}

// renderBoard draws an 8x8 board with one letter per occupied square plus
// a caption line, to path as a PNG.
func renderBoard(st *position.State, caption string, path string) error {
	const captionHeight = 24
	img := image.NewRGBA(image.Rect(0, 0, boardPixels, boardPixels+captionHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			light := (rank+file)%2 == 0
			c := color.RGBA{0xb5, 0x88, 0x63, 0xff}
			if light {
				c = color.RGBA{0xf0, 0xd9, 0xb5, 0xff}
			}
			x0, y0 := file*squareSize, rank*squareSize
			draw.Draw(img, image.Rect(x0, y0, x0+squareSize, y0+squareSize),
				image.NewUniform(c), image.Point{}, draw.Src)
		}
	}

	font, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return err
	}
	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(font)
	ctx.SetFontSize(28)
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img)
	ctx.SetSrc(image.NewUniform(color.Black))

	for _, p := range st.Pieces() {
		file := p.Square % 8
		rank := 7 - p.Square/8
		pt := freetype.Pt(file*squareSize+squareSize/3, rank*squareSize+2*squareSize/3)
		if _, err := ctx.DrawString(pieceGlyph[p.Colour][p.Role], pt); err != nil {
			return err
		}
	}

	ctx.SetFontSize(16)
	captionPt := freetype.Pt(4, boardPixels+captionHeight-6)
	if _, err := ctx.DrawString(caption, captionPt); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
