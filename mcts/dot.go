package mcts

import (
	"fmt"

	"github.com/awalterschulze/gographviz"

	"github.com/kestrelchess/puctcore/eval"
)

// DOT renders the live search tree rooted at t, down to maxDepth plies,
// as Graphviz DOT source — the debug-export responsibility cmd/visualize
// hands off to a .dot file.
func (t *Tree) DOT(maxDepth int) string {
	g := gographviz.NewGraph()
	g.SetName("search")
	g.SetDir(true)

	rootID := "n0"
	g.AddNode("search", rootID, map[string]string{
		"label": fmt.Sprintf("\"root\\n%s\"", flagLabel(t.rootNode.Flag)),
	})

	var counter int
	var walk func(node *Node, id string, depth int)
	walk = func(node *Node, id string, depth int) {
		if depth >= maxDepth {
			return
		}
		for i := range node.Edges {
			e := &node.Edges[i]
			h, ok := e.Child()
			if !ok {
				continue
			}
			counter++
			childID := fmt.Sprintf("n%d", counter)
			child := t.table.Get(h)

			g.AddNode("search", childID, map[string]string{
				"label": fmt.Sprintf("\"%s\\nn=%d q=%.3f\\n%s\"",
					moveLabel(e.Move), e.Visits(), e.AverageValue(FPUValue), flagLabel(child.Flag)),
			})
			g.AddEdge(id, childID, true, map[string]string{
				"label": fmt.Sprintf("\"p=%.3f\"", e.Policy),
			})
			walk(child, childID, depth+1)
		}
	}
	walk(t.rootNode, rootID, 0)

	return g.String()
}

func flagLabel(f eval.Flag) string {
	switch f {
	case eval.Standard:
		return "standard"
	case eval.TerminalWin:
		return "terminal-win"
	case eval.TerminalDraw:
		return "terminal-draw"
	case eval.TerminalLoss:
		return "terminal-loss"
	case eval.TablebaseWin:
		return "tb-win"
	case eval.TablebaseDraw:
		return "tb-draw"
	case eval.TablebaseLoss:
		return "tb-loss"
	default:
		return "unknown"
	}
}

func moveLabel(m interface{ String() string }) string {
	if m == nil {
		return "?"
	}
	return m.String()
}
