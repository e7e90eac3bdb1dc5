package eval

import "testing"

func TestFlipIsInvolution(t *testing.T) {
	all := []Flag{Standard, TerminalWin, TerminalDraw, TerminalLoss, TablebaseWin, TablebaseDraw, TablebaseLoss}
	for _, f := range all {
		if got := f.Flip().Flip(); got != f {
			t.Fatalf("flip(flip(%v)) = %v, want %v", f, got, f)
		}
	}
}

func TestFlipSwapsWinLoss(t *testing.T) {
	if TerminalWin.Flip() != TerminalLoss {
		t.Fatalf("expected TerminalWin to flip to TerminalLoss")
	}
	if TablebaseWin.Flip() != TablebaseLoss {
		t.Fatalf("expected TablebaseWin to flip to TablebaseLoss")
	}
	if TerminalDraw.Flip() != TerminalDraw {
		t.Fatalf("draw must be its own flip")
	}
}

func TestIsTerminalAndIsTablebase(t *testing.T) {
	if !TerminalWin.IsTerminal() || TerminalWin.IsTablebase() {
		t.Fatalf("TerminalWin must be terminal and not tablebase")
	}
	if !TablebaseLoss.IsTablebase() || TablebaseLoss.IsTerminal() {
		t.Fatalf("TablebaseLoss must be tablebase and not terminal")
	}
	if Standard.IsTerminal() || Standard.IsTablebase() {
		t.Fatalf("Standard must be neither")
	}
}
