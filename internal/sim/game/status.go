package game

import "fmt"

func (g *Game) status() Status {
	st := Status{
		Held:     g.player.Held,
		Modified: g.store.Len(),
		Visible:  len(g.rendered),
		Won:      g.won,
	}
	inventory := "No token in inventory"
	switch {
	case g.won:
		inventory = fmt.Sprintf("🎉 You won! Final token value: %d", g.finalValue)
	case g.player.Held > 0:
		inventory = fmt.Sprintf("Holding token with value: %d", g.player.Held)
	}
	st.Text = fmt.Sprintf("%s (Modified: %d, Visible: %d)", inventory, st.Modified, st.Visible)
	return st
}

func (g *Game) pushStatus() { g.surface.SetStatus(g.status()) }
