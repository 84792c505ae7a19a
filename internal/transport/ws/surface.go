package ws

import (
	"encoding/json"

	"gridmerge.app/internal/protocol"
	"gridmerge.app/internal/sim/game"
	"gridmerge.app/internal/sim/grid"
)

// remoteSurface relays render calls from the session goroutine to the remote
// map client as protocol messages. Cell commands are stateful, so sends block
// rather than drop; a dead connection unblocks via done.
type remoteSurface struct {
	out  chan<- []byte
	done <-chan struct{}
}

func newSurface(out chan<- []byte, done <-chan struct{}) *remoteSurface {
	return &remoteSurface{out: out, done: done}
}

func (s *remoteSurface) send(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case s.out <- b:
	case <-s.done:
	}
}

func (s *remoteSurface) sendError(code, message string) {
	s.send(protocol.ErrorMsg{
		Type:            protocol.TypeError,
		ProtocolVersion: protocol.Version,
		Code:            code,
		Message:         message,
	})
}

func cellMsg(msgType string, v game.CellView) protocol.CellMsg {
	return protocol.CellMsg{
		Type:            msgType,
		ProtocolVersion: protocol.Version,
		I:               v.Coord.I,
		J:               v.Coord.J,
		South:           v.Bounds.South,
		West:            v.Bounds.West,
		North:           v.Bounds.North,
		East:            v.Bounds.East,
		Label:           v.Label,
		Dimmed:          v.Dimmed,
		Interactive:     v.Interactive,
		FillColor:       v.FillColor,
		Tooltip:         v.Tooltip,
	}
}

func (s *remoteSurface) SpawnCell(v game.CellView) {
	s.send(cellMsg(protocol.TypeCellSpawn, v))
}

func (s *remoteSurface) UpdateCell(v game.CellView) {
	s.send(cellMsg(protocol.TypeCellUpdate, v))
}

func (s *remoteSurface) DespawnCell(c grid.Coord) {
	s.send(protocol.CellDespawnMsg{
		Type:            protocol.TypeCellDespawn,
		ProtocolVersion: protocol.Version,
		I:               c.I,
		J:               c.J,
	})
}

func (s *remoteSurface) SetView(center grid.LatLng) {
	s.send(protocol.ViewCenterMsg{
		Type:            protocol.TypeViewCenter,
		ProtocolVersion: protocol.Version,
		Lat:             center.Lat,
		Lng:             center.Lng,
	})
}

func (s *remoteSurface) SetStatus(st game.Status) {
	s.send(protocol.StatusMsg{
		Type:            protocol.TypeStatus,
		ProtocolVersion: protocol.Version,
		Text:            st.Text,
		Held:            st.Held,
		Modified:        st.Modified,
		Visible:         st.Visible,
		Won:             st.Won,
	})
}
