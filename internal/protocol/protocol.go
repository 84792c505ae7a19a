package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	// Client -> server.
	TypeHello = "HELLO"
	TypeView  = "VIEW"
	TypeClick = "CLICK"
	TypeMove  = "MOVE"

	// Server -> client.
	TypeWelcome     = "WELCOME"
	TypeCellSpawn   = "CELL_SPAWN"
	TypeCellUpdate  = "CELL_UPDATE"
	TypeCellDespawn = "CELL_DESPAWN"
	TypeViewCenter  = "VIEW_CENTER"
	TypeStatus      = "STATUS"
	TypeError       = "ERROR"
)

// Movement directions.
const (
	DirNorth = "NORTH"
	DirSouth = "SOUTH"
	DirEast  = "EAST"
	DirWest  = "WEST"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
