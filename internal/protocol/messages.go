package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PlayerName      string `json:"player_name"`
	Seed            *int64 `json:"seed,omitempty"` // optional per-session world seed
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	SessionID       string      `json:"session_id"`
	WorldParams     WorldParams `json:"world_params"`
}

// WorldParams is everything a surface client needs to lay the grid over its
// map and gate its own affordances.
type WorldParams struct {
	OriginLat         float64 `json:"origin_lat"`
	OriginLng         float64 `json:"origin_lng"`
	CellSize          float64 `json:"cell_size"`
	SpawnChance       float64 `json:"spawn_chance"`
	InteractionRadius int     `json:"interaction_radius"`
	TargetValue       int     `json:"target_value"`
	Seed              int64   `json:"seed"`
	StartI            int     `json:"start_i"`
	StartJ            int     `json:"start_j"`
}

// VIEW (client -> server): the surface's current visible geographic bounds.
type ViewMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	South           float64 `json:"south"`
	West            float64 `json:"west"`
	North           float64 `json:"north"`
	East            float64 `json:"east"`
}

// CLICK (client -> server): the player clicked the cell at (i,j).
type ClickMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	I               int    `json:"i"`
	J               int    `json:"j"`
}

// MOVE (client -> server): one axis-aligned step.
type MoveMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Direction       string `json:"direction"`
}

// CELL_SPAWN / CELL_UPDATE (server -> client): draw or restyle one cell.
type CellMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	I               int     `json:"i"`
	J               int     `json:"j"`
	South           float64 `json:"south"`
	West            float64 `json:"west"`
	North           float64 `json:"north"`
	East            float64 `json:"east"`
	Label           string  `json:"label,omitempty"` // empty when picked up
	Dimmed          bool    `json:"dimmed"`
	Interactive     bool    `json:"interactive"`
	FillColor       string  `json:"fill_color"`
	Tooltip         string  `json:"tooltip,omitempty"`
}

// CELL_DESPAWN (server -> client): remove one cell's visuals.
type CellDespawnMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	I               int    `json:"i"`
	J               int    `json:"j"`
}

// VIEW_CENTER (server -> client): recenter the map on the player.
type ViewCenterMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	Lat             float64 `json:"lat"`
	Lng             float64 `json:"lng"`
}

// STATUS (server -> client): inventory/status line after every handled event.
type StatusMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Text            string `json:"text"`
	Held            int    `json:"held"`
	Modified        int    `json:"modified"`
	Visible         int    `json:"visible"`
	Won             bool   `json:"won"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
}
