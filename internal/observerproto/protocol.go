// Package observerproto defines the JSON messages exchanged with the globe viewer.
package observerproto

import (
	"encoding/json"

	"hexglobe.ai/internal/sim/world/render"
)

const Version = "1.0"

// Message types.
const (
	TypeSubscribe = "SUBSCRIBE"
	TypeMesh      = "MESH"
	TypeTiles     = "TILES"
	TypePick      = "PICK"
	TypePicked    = "PICKED"
	TypeSelect    = "SELECT"
	TypeSelected  = "SELECTED"
	TypePlace     = "PLACE"
	TypePlaced    = "PLACED"
	TypeMove      = "MOVE"
	TypeMoved     = "MOVED"
	TypeError     = "ERROR"
)

// EncodingF32LE marks mesh arrays as base64 little-endian float32.
const EncodingF32LE = "f32le-b64"

// BaseMessage lets us route incoming messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}

// HTTP response for GET /v1/bootstrap.
type BootstrapResponse struct {
	ProtocolVersion string            `json:"protocol_version"`
	WorldID         string            `json:"world_id"`
	Digest          string            `json:"digest"`
	WorldParams     WorldParams       `json:"world_params"`
	Palette         map[string][3]int `json:"palette"`
	Tiles           []render.TileMeta `json:"tiles"`
}

type WorldParams struct {
	Level      int    `json:"level"`
	TileCount  int    `json:"tile_count"`
	RiverCount int    `json:"river_count"`
	LandSeed   int64  `json:"land_seed"`
	HeightSeed int64  `json:"height_seed"`
	RiverSeed  int64  `json:"river_seed"`
	CacheKey   string `json:"cache_key"`
}

// Client -> Server. First message on the viewer WS connection; re-sending it
// requests a fresh MESH.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	// SkipRivers omits the river ribbon arrays.
	SkipRivers bool `json:"skip_rivers,omitempty"`
}

// Server -> Client. Full render arrays, each encoded per Encoding.
type MeshMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	WorldID         string `json:"world_id"`
	Encoding        string `json:"encoding"`
	Triangles       int    `json:"triangles"`

	TilePositions  string `json:"tile_positions"`
	TileNormals    string `json:"tile_normals"`
	TileColors     string `json:"tile_colors"`
	Edges          string `json:"edges"`
	RiverPositions string `json:"river_positions,omitempty"`
	RiverColors    string `json:"river_colors,omitempty"`

	Tiles []render.TileMeta `json:"tiles"`
}

// Server -> Client. Tile metadata that changed since the last MESH or TILES.
type TilesMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	Tiles           []render.TileMeta `json:"tiles"`
}

// Client -> Server. Ray in world space; Select also makes the hit the selection.
type PickMsg struct {
	Type   string     `json:"type"`
	Origin [3]float64 `json:"origin"`
	Dir    [3]float64 `json:"dir"`
	Select bool       `json:"select,omitempty"`
}

// PickedMsg.TileID is -1 on a miss.
type PickedMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	TileID          int    `json:"tile_id"`
}

// Client -> Server. A negative TileID clears the selection.
type SelectMsg struct {
	Type   string `json:"type"`
	TileID int    `json:"tile_id"`
}

type SelectedMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	TileID          int    `json:"tile_id"`
	OK              bool   `json:"ok"`
	Code            string `json:"code,omitempty"`
	Error           string `json:"error,omitempty"`
}

type PlaceMsg struct {
	Type   string `json:"type"`
	TileID int    `json:"tile_id"`
	Owner  string `json:"owner"`
}

type PlacedMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	UnitID          int    `json:"unit_id"`
	TileID          int    `json:"tile_id"`
	OK              bool   `json:"ok"`
	Code            string `json:"code,omitempty"`
	Error           string `json:"error,omitempty"`
}

type MoveMsg struct {
	Type   string `json:"type"`
	UnitID int    `json:"unit_id"`
	ToTile int    `json:"to_tile"`
}

type MovedMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	UnitID          int    `json:"unit_id"`
	ToTile          int    `json:"to_tile"`
	OK              bool   `json:"ok"`
	Code            string `json:"code,omitempty"`
	Error           string `json:"error,omitempty"`
}

// Server -> Client. Sent for malformed or unroutable client messages.
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message"`
}
