package observerproto

const (
	// Transport validation.
	ErrBadRequest = "E_BAD_REQUEST"
	ErrBusy       = "E_BUSY"

	// World operations.
	ErrUnknownTile = "E_UNKNOWN_TILE"
	ErrUnknownUnit = "E_UNKNOWN_UNIT"
	ErrOccupied    = "E_OCCUPIED"
	ErrNotNeighbor = "E_NOT_NEIGHBOR"
	ErrInternal    = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrBadRequest:  {},
	ErrBusy:        {},
	ErrUnknownTile: {},
	ErrUnknownUnit: {},
	ErrOccupied:    {},
	ErrNotNeighbor: {},
	ErrInternal:    {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
