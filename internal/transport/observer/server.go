package observer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"hexglobe.ai/internal/observerproto"
	"hexglobe.ai/internal/sim/world"
	"hexglobe.ai/internal/sim/world/io/obscodec"
	"hexglobe.ai/internal/sim/world/logic/mathx"
	"hexglobe.ai/internal/sim/world/render"
	"hexglobe.ai/internal/sim/world/tiles"
)

// DefaultRequestTimeout bounds one round trip through the world loop.
const DefaultRequestTimeout = 5 * time.Second

type Server struct {
	world  *world.World
	log    *log.Logger
	digest string

	// AllowRemote disables the loopback-only check.
	AllowRemote    bool
	RequestTimeout time.Duration

	upgrader websocket.Upgrader
	nextID   atomic.Uint64
	sessions atomic.Int64
	received atomic.Uint64
	sent     atomic.Uint64
	busy     atomic.Uint64
}

// NewServer must be called before w.Run starts: it reads the immutable
// generated structure once.
func NewServer(w *world.World, logger *log.Logger) *Server {
	return &Server{
		world:          w,
		log:            logger,
		digest:         w.Digest(),
		RequestTimeout: DefaultRequestTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// Counters is a point-in-time view of the server's traffic.
type Counters struct {
	Sessions int64
	Received uint64
	Sent     uint64
	Busy     uint64
}

func (s *Server) Counters() Counters {
	return Counters{
		Sessions: s.sessions.Load(),
		Received: s.received.Load(),
		Sent:     s.sent.Load(),
		Busy:     s.busy.Load(),
	}
}

func (s *Server) BootstrapHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !s.allowed(r) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		data, err := s.render(r.Context())
		if err != nil {
			http.Error(rw, "world busy", http.StatusServiceUnavailable)
			return
		}

		cfg := s.world.Config()
		resp := observerproto.BootstrapResponse{
			ProtocolVersion: observerproto.Version,
			WorldID:         s.world.ID(),
			Digest:          s.digest,
			WorldParams: observerproto.WorldParams{
				Level:      cfg.Level,
				TileCount:  s.world.TileCount(),
				RiverCount: s.world.Stats().Rivers,
				LandSeed:   cfg.LandSeed,
				HeightSeed: cfg.HeightSeed,
				RiverSeed:  cfg.RiverSeed,
				CacheKey:   cfg.CacheKey(),
			},
			Palette: palette(cfg.Palette),
			Tiles:   data.Tiles,
		}

		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(resp)
	}
}

func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !s.allowed(r) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Handshake: must send SUBSCRIBE first.
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var sub observerproto.SubscribeMsg
		if err := json.Unmarshal(msg, &sub); err != nil {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad subscribe"), time.Now().Add(time.Second))
			return
		}
		if sub.Type != observerproto.TypeSubscribe || sub.ProtocolVersion != observerproto.Version {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected SUBSCRIBE"), time.Now().Add(time.Second))
			return
		}
		s.received.Add(1)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sess := &session{
			id:  fmt.Sprintf("V%d", s.nextID.Add(1)),
			srv: s,
			out: make(chan []byte, 64),
		}
		s.sessions.Add(1)
		defer s.sessions.Add(-1)
		s.logf("viewer %s connected from %s", sess.id, r.RemoteAddr)

		// Writer goroutine.
		writeErr := make(chan error, 1)
		go func() {
			for {
				select {
				case <-ctx.Done():
					writeErr <- ctx.Err()
					return
				case b := <-sess.out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						writeErr <- err
						cancel()
						return
					}
					s.sent.Add(1)
				}
			}
		}()

		if err := sess.sendMesh(ctx, sub.SkipRivers); err != nil {
			s.logf("viewer %s mesh: %v", sess.id, err)
			return
		}

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			s.received.Add(1)
			if err := sess.handle(ctx, msg); err != nil {
				s.logf("viewer %s: %v", sess.id, err)
				break
			}
		}

		cancel()
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

		// Best-effort wait for the writer to stop so it doesn't outlive conn.
		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
		s.logf("viewer %s disconnected", sess.id)
	}
}

// session is one viewer connection. Only the reader goroutine touches last.
type session struct {
	id   string
	srv  *Server
	out  chan []byte
	last []render.TileMeta
}

// handle routes one client message. A returned error ends the session.
func (c *session) handle(ctx context.Context, msg []byte) error {
	base, err := observerproto.DecodeBase(msg)
	if err != nil {
		return c.sendError(ctx, observerproto.ErrBadRequest, "invalid json")
	}
	switch base.Type {
	case observerproto.TypeSubscribe:
		var m observerproto.SubscribeMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return c.sendError(ctx, observerproto.ErrBadRequest, "bad SUBSCRIBE")
		}
		return c.sendMesh(ctx, m.SkipRivers)
	case observerproto.TypePick:
		var m observerproto.PickMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return c.sendError(ctx, observerproto.ErrBadRequest, "bad PICK")
		}
		return c.pick(ctx, m)
	case observerproto.TypeSelect:
		var m observerproto.SelectMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return c.sendError(ctx, observerproto.ErrBadRequest, "bad SELECT")
		}
		return c.selectTile(ctx, m)
	case observerproto.TypePlace:
		var m observerproto.PlaceMsg
		if err := json.Unmarshal(msg, &m); err != nil || strings.TrimSpace(m.Owner) == "" {
			return c.sendError(ctx, observerproto.ErrBadRequest, "bad PLACE")
		}
		return c.place(ctx, m)
	case observerproto.TypeMove:
		var m observerproto.MoveMsg
		if err := json.Unmarshal(msg, &m); err != nil {
			return c.sendError(ctx, observerproto.ErrBadRequest, "bad MOVE")
		}
		return c.move(ctx, m)
	default:
		return c.sendError(ctx, observerproto.ErrBadRequest, fmt.Sprintf("unknown message type %q", base.Type))
	}
}

func (c *session) pick(ctx context.Context, m observerproto.PickMsg) error {
	req := world.PickRequest{
		Origin: mathx.FromArray(m.Origin),
		Dir:    mathx.FromArray(m.Dir),
		Select: m.Select,
		Resp:   make(chan world.PickResult, 1),
	}
	res, err := roundTrip(ctx, c.srv, c.srv.world.PickRequests(), req, req.Resp)
	if err != nil {
		return c.sendBusy(ctx, err)
	}
	if err := c.send(ctx, observerproto.PickedMsg{
		Type:            observerproto.TypePicked,
		ProtocolVersion: observerproto.Version,
		TileID:          res.TileID,
	}); err != nil {
		return err
	}
	if m.Select && res.TileID >= 0 {
		return c.sendTiles(ctx)
	}
	return nil
}

func (c *session) selectTile(ctx context.Context, m observerproto.SelectMsg) error {
	req := world.SelectRequest{TileID: m.TileID, Resp: make(chan error, 1)}
	opErr, err := roundTrip(ctx, c.srv, c.srv.world.SelectRequests(), req, req.Resp)
	if err != nil {
		return c.sendBusy(ctx, err)
	}
	resp := observerproto.SelectedMsg{
		Type:            observerproto.TypeSelected,
		ProtocolVersion: observerproto.Version,
		TileID:          m.TileID,
		OK:              opErr == nil,
	}
	if opErr != nil {
		resp.Code, resp.Error = errorCode(opErr), opErr.Error()
	}
	if err := c.send(ctx, resp); err != nil {
		return err
	}
	if opErr == nil {
		return c.sendTiles(ctx)
	}
	return nil
}

func (c *session) place(ctx context.Context, m observerproto.PlaceMsg) error {
	req := world.PlaceRequest{TileID: m.TileID, Owner: m.Owner, Resp: make(chan world.PlaceResult, 1)}
	res, err := roundTrip(ctx, c.srv, c.srv.world.PlaceRequests(), req, req.Resp)
	if err != nil {
		return c.sendBusy(ctx, err)
	}
	resp := observerproto.PlacedMsg{
		Type:            observerproto.TypePlaced,
		ProtocolVersion: observerproto.Version,
		UnitID:          res.UnitID,
		TileID:          m.TileID,
		OK:              res.Err == nil,
	}
	if res.Err != nil {
		resp.Code, resp.Error = errorCode(res.Err), res.Err.Error()
	}
	if err := c.send(ctx, resp); err != nil {
		return err
	}
	if res.Err == nil {
		return c.sendTiles(ctx)
	}
	return nil
}

func (c *session) move(ctx context.Context, m observerproto.MoveMsg) error {
	req := world.MoveRequest{UnitID: m.UnitID, To: m.ToTile, Resp: make(chan error, 1)}
	opErr, err := roundTrip(ctx, c.srv, c.srv.world.MoveRequests(), req, req.Resp)
	if err != nil {
		return c.sendBusy(ctx, err)
	}
	resp := observerproto.MovedMsg{
		Type:            observerproto.TypeMoved,
		ProtocolVersion: observerproto.Version,
		UnitID:          m.UnitID,
		ToTile:          m.ToTile,
		OK:              opErr == nil,
	}
	if opErr != nil {
		resp.Code, resp.Error = errorCode(opErr), opErr.Error()
	}
	if err := c.send(ctx, resp); err != nil {
		return err
	}
	if opErr == nil {
		return c.sendTiles(ctx)
	}
	return nil
}

func (c *session) sendMesh(ctx context.Context, skipRivers bool) error {
	data, err := c.srv.render(ctx)
	if err != nil {
		return c.sendBusy(ctx, err)
	}
	m := observerproto.MeshMsg{
		Type:            observerproto.TypeMesh,
		ProtocolVersion: observerproto.Version,
		WorldID:         c.srv.world.ID(),
		Encoding:        observerproto.EncodingF32LE,
		Triangles:       data.TriangleCount(),
		TilePositions:   obscodec.EncodeF32LE(data.TilePositions),
		TileNormals:     obscodec.EncodeF32LE(data.TileNormals),
		TileColors:      obscodec.EncodeF32LE(data.TileColors),
		Edges:           obscodec.EncodeF32LE(data.Edges),
		Tiles:           data.Tiles,
	}
	if !skipRivers {
		m.RiverPositions = obscodec.EncodeF32LE(data.RiverPositions)
		m.RiverColors = obscodec.EncodeF32LE(data.RiverColors)
	}
	c.last = data.Tiles
	return c.send(ctx, m)
}

// sendTiles pushes the tile metadata that changed since the last push.
func (c *session) sendTiles(ctx context.Context) error {
	data, err := c.srv.render(ctx)
	if err != nil {
		return c.sendBusy(ctx, err)
	}
	delta := obscodec.TileDeltas(c.last, data.Tiles)
	c.last = data.Tiles
	if len(delta) == 0 {
		return nil
	}
	return c.send(ctx, observerproto.TilesMsg{
		Type:            observerproto.TypeTiles,
		ProtocolVersion: observerproto.Version,
		Tiles:           delta,
	})
}

func (c *session) sendBusy(ctx context.Context, cause error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	c.srv.busy.Add(1)
	return c.sendError(ctx, observerproto.ErrBusy, cause.Error())
}

func (c *session) sendError(ctx context.Context, code, message string) error {
	return c.send(ctx, observerproto.ErrorMsg{
		Type:            observerproto.TypeError,
		ProtocolVersion: observerproto.Version,
		Code:            code,
		Message:         message,
	})
}

func (c *session) send(ctx context.Context, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	select {
	case c.out <- b:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) render(ctx context.Context) (*render.Data, error) {
	req := world.RenderRequest{Resp: make(chan *render.Data, 1)}
	return roundTrip(ctx, s, s.world.RenderRequests(), req, req.Resp)
}

var errBusy = errors.New("world loop busy")

// roundTrip hands req to the world loop and waits for its reply on resp.
func roundTrip[Req, Resp any](ctx context.Context, s *Server, ch chan<- Req, req Req, resp chan Resp) (Resp, error) {
	var zero Resp
	timer := time.NewTimer(s.RequestTimeout)
	defer timer.Stop()
	select {
	case ch <- req:
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-timer.C:
		return zero, errBusy
	}
	select {
	case v := <-resp:
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-timer.C:
		return zero, errBusy
	}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, world.ErrUnknownTile):
		return observerproto.ErrUnknownTile
	case errors.Is(err, world.ErrUnknownUnit):
		return observerproto.ErrUnknownUnit
	case errors.Is(err, world.ErrTileOccupied):
		return observerproto.ErrOccupied
	case errors.Is(err, world.ErrNotNeighbor):
		return observerproto.ErrNotNeighbor
	default:
		return observerproto.ErrInternal
	}
}

func palette(p tiles.Palette) map[string][3]int {
	out := make(map[string][3]int, len(tiles.AllTerrains()))
	for _, t := range tiles.AllTerrains() {
		c := p.Color(t)
		out[t.String()] = [3]int{int(c[0]), int(c[1]), int(c[2])}
	}
	return out
}

func (s *Server) allowed(r *http.Request) bool {
	return s.AllowRemote || isLoopbackRemote(r.RemoteAddr)
}

func (s *Server) logf(format string, args ...any) {
	if s.log != nil {
		s.log.Printf(format, args...)
	}
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
