package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/wfunc/wordimpostor/broadcast"
	"github.com/wfunc/wordimpostor/logger"
	"github.com/wfunc/wordimpostor/models"
	"github.com/wfunc/wordimpostor/monitor"
	"github.com/wfunc/wordimpostor/network"
	"github.com/wfunc/wordimpostor/room"
	"github.com/wfunc/wordimpostor/services"
	"github.com/wfunc/wordimpostor/session"
	"github.com/wfunc/wordimpostor/words"
)

// recordTimeout bounds the round-history write done after each start.
const recordTimeout = 3 * time.Second

// Options tune the transport. Zero RateLimit disables inbound limiting and
// zero HeartbeatInterval disables idle disconnects.
type Options struct {
	Addr              string
	RateLimit         float64
	RateBurst         int
	HeartbeatInterval time.Duration
}

type GameServer struct {
	opts           Options
	upgrader       websocket.Upgrader
	roomManager    *room.Manager
	sessionManager *session.Manager
	stats          *services.StatsService
	monitor        *monitor.Monitor
	broadcaster    broadcast.Broadcaster
	httpServer     *http.Server
	connections    sync.WaitGroup
	shutdownChan   chan struct{}
	shutdownOnce   sync.Once
}

// NewGameServer wires the transport to an existing room directory. The
// directory must publish through broadcaster (room.Settings.Publish), which
// in turn delivers to sessions; room notifications are never sent from here.
// stats may be nil, in which case rounds are not recorded.
func NewGameServer(opts Options, rooms *room.Manager, sessions *session.Manager, broadcaster broadcast.Broadcaster, stats *services.StatsService, mon *monitor.Monitor) *GameServer {
	s := &GameServer{
		opts:           opts,
		roomManager:    rooms,
		sessionManager: sessions,
		broadcaster:    broadcaster,
		stats:          stats,
		monitor:        mon,
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler serves the websocket endpoint and a health check.
func (s *GameServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "ok")
	})
	return mux
}

// Start blocks serving HTTP until Shutdown.
func (s *GameServer) Start() error {
	logger.Log.Infof("Game server listening on %s", s.opts.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections, closes the live ones and waits for
// their handlers to finish or ctx to expire.
func (s *GameServer) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() { close(s.shutdownChan) })
	err := s.httpServer.Shutdown(ctx)

	// hijacked websocket connections are not tracked by http.Server
	for _, sess := range s.sessionManager.All() {
		sess.Close()
	}

	done := make(chan struct{})
	go func() {
		s.connections.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return err
}

// SampleStats pushes the directory totals into the gauges.
func (s *GameServer) SampleStats() {
	stats := s.roomManager.Stats()
	s.monitor.SetDirectory(stats.Rooms, stats.Participants, stats.ActiveRounds)
	logger.Log.Infof("Directory: %d rooms, %d participants, %d active rounds, %d sessions",
		stats.Rooms, stats.Participants, stats.ActiveRounds, s.sessionManager.Count())
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	select {
	case <-s.shutdownChan:
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	default:
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.connections.Add(1)
	defer s.connections.Done()
	s.handleConnection(conn)
}

func (s *GameServer) newLimiter() *rate.Limiter {
	if s.opts.RateLimit <= 0 {
		return nil
	}
	burst := s.opts.RateBurst
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(s.opts.RateLimit), burst)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	if s.opts.HeartbeatInterval > 0 {
		wsConn.SetHeartbeat(s.opts.HeartbeatInterval)
	}
	sess := session.NewSession(uuid.New().String(), wsConn, s.newLimiter())
	s.sessionManager.Add(sess)
	s.monitor.IncOnlinePlayers()

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s, idle %s", wsConn.RemoteAddr(), sess.GetID(),
			time.Since(sess.LastActive()).Round(time.Millisecond))
		s.sessionManager.Remove(sess.GetID())
		s.monitor.DecOnlinePlayers()
		s.roomManager.Disconnect(sess.GetID())
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
		}

		packet, err := wsConn.ReadPacket()
		if errors.Is(err, io.ErrShortBuffer) {
			logger.Log.Warnf("Malformed frame from session %s", sess.GetID())
			continue
		}
		if err != nil {
			return
		}
		if !sess.Allow() {
			logger.Log.Debugf("Rate limited session %s (msg %d)", sess.GetID(), packet.MsgID)
			s.monitor.IncActionErrors("RateLimited")
			continue
		}
		sess.Touch()
		s.handlePacket(sess, packet)
	}
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	start := time.Now()
	defer func() { s.monitor.ObserveMessageLatency(time.Since(start)) }()
	s.monitor.IncMessagesReceived(network.EventName(packet.MsgID))

	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		// Touch already ran
	case network.MsgTypeConfigureRoom:
		s.handleConfigureRoom(sess, packet)
	case network.MsgTypeJoinRoom:
		s.handleJoinRoom(sess, packet)
	case network.MsgTypeStartRound:
		s.handleStartRound(sess, packet)
	case network.MsgTypeRequestRematch:
		s.handleRequestRematch(sess, packet)
	case network.MsgTypeRespondRematch:
		s.handleRespondRematch(sess, packet)
	case network.MsgTypeLeaveRoom:
		s.handleLeaveRoom(sess, packet)
	default:
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
	}
}

// errInvalidRequest marks payloads that could not be decoded.
var errInvalidRequest = errors.New("invalid request payload")

func decode(packet *network.Packet, v interface{}) error {
	if err := json.Unmarshal(packet.Data, v); err != nil {
		return errInvalidRequest
	}
	return nil
}

func (s *GameServer) handleConfigureRoom(sess *session.Session, packet *network.Packet) {
	var req models.ConfigureRoomRequest
	if err := decode(packet, &req); err != nil {
		s.reject(room.JoinError(sess.GetID(), err), err)
		return
	}
	mode, err := words.ParseMode(req.Mode)
	if err != nil {
		s.reject(room.JoinError(sess.GetID(), err), err)
		return
	}

	cfg := room.Config{
		Mode:          mode,
		Category:      req.Category,
		ManualWord:    req.ManualWord,
		ImpostorCount: req.ImpostorCount,
	}
	code, _, err := s.roomManager.CreateRoom(cfg, req.HostName, sess.GetID())
	if err != nil {
		s.reject(room.JoinError(sess.GetID(), err), err)
		return
	}

	logger.Log.Infof("Session %s configured room %s", sess.GetID(), code)
}

func (s *GameServer) handleJoinRoom(sess *session.Session, packet *network.Packet) {
	var req models.JoinRoomRequest
	if err := decode(packet, &req); err != nil {
		s.reject(room.JoinError(sess.GetID(), err), err)
		return
	}
	if _, err := s.roomManager.Join(req.Code, sess.GetID(), req.Name); err != nil {
		logger.Log.Debugf("Session %s failed to join %s: %v", sess.GetID(), req.Code, err)
		s.reject(room.JoinError(sess.GetID(), err), err)
	}
}

func (s *GameServer) handleStartRound(sess *session.Session, packet *network.Packet) {
	var req models.RoomRequest
	if err := decode(packet, &req); err != nil {
		s.reject(room.RoundError(sess.GetID(), err), err)
		return
	}
	_, round, err := s.roomManager.StartRound(req.Code, sess.GetID())
	if err != nil {
		logger.Log.Warnf("Session %s could not start round in %s: %v", sess.GetID(), req.Code, err)
		s.reject(room.RoundError(sess.GetID(), err), err)
		return
	}
	s.monitor.IncRoundsStarted()
	s.recordRound(round)
}

func (s *GameServer) recordRound(round room.Round) {
	if s.stats == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if err := s.stats.RecordRound(ctx, round); err != nil {
		logger.Log.Errorf("Failed to record round for room %s: %v", round.Code, err)
	}
}

func (s *GameServer) handleRequestRematch(sess *session.Session, packet *network.Packet) {
	var req models.RoomRequest
	if err := decode(packet, &req); err != nil {
		s.reject(room.RoundError(sess.GetID(), err), err)
		return
	}
	if _, err := s.roomManager.RequestRematch(req.Code, sess.GetID()); err != nil {
		s.reject(room.RoundError(sess.GetID(), err), err)
		return
	}
	logger.Log.Infof("Rematch requested in room %s", req.Code)
}

func (s *GameServer) handleRespondRematch(sess *session.Session, packet *network.Packet) {
	var req models.RespondRematchRequest
	if err := decode(packet, &req); err != nil {
		s.reject(room.RoundError(sess.GetID(), err), err)
		return
	}
	_, err := s.roomManager.RespondRematch(req.Code, sess.GetID(), req.Accepted)
	if errors.Is(err, room.ErrNotInRoom) {
		// answers from outsiders are ignored
		logger.Log.Debugf("Ignoring rematch answer from %s for room %s", sess.GetID(), req.Code)
		return
	}
	if err != nil {
		s.reject(room.RoundError(sess.GetID(), err), err)
	}
}

func (s *GameServer) handleLeaveRoom(sess *session.Session, packet *network.Packet) {
	var req models.RoomRequest
	if err := decode(packet, &req); err != nil {
		s.reject(room.RoundError(sess.GetID(), err), err)
		return
	}
	if _, err := s.roomManager.Leave(req.Code, sess.GetID()); err != nil {
		s.reject(room.RoundError(sess.GetID(), err), err)
	}
}

// reject sends an error notification to the originator only. Room operations
// publish their own notifications.
func (s *GameServer) reject(note room.Notification, err error) {
	s.monitor.IncActionErrors(room.Reason(err))
	if err := s.broadcaster.Deliver([]room.Notification{note}); err != nil {
		logger.Log.Debugf("Error reply not delivered: %v", err)
	}
}
