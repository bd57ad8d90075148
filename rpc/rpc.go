package rpc

import (
	"context"
	"errors"
	"net"
	"net/rpc"
	"time"

	"github.com/wfunc/wordimpostor/logger"
	"github.com/wfunc/wordimpostor/monitor"
	"github.com/wfunc/wordimpostor/services"
)

// callTimeout bounds each admin call against the store.
const callTimeout = 5 * time.Second

// Server manages the admin RPC listener.
type Server struct {
	listener net.Listener
	address  string
	rpc      *rpc.Server
}

// NewServer listens on addr and registers the admin service.
func NewServer(addr string, admin *AdminService) (*Server, error) {
	srv := rpc.NewServer()
	if err := srv.RegisterName("AdminService", admin); err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  listener.Addr().String(),
		rpc:      srv,
	}, nil
}

// Addr returns the bound address.
func (s *Server) Addr() string {
	return s.address
}

// Start serves connections until Stop is called.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go s.rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// AdminService exposes read-only operator queries.
type AdminService struct {
	stats   *services.StatsService
	monitor *monitor.Monitor
}

func NewAdminService(stats *services.StatsService, mon *monitor.Monitor) *AdminService {
	return &AdminService{stats: stats, monitor: mon}
}

type StatsArgs struct {
	Window time.Duration // zero means one hour
}

type StatsReply struct {
	Rooms        int
	Participants int
	ActiveRounds int
	RecentRounds int64
	Uptime       time.Duration
}

// Stats reports the live directory and recent round volume.
func (a *AdminService) Stats(args *StatsArgs, reply *StatsReply) error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	o, err := a.stats.Overview(ctx, args.Window)
	if err != nil {
		return err
	}
	*reply = StatsReply{
		Rooms:        o.Rooms,
		Participants: o.Participants,
		ActiveRounds: o.ActiveRounds,
		RecentRounds: o.RecentRounds,
		Uptime:       a.monitor.Uptime(),
	}
	return nil
}

type RoundHistoryArgs struct {
	RoomCode string
	Limit    int
}

type RoundHistoryReply struct {
	Rounds []services.RoundSummary
}

// RoundHistory lists the recorded rounds of one room, newest first.
func (a *AdminService) RoundHistory(args *RoundHistoryArgs, reply *RoundHistoryReply) error {
	if args.RoomCode == "" {
		return errors.New("room code required")
	}
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	rounds, err := a.stats.RoundHistory(ctx, args.RoomCode, args.Limit)
	if err != nil {
		return err
	}
	reply.Rounds = rounds
	return nil
}
