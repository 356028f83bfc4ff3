package server

import (
	"context"
	"net"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/vadiminshakov/sasaft/core/engine"
	"github.com/vadiminshakov/sasaft/core/longpoll"
	"github.com/vadiminshakov/sasaft/io/gateway/grpc/proto"
	"github.com/vadiminshakov/sasaft/io/wire"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Machine answers long polls; *engine.Engine implements it.
type Machine interface {
	Handle(ctx context.Context, frame []byte) ([]byte, error)
	Status(ctx context.Context) (engine.Status, error)
}

// Server exposes a machine on the host link.
type Server struct {
	proto.UnimplementedHostLinkServer
	Addr       string
	GRPCServer *grpc.Server
	Whitelist  []string

	machine  Machine
	listener net.Listener
	// mu serializes polls the way a serial line would.
	mu sync.Mutex
}

// New fabric func for Server
func New(addr string, whitelist []string, machine Machine) (*Server, error) {
	if machine == nil {
		return nil, errors.New("machine is nil")
	}
	return &Server{Addr: addr, Whitelist: whitelist, machine: machine}, nil
}

// Poll passes one frame to the machine. A frame the machine does not answer
// yields an empty reply.
func (s *Server) Poll(ctx context.Context, req *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reply, err := s.machine.Handle(ctx, req.GetValue())
	switch {
	case err == nil:
		return wrapperspb.Bytes(reply), nil
	case errors.Is(err, longpoll.ErrUnknownCommand):
		log.Debugf("no reply: %v", err)
		return wrapperspb.Bytes(nil), nil
	case isFrameError(err):
		return nil, status.Error(codes.InvalidArgument, err.Error())
	default:
		log.Errorf("poll failed: %v", err)
		return nil, status.Error(codes.Internal, err.Error())
	}
}

func isFrameError(err error) bool {
	for _, target := range []error{wire.ErrShortFrame, wire.ErrBadCRC, wire.ErrBadBCD, wire.ErrLength, wire.ErrOverflow} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (s *Server) Status(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	st, err := s.machine.Status(ctx)
	if err != nil {
		return nil, status.Error(codes.Unavailable, err.Error())
	}
	return statusToProto(st)
}

// Run starts non-blocking GRPC server
func (s *Server) Run(opts ...grpc.UnaryServerInterceptor) error {
	s.GRPCServer = grpc.NewServer(grpc.ChainUnaryInterceptor(opts...))
	proto.RegisterHostLinkServer(s.GRPCServer, s)

	l, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return errors.Wrap(err, "failed to listen")
	}
	s.listener = l
	log.Infof("listening on tcp://%s", l.Addr())

	go func() {
		if err := s.GRPCServer.Serve(l); err != nil {
			log.Errorf("host link stopped: %v", err)
		}
	}()
	return nil
}

// ListenAddr is the bound address, useful when Addr asks for port 0.
func (s *Server) ListenAddr() string {
	if s.listener == nil {
		return s.Addr
	}
	return s.listener.Addr().String()
}

// Stop stops server
func (s *Server) Stop() {
	log.Info("stopping server")
	if s.GRPCServer != nil {
		s.GRPCServer.GracefulStop()
	}
	log.Info("server stopped")
}
