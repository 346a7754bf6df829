// Package grpc runs the gRPC listener. It exposes the standard health service
// so orchestrators can check readiness on a separate port from the JSON API.
package grpc

import (
	"context"
	"net"

	"github.com/SWE-Jahidul/amar-hisab-back/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/v1"
)

type Server struct {
	address string
	logger  logging.Logger
	health  *health.Server
	srv     *grpc.Server
}

// NewServer builds a server that reports NOT_SERVING until SetServing(true).
func NewServer(address string, l logging.Logger) *Server {
	s := &Server{
		address: address,
		logger:  l.With("module", "grpc_server"),
		health:  health.NewServer(),
	}
	s.srv = grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	healthpb.RegisterHealthServer(s.srv, s.health)
	s.SetServing(false)
	return s
}

// SetServing flips the overall health status.
func (s *Server) SetServing(ok bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
}

func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled, then stops
// gracefully.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		s.srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := s.srv.Serve(lis); err != nil {
		return err
	}
	return nil
}
