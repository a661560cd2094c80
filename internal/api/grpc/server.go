package grpc

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// DatabaseService - имя сервиса в health-check для состояния PostgreSQL
const DatabaseService = "roster.Database"

type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// GRPCServer отдает стандартный grpc.health.v1 для оркестратора
type GRPCServer struct {
	db     Pinger
	health *health.Server
	server *grpc.Server
	log    logrus.FieldLogger
}

func NewGRPCServer(db Pinger, log logrus.FieldLogger) *GRPCServer {
	s := &GRPCServer{
		db:     db,
		health: health.NewServer(),
		log:    log.WithField("component", "grpc"),
	}
	s.server = grpc.NewServer(
		grpc.UnaryInterceptor(s.unaryInterceptor),
	)
	healthpb.RegisterHealthServer(s.server, s.health)
	reflection.Register(s.server)
	return s
}

func (s *GRPCServer) Start(port string) error {
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.log.WithField("port", port).Info("grpc health server listening")
	return s.Serve(lis)
}

func (s *GRPCServer) Serve(lis net.Listener) error {
	return s.server.Serve(lis)
}

func (s *GRPCServer) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}

// Check один раз проверяет базу и выставляет статусы
func (s *GRPCServer) Check(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := s.db.HealthCheck(ctx); err != nil {
		s.log.WithError(err).Warn("database health check failed")
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(DatabaseService, status)
}

// WatchDatabase проверяет базу каждые interval до отмены ctx
func (s *GRPCServer) WatchDatabase(ctx context.Context, interval time.Duration) {
	s.Check(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Check(ctx)
		}
	}
}

func (s *GRPCServer) unaryInterceptor(ctx context.Context, req interface{},
	info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	s.log.WithField("method", info.FullMethod).Debug("grpc call")
	return handler(ctx, req)
}
