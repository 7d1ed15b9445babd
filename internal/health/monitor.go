// Package health reports storefront readiness over the standard gRPC health
// protocol.
package health

import (
	"context"
	"time"

	"github.com/fjod/omnex-storefront/internal/logger"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const ServiceName = "omnex.storefront"

// Pinger is anything whose reachability decides readiness, usually the storage backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Monitor struct {
	server   *health.Server
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger
	serving  bool
}

func NewMonitor(pinger Pinger, interval time.Duration, l *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	m := &Monitor{
		server:   health.NewServer(),
		pinger:   pinger,
		interval: interval,
		timeout:  interval / 2,
		logger:   logger.OrNop(l),
		serving:  true,
	}
	m.set(grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	return m
}

func (m *Monitor) Server() *health.Server {
	return m.server
}

// Check pings once and updates the reported status.
func (m *Monitor) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	err := m.pinger.Ping(ctx)
	if err != nil {
		if m.serving {
			m.logger.Warn("storage unreachable, reporting NOT_SERVING", zap.Error(err))
		}
		m.serving = false
		m.set(grpc_health_v1.HealthCheckResponse_NOT_SERVING)
		return err
	}

	if !m.serving {
		m.logger.Info("storage reachable, reporting SERVING")
	}
	m.serving = true
	m.set(grpc_health_v1.HealthCheckResponse_SERVING)
	return nil
}

// Run checks immediately and then every interval until ctx is done, when the
// status is switched to NOT_SERVING for good.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	_ = m.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			m.server.Shutdown()
			return
		case <-ticker.C:
			_ = m.Check(ctx)
		}
	}
}

func (m *Monitor) set(status grpc_health_v1.HealthCheckResponse_ServingStatus) {
	m.server.SetServingStatus("", status)
	m.server.SetServingStatus(ServiceName, status)
}

// NewGRPCServer returns a traced gRPC server exposing the monitor's health
// service and reflection for grpcurl.
func NewGRPCServer(m *Monitor) *grpc.Server {
	s := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	grpc_health_v1.RegisterHealthServer(s, m.Server())
	reflection.Register(s)
	return s
}
