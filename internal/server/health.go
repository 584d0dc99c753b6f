package server

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// SessionServiceName is the gRPC health service that tracks the wallet
// connection. The empty service name reports the process itself.
const SessionServiceName = "wallet.Session"

// SessionHealth mirrors the wallet connection into a gRPC health server.
type SessionHealth struct {
	hs        *health.Server
	connected func() bool
	interval  time.Duration
}

func NewSessionHealth(connected func() bool, interval time.Duration) *SessionHealth {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	s := &SessionHealth{
		hs:        health.NewServer(),
		connected: connected,
		interval:  interval,
	}
	s.hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.Update()
	return s
}

// Register adds the health service to srv.
func (s *SessionHealth) Register(srv *grpc.Server) {
	healthpb.RegisterHealthServer(srv, s.hs)
}

func (s *SessionHealth) Server() *health.Server {
	return s.hs
}

// Update sets the session status from the current connection state.
func (s *SessionHealth) Update() {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if s.connected() {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.hs.SetServingStatus(SessionServiceName, status)
}

// Watch updates the status every interval until ctx is done, then marks
// every service NOT_SERVING.
func (s *SessionHealth) Watch(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.hs.Shutdown()
			return
		case <-ticker.C:
			s.Update()
		}
	}
}
