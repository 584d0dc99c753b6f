package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/rishi7822/Finalproject/pkg/logger"
)

type Config struct {
	HttpPort        string
	GrpcPort        string
	ShutdownTimeout time.Duration
}

type App struct {
	httpServer      *http.Server
	httpListener    net.Listener
	grpcServer      *grpc.Server
	grpcListener    net.Listener
	shutdownTimeout time.Duration
	background      []func(ctx context.Context)
}

func New(cfg Config, httpHandler http.Handler, grpcServer *grpc.Server) (*App, error) {
	httpLis, err := net.Listen("tcp", ":"+cfg.HttpPort)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on http port %s: %w", cfg.HttpPort, err)
	}

	grpcLis, err := net.Listen("tcp", ":"+cfg.GrpcPort)
	if err != nil {
		httpLis.Close()
		return nil, fmt.Errorf("failed to listen on grpc port %s: %w", cfg.GrpcPort, err)
	}

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &App{
		httpServer: &http.Server{
			Handler:           httpHandler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		httpListener:    httpLis,
		grpcServer:      grpcServer,
		grpcListener:    grpcLis,
		shutdownTimeout: timeout,
	}, nil
}

// Go registers fn to run alongside the servers. Its context is cancelled on
// shutdown.
func (a *App) Go(fn func(ctx context.Context)) {
	a.background = append(a.background, fn)
}

func (a *App) HTTPAddr() net.Addr { return a.httpListener.Addr() }

func (a *App) GRPCAddr() net.Addr { return a.grpcListener.Addr() }

// Run starts the servers and blocks until SIGINT or SIGTERM.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts the servers and blocks until ctx is done or a server
// fails, then shuts both down gracefully.
func (a *App) RunContext(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() {
		logger.Info("Starting HTTP Server", zap.String("addr", a.httpListener.Addr().String()))
		if err := a.httpServer.Serve(a.httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	go func() {
		logger.Info("Starting gRPC Server", zap.String("addr", a.grpcListener.Addr().String()))
		if err := a.grpcServer.Serve(a.grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	bgCtx, cancelBg := context.WithCancel(context.Background())
	defer cancelBg()
	for _, fn := range a.background {
		go fn(bgCtx)
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutting down server...")
	case runErr = <-errCh:
		logger.Error("Server failure, shutting down", zap.Error(runErr))
	}
	cancelBg()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP Server forced to shutdown", zap.Error(err))
	}

	stopped := make(chan struct{})
	go func() {
		a.grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-shutdownCtx.Done():
		a.grpcServer.Stop()
	}

	logger.Info("Server exited properly")
	return runErr
}
