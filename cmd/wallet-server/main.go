package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/rishi7822/Finalproject/internal/chain"
	"github.com/rishi7822/Finalproject/internal/provider"
	"github.com/rishi7822/Finalproject/internal/server"
	"github.com/rishi7822/Finalproject/internal/session"
	"github.com/rishi7822/Finalproject/pkg/config"
	"github.com/rishi7822/Finalproject/pkg/errno"
	"github.com/rishi7822/Finalproject/pkg/logger"
	"github.com/rishi7822/Finalproject/pkg/monitor"
	"github.com/rishi7822/Finalproject/pkg/ratelimit"
)

func main() {
	// 0. Config
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "%v: %v\n", errno.ErrConfig, err)
		os.Exit(1)
	}
	cfg := config.Global

	// 1. Logger
	logger.Init(cfg.App.Env)
	defer logger.Sync()
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 2. Solana RPC
	endpoint, err := chain.ResolveEndpoint(cfg.Solana.Network, cfg.Solana.RpcUrl)
	if err != nil {
		logger.Fatal("invalid solana endpoint", zap.Error(err))
	}
	rpcClient := chain.New(endpoint,
		chain.WithConfirmTimeout(cfg.Solana.ConfirmTimeout),
		chain.WithPollInterval(cfg.Solana.PollInterval),
		chain.WithLogger(logger.Log),
	)
	logger.Info("solana rpc", zap.String("network", cfg.Solana.Network), zap.String("endpoint", endpoint))

	// 3. Wallet provider. Without a keystore the page reports a missing wallet.
	var walletProvider session.WalletProvider
	if _, err := os.Stat(cfg.Wallet.KeystorePath); err == nil {
		w := provider.NewKeystoreWallet(cfg.Wallet.KeystorePath,
			provider.FixedOrPrompt(cfg.Wallet.Password, "Keystore password: "),
			provider.WithDerivationPath(cfg.Wallet.DerivationPath),
			provider.WithLogger(logger.Log),
		)
		if cfg.Wallet.AutoConnect {
			if err := w.Connect(context.Background()); err != nil {
				logger.Warn("auto connect failed", zap.Error(err))
			}
		}
		walletProvider = w
	} else {
		logger.Warn("keystore not found, wallet provider unavailable",
			zap.String("path", cfg.Wallet.KeystorePath), zap.Error(err))
	}

	// 4. Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// 5. Session
	ctrl := session.New(walletProvider, rpcClient,
		session.WithLogger(logger.Log),
		session.WithMetrics(monitor.NewBusinessMetrics(reg)),
	)
	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := ctrl.Initialize(initCtx); err != nil && !errors.Is(err, errno.ErrProviderAbsent) {
		logger.Warn("session initialization incomplete", zap.Error(err))
	}
	cancel()

	// 6. HTTP Router
	r := server.NewHTTPRouter(server.RouterDeps{
		Session:  ctrl,
		Registry: reg,
		Limiter:  ratelimit.New(cfg.App.RateLimitRPS, cfg.App.RateLimitBurst, 0),
		Logger:   logger.Log,
	})

	// 7. gRPC Server
	grpcServer := grpc.NewServer()
	health := server.NewSessionHealth(func() bool { return ctrl.View().Connected }, 5*time.Second)
	health.Register(grpcServer)

	// 8. Start
	app, err := server.New(server.Config{
		HttpPort: cfg.App.HttpPort,
		GrpcPort: cfg.App.GrpcPort,
	}, r, grpcServer)
	if err != nil {
		logger.Fatal("failed to start application", zap.Error(err))
	}
	app.Go(health.Watch)

	if err := app.Run(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}
