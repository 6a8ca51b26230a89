package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/the-monkeys/fraud_support/config"
	"github.com/the-monkeys/fraud_support/fakeapi"
	"github.com/the-monkeys/fraud_support/logger"
	"go.uber.org/zap"
)

func printBanner(cfg *config.Config) {
	banner := "\n" +
		"┌────────────────────────────────────────────────────────────┐\n" +
		"│   Cyber Fraud Support - stub case API                      │\n" +
		"│   Status   : ONLINE                                        │\n" +
		"│   HTTP     : http://" + cfg.Stub.HTTP + "\n" +
		"│   Env      : " + cfg.AppEnv + "\n" +
		"│   Victim   : " + fakeapi.DemoVictimPhone + "  Police: " + fakeapi.DemoPolicePhone + "  Bank: " + fakeapi.DemoBankPhone + "\n" +
		"│   Tip      : export LOG_LEVEL=debug to see issued OTPs     │\n" +
		"└────────────────────────────────────────────────────────────┘\n"
	fmt.Print(banner)
}

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	log := logger.ZapForService("fraud_stub_api")
	defer logger.Sync()

	gin.SetMode(gin.ReleaseMode)

	stub, err := fakeapi.New(cfg, log)
	if err != nil {
		log.Fatalw("cannot build stub backend", "err", err)
	}

	printBanner(cfg)
	launchServer(context.Background(), cfg, stub.Handler(), log)
}

func launchServer(ctx context.Context, cfg *config.Config, handler http.Handler, log *zap.SugaredLogger) {
	srv := &http.Server{
		Addr:           cfg.Stub.HTTP,
		Handler:        handler,
		MaxHeaderBytes: 1 << 20,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
	}

	go func() {
		log.Infow("http listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorw("http server start failed", "err", err)
			panic(err)
		}
	}()

	// Listen to SIGINT and SIGTERM signals
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)

	select {
	case <-ctx.Done():
	case <-ch:
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("http shutdown error", "err", err)
	}
	log.Infow("stub api shutdown complete")
}
