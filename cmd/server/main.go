package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/havenapp/haven-backend/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("failed to initialize app: %v\n", err)
		os.Exit(1)
	}

	a.Start()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Run(":" + a.Cfg.Port)
	}()

	select {
	case <-ctx.Done():
		a.Log.Info("shutdown signal received")
		a.Close()
	case err := <-errCh:
		a.Close()
		if err != nil {
			fmt.Printf("server exited: %v\n", err)
			os.Exit(1)
		}
	}
}
