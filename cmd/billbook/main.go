package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/andy/billbook/internal/cli"
	"github.com/joho/godotenv"
)

func main() {
	// A .env file is optional; it may carry BILLBOOK_DB_KEY or BILLBOOK_CONFIG
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := cli.Execute(ctx)
	if cerr := cli.Close(); err == nil {
		err = cerr
	}
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
