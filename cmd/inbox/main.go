package main

import (
	"chat-inbox/internal"
	"chat-inbox/session"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the store and the session, runs one subcommand and closes
// everything on the way out so the final snapshot is written.
func run(args []string) error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Storage
	store, release, err := internal.OpenStore(config, log)
	if err != nil {
		return err
	}
	defer release()

	// 3. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Session
	s, err := session.New(ctx, session.Options{
		Store:        store,
		Log:          log,
		SeedDemoData: config.SeedDemoData,
	})
	if err != nil {
		return fmt.Errorf("session failed to start: %w", err)
	}
	defer func() {
		if err := s.Close(context.Background()); err != nil {
			log.Error("Closing session failed", "error", err)
		}
	}()

	if config.CurrentUserEmail != "" {
		if me, ok := s.CurrentUser(); !ok || !strings.EqualFold(me.Email, config.CurrentUserEmail) {
			if _, err := s.SignIn(ctx, config.CurrentUserEmail); err != nil {
				return fmt.Errorf("sign in as %s: %w", config.CurrentUserEmail, err)
			}
		}
	}

	// 5. Command
	return newApp(s, os.Stdout, config.LimitList).dispatch(ctx, args)
}
