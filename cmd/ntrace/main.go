package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/pprof"
	"strconv"
	"syscall"

	"github.com/lukaszgryglicki/ntrace/internal/ntrace"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ntrace.Debug = os.Getenv("DEBUG") != ""
	ntrace.Fast = os.Getenv("FAST") != ""
	ntrace.NeverBVH = os.Getenv("NEVER_BVH") != ""
	ntrace.DumpBVH = os.Getenv("DUMP_BVH") != ""
	ntrace.Resume = os.Getenv("RESUME") != ""
	if w := os.Getenv("WORKERS"); w != "" {
		n, err := strconv.Atoi(w)
		if err != nil {
			return fmt.Errorf("WORKERS: %w", err)
		}
		ntrace.Workers = n
	}

	level := slog.LevelInfo
	if ntrace.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if os.Getenv("PROFILE") != "" {
		f, err := os.Create("cpu.out")
		if err != nil {
			return err
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	cfg := "scenes/cornell.yaml"
	if len(os.Args) > 1 {
		cfg = os.Args[1]
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return ntrace.Run(ctx, cfg)
}
