package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tbxark/formpilot/config"
)

func main() {
	conf := flag.String("config", "config.json", "path to optional JSON config file")
	pdf := flag.String("pdf", "", "chat mode: local PDF to upload and fill")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [serve|chat]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*conf)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mode := flag.Arg(0)
	switch mode {
	case "", "serve":
		err = serve(ctx, cfg)
	case "chat":
		err = chat(ctx, cfg, *pdf)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		slog.Error("formpilot stopped", "mode", mode, "err", err)
		os.Exit(1)
	}
}
