package main

import (
	"flag"
	"fmt"
	"os"

	"FinSignal/internal/di"
	"FinSignal/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	checkOnly := flag.Bool("check", false, "validate configuration and dependency wiring, then exit")
	flag.Parse()

	if err := run(*configPath, *checkOnly); err != nil {
		fmt.Fprintf(os.Stderr, "finsignal: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, checkOnly bool) error {
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("initialize app: %w", err)
	}
	if checkOnly {
		fmt.Printf("config ok: env=%s source=%s symbols=%v timeframes=%v\n",
			cfg.Environment, cfg.Source.Type, cfg.Scanner.Symbols, cfg.Analysis.Timeframes)
		return nil
	}

	// Blocks until SIGINT or SIGTERM.
	return app.Run()
}
