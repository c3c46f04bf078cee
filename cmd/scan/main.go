package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"FinSignal/internal/di"
	"FinSignal/internal/services/analysis"
	"FinSignal/internal/usecase"
	"FinSignal/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	symbol := flag.String("symbol", "", "analyze a single symbol without storing the result")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall deadline")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	deps, err := di.InitializeScanner(cfg)
	if err != nil {
		log.Fatalf("scanner initialization failed: %v", err)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			log.Printf("close: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *symbol != "" {
		out := deps.Scanner.Analyze(ctx, *symbol)
		if out.HasSignal() {
			fmt.Println(analysis.FormatSignal(*out.Signal))
			return
		}
		fmt.Printf("%s: no signal (%s)\n", *symbol, out.Reason)
		return
	}

	if err := deps.Store.Init(ctx); err != nil {
		log.Fatalf("init signal store: %v", err)
	}
	res, err := deps.Scanner.ScanAll(ctx, nil)
	if errors.Is(err, usecase.ErrScanInProgress) {
		fmt.Println("another scan is running")
		return
	}
	if err != nil {
		log.Printf("scan failed: %v", err)
		os.Exit(1)
	}

	for _, out := range res.Outcomes {
		if !out.HasSignal() {
			fmt.Printf("%s: no signal (%s)\n", out.Symbol, out.Reason)
		}
	}
	for _, s := range res.Signals {
		fmt.Println(analysis.FormatSignal(s))
	}
	fmt.Printf("%d signal(s) in %s\n", len(res.Signals), res.FinishedAt.Sub(res.StartedAt).Round(time.Millisecond))
}
