package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	siteservice "github.com/agrosud-co/site-service"
)

func main() {
	configPath := flag.String("config", "config.yml", "path to the service configuration file")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc, err := siteservice.NewService(ctx, *configPath)
	if err != nil {
		log.Fatalf("failed to build service: %v", err)
	}

	if err := svc.Start(); err != nil {
		log.Fatalf("failed to start service: %v", err)
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	<-signals

	if err := svc.Stop(); err != nil {
		os.Exit(1)
	}
}
