package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ohowland/dfl_launcher/internal/pkg/config"
	"github.com/ohowland/dfl_launcher/internal/pkg/datastreams"
	"github.com/ohowland/dfl_launcher/internal/pkg/root"
	"github.com/ohowland/dfl_launcher/internal/pkg/webservice"
	"github.com/viant/afs"
)

const defaultPort = 8080

func main() {
	configPath := flag.String("config", "./config/launcher.json", "launcher configuration file")
	serve := flag.Bool("serve", false, "serve the results over HTTP once the run completes")
	flag.Parse()

	log.Println("[Main] Starting DynaFlow Launcher v0.1.0")
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Println("[Main] Loading Configuration")
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("[Main] ", err)
	}

	log.Println("[Main] Assembling System")
	system, err := root.NewSystem(cfg, afs.New())
	if err != nil {
		panic(err)
	}

	log.Println("[Main] Linking Datastreams")
	handlers, err := datastreams.New(cfg.Datastreams, system)
	if err != nil {
		panic(err)
	}
	group := datastreams.Start(handlers)

	log.Println("[Main] Running")
	runErr := system.Run(ctx)
	group.Wait()
	if runErr != nil {
		log.Println("[Main] Run failed:", runErr)
		os.Exit(1)
	}

	if !*serve {
		log.Println("[Main] Stopping system")
		return
	}

	port := defaultPort
	if cfg.Datastreams.Web != nil {
		port = cfg.Datastreams.Web.Port
	}
	router := webservice.NewRouter(system, system.Metrics().Gatherer())
	if err := webservice.Serve(ctx, port, router); err != nil {
		log.Fatal("[Main] ", err)
	}
	log.Println("[Main] Stopping system")
}
