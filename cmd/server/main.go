package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"gridmerge.app/internal/persistence/indexdb"
	persistlog "gridmerge.app/internal/persistence/log"
	"gridmerge.app/internal/sim/game"
	"gridmerge.app/internal/sim/tuning"
	"gridmerge.app/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		seed       = flag.Int64("seed", 0, "world seed override (0 keeps the tuning value)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite results index")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", *tuningPath)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}
	if *seed != 0 {
		tune.Seed = *seed
	}

	audit := persistlog.NewActionLogger(*dataDir)
	defer audit.Close()

	var results game.ResultsRecorder
	if !*disableDB {
		idx, err := indexdb.Open(filepath.Join(*dataDir, "results.db"))
		if err != nil {
			logger.Fatalf("open results index: %v", err)
		}
		defer idx.Close()
		results = idx
	}

	ctx, cancel := signalContext()
	defer cancel()

	r := chi.NewRouter()
	r.Get("/healthz", func(rw http.ResponseWriter, req *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})
	r.Get("/v1/params", func(rw http.ResponseWriter, req *http.Request) {
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(map[string]any{
			"protocol_version": strings.TrimSpace(tune.ProtocolVersion),
			"seed":             tune.Seed,
			"cell_size":        tune.CellSize,
			"spawn_chance":     tune.SpawnChance,
			"target_value":     tune.TargetValue,
		})
	})
	r.Get("/v1/ws", ws.NewServer(tune, logger, audit, results).Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s (seed=%d)", *addr, tune.Seed)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
