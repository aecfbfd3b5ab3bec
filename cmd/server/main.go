package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/padrino-pos/api/internal/config"
	"github.com/padrino-pos/api/internal/jobs"
	"github.com/padrino-pos/api/internal/ordernum"
	"github.com/padrino-pos/api/internal/router"
	"github.com/padrino-pos/api/internal/service"
	"github.com/padrino-pos/api/internal/store"
	"github.com/padrino-pos/api/internal/ws"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()
	log.Printf("Opened database %s", cfg.DatabasePath)

	// Seed the identifier generator from the historical maximum so ids
	// stay unique across restarts and deletions.
	lastID, err := st.LatestIssuedID(ctx)
	if err != nil {
		log.Fatalf("read latest issued id: %v", err)
	}
	gen := ordernum.New(nil)
	gen.Seed(lastID)

	svc := service.NewOrderService(st, gen, nil)
	if err := svc.Load(ctx); err != nil {
		log.Fatalf("load open orders: %v", err)
	}
	log.Printf("Loaded %d open orders", len(svc.Orders()))

	hub := ws.NewHub()
	go hub.Run()

	autosave := jobs.NewAutosaveJob(svc, cfg.AutosaveSchedule)
	if err := autosave.Start(); err != nil {
		log.Fatalf("start autosave job: %v", err)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router.New(cfg, svc, st, hub),
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}

	// Stop flushes any unsaved edits before the store closes.
	autosave.Stop()
}
