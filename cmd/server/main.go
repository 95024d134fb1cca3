package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"volley/server"
	"volley/server/effects/contract"
	"volley/server/internal/physics"
	"volley/server/internal/sim"
	"volley/server/logging"
	"volley/server/logging/sinks"
)

func main() {
	var (
		addr     = flag.String("addr", ":8080", "listen address")
		tickRate = flag.Int("tick-rate", 30, "simulation ticks per second")
		logJSON  = flag.String("log-json", "", "path for newline-delimited JSON events")
		seed     = flag.Int64("seed", time.Now().UnixNano(), "rng seed for trigger-chance rolls")
	)
	flag.Parse()

	logCfg := logging.DefaultConfig()
	named := []logging.NamedSink{{Name: "console", Sink: sinks.NewConsoleSink(os.Stdout)}}
	if *logJSON != "" {
		file, err := os.OpenFile(*logJSON, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("open json log: %v", err)
		}
		defer file.Close()
		logCfg.EnabledSinks = append(logCfg.EnabledSinks, "json")
		logCfg.JSON.FilePath = *logJSON
		named = append(named, logging.NamedSink{Name: "json", Sink: sinks.NewJSON(file, logCfg.JSON.FlushInterval)})
	}
	router, err := logging.NewRouter(logging.SystemClock{}, logCfg, named)
	if err != nil {
		log.Fatalf("logging router: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		router.Close(ctx)
	}()

	templates := contract.BuiltInRegistry()
	if err := templates.Validate(); err != nil {
		log.Fatalf("effect templates: %v", err)
	}

	collisionWorld := physics.NewWorld()
	seedArena(collisionWorld)

	cfg := sim.DefaultConfig()
	cfg.TickRate = *tickRate
	world := sim.NewWorld(cfg, collisionWorld, router, logging.SystemClock{}, rand.New(rand.NewSource(*seed)))

	loop := sim.NewLoop(world, templates, sim.LoopConfig{
		TickRate:        cfg.TickRate,
		CatchupMaxTicks: cfg.CatchupMaxTicks,
		CommandCapacity: 512,
		PerActorLimit:   32,
	}, sim.LoopHooks{})

	hub := server.NewHub(loop, templates, router)
	loop.SetAfterStep(hub.Broadcast)

	mux := http.NewServeMux()
	hub.Routes(mux)
	httpServer := &http.Server{Addr: *addr, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return loop.Run(ctx)
	})
	group.Go(func() error {
		log.Printf("listening on %s", *addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && err != context.Canceled {
		log.Fatalf("server failed: %v", err)
	}
}

// seedArena places a handful of static obstacles and practice dummies so a
// fresh server has something to shoot at.
func seedArena(world *physics.World) {
	world.AddObstacle(physics.Obstacle{ID: "pillar-north", Center: sim.Vec3{Z: 25}, Radius: 2, Mask: ^uint32(0)})
	world.AddObstacle(physics.Obstacle{ID: "pillar-east", Center: sim.Vec3{X: 25}, Radius: 2, Mask: ^uint32(0)})
	world.AddActor(&physics.Actor{ID: "dummy-a", Pos: sim.Vec3{X: 6, Z: 14}, Radius: 1, Mask: ^uint32(0), Health: 500})
	world.AddActor(&physics.Actor{ID: "dummy-b", Pos: sim.Vec3{X: -6, Z: 14}, Radius: 1, Mask: ^uint32(0), Health: 500})
}
