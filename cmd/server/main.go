package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	persistlog "hexglobe.ai/internal/persistence/log"
	"hexglobe.ai/internal/sim/tuning"
	"hexglobe.ai/internal/transport/observer"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		configDir  = flag.String("configs", "./configs", "config directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		worldID    = flag.String("world", "", "world id override (default: tuning world_id)")
		level      = flag.Int("level", 0, "subdivision level override (0 keeps tuning)")
		rivers     = flag.Int("rivers", -1, "river count override (-1 keeps tuning)")
		disableDB  = flag.Bool("disable_db", false, "disable the generation cache index")

		snapPath = flag.String("snapshot", "", "path to snapshot to load instead of the cache (optional)")
		savePath = flag.String("save", "", "write the final world, units included, to this path on exit (optional)")

		allowRemote = flag.Bool("allow_remote", false, "serve viewer endpoints to non-loopback clients")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.LoadOrDefaults(tp)
	if err != nil {
		logger.Fatalf("load tuning: %v", err)
	}
	if *worldID != "" {
		tune.WorldID = *worldID
	}
	if *level > 0 {
		tune.SubdivisionLevel = *level
	}
	if *rivers >= 0 {
		tune.RiverCount = *rivers
	}
	cfg, err := tune.GenConfig()
	if err != nil {
		logger.Fatalf("tuning: %v", err)
	}

	worldDir := filepath.Join(*dataDir, "worlds", cfg.ID)
	_ = os.MkdirAll(worldDir, 0o755)

	idx, err := openWorldIndex(*dataDir, *disableDB)
	if err != nil {
		logger.Fatalf("open index: %v", err)
	}
	if idx != nil {
		defer idx.Close()
	}

	ctx, cancel := signalContext()
	defer cancel()

	res, err := loadOrGenerate(ctx, cfg, worldDir, strings.TrimSpace(*snapPath), idx, logger)
	if err != nil {
		logger.Fatalf("world: %v", err)
	}
	w := res.World
	logger.Printf("world %s ready (%s from %s in %s) digest=%s", w.ID(), res.Source, res.Path, res.Duration, w.Digest())

	reports := persistlog.NewReportLogger(worldDir)
	defer reports.Close()
	if err := recordRun(res, idx, reports); err != nil {
		logger.Printf("report: %v", err)
	}
	events := persistlog.NewEventLogger(worldDir)
	defer events.Close()
	w.SetEventSink(events)

	obsSrv := observer.NewServer(w, logger)
	obsSrv.AllowRemote = *allowRemote

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", metricsHandler(w, obsSrv, idx))
	mux.HandleFunc("/v1/bootstrap", obsSrv.BootstrapHandler())
	mux.HandleFunc("/v1/ws", obsSrv.WSHandler())
	if envBool("HG_ENABLE_PPROF_HTTP", false) {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// The world loop outlives the HTTP server so the final save can go
	// through it; the shutdown goroutine stops it.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := w.Run(context.Background()); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.Printf("listening on %s", *addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		defer w.Stop()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		err := srv.Shutdown(ctx2)
		if p := strings.TrimSpace(*savePath); p != "" {
			if serr := checkpoint(ctx2, w, p); serr != nil {
				logger.Printf("save %s: %v", p, serr)
			} else {
				logger.Printf("saved world to %s", p)
			}
		}
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Printf("server stopped: %v", err)
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

func envBool(name string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}
