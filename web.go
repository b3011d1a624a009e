package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"

	"github.com/Seednode/liarparty/internal/crypto"
	"github.com/Seednode/liarparty/internal/game"
	"github.com/Seednode/liarparty/internal/storage"
)

const (
	logDate       string        = `2006-01-02T15:04:05.000-07:00`
	timeout       time.Duration = 10 * time.Second
	historyBuffer int           = 64
)

func securityHeaders(cfg *Config, w http.ResponseWriter) {
	w.Header().Set("Cross-Origin-Embedder-Policy", "require-corp")
	w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
	w.Header().Set("Cross-Origin-Resource-Policy", "same-site")
	w.Header().Set("Permissions-Policy", "geolocation=(), midi=(), sync-xhr=(), microphone=(), camera=(), magnetometer=(), gyroscope=(), fullscreen=(), payment=()")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "default-src 'self'")

	if cfg.scheme() == "https" {
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
	}
}

func realIP(r *http.Request) string {
	host, port, _ := net.SplitHostPort(r.RemoteAddr)
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		if net.ParseIP(ip) != nil {
			host = ip
		}
	} else if ip := r.Header.Get("X-Real-IP"); ip != "" {
		if net.ParseIP(ip) != nil {
			host = ip
		}
	}
	if net.ParseIP(host) != nil && strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port != "" {
		return host + ":" + port
	}
	return host
}

func serveVersion(cfg *Config, log zerolog.Logger) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		startTime := time.Now()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)
		w.WriteHeader(http.StatusOK)

		written, err := w.Write([]byte("liarparty v" + releaseVersion + "\n"))
		if err != nil {
			log.Debug().Err(err).Msg("write failed")
			return
		}

		logServe(log, "version", r, written, startTime)
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

func serveHealthCheck(cfg *Config, db pinger, log zerolog.Logger) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)

		if err := db.Ping(r.Context()); err != nil {
			log.Error().Err(err).Msg("health check failed")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("Unavailable\n"))
			return
		}

		_, _ = w.Write([]byte("Ok\n"))
	}
}

// app is everything one running server owns.
type app struct {
	cfg         *Config
	log         zerolog.Logger
	db          *storage.DB
	hub         *Hub
	recorder    *storage.Recorder
	coordinator *game.Coordinator
	mux         *httprouter.Router
}

func newApp(ctx context.Context, cfg *Config, log zerolog.Logger) (*app, error) {
	cfg.prefix = strings.TrimSuffix(cfg.prefix, "/")

	db, err := storage.Open(ctx, cfg.database, log)
	if err != nil {
		return nil, err
	}

	secret := cfg.jwtSecret
	if secret == "" {
		secret = uuid.NewString() + uuid.NewString()
		log.Warn().Msg("no --jwt-secret set, login tokens will not survive a restart")
	}

	a := &app{
		cfg:      cfg,
		log:      log,
		db:       db,
		hub:      newHub(log),
		recorder: storage.NewRecorder(db, historyBuffer, log),
		mux:      httprouter.New(),
	}

	issuer := crypto.NewIssuer(secret, cfg.tokenTTL)

	a.coordinator = game.NewCoordinator(a.hub, db, game.Options{
		Settings: cfg.settings(),
		Recorder: a.recorder,
		Logger:   log,
	})

	a.mux.PanicHandler = func(w http.ResponseWriter, r *http.Request, i any) {
		log.Error().Any("panic", i).Str("path", r.URL.Path).Msg("handler panicked")
		writeError(cfg, w, errors.New("panic"))
	}

	a.mux.GET(cfg.prefix+"/healthz", serveHealthCheck(cfg, db, log))
	a.mux.GET(cfg.prefix+"/version", serveVersion(cfg, log))

	if cfg.profile {
		registerProfileHandlers(cfg, a.mux, log)
	}

	registerLiarGame(&liarServer{
		cfg:         cfg,
		coordinator: a.coordinator,
		hub:         a.hub,
		tokens:      issuer,
		log:         log.With().Str("module", "ws").Logger(),
	}, a.mux)

	registerAccounts(&authServer{
		cfg:      cfg,
		accounts: storage.NewUsers(db, crypto.NewArgon2idHasher(1, 64*1024, 32, 16, 2)),
		tokens:   issuer,
		history:  db,
		log:      log.With().Str("module", "http").Logger(),
	}, a.mux)

	return a, nil
}

// run writes history until ctx ends; the returned channel closes once the
// queue has been flushed.
func (a *app) run(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		a.recorder.Run(ctx)
	}()
	return done
}

func (a *app) close() {
	a.hub.closeAll()
	if err := a.db.Close(); err != nil {
		a.log.Error().Err(err).Msg("could not close database")
	}
}

func ServePage(ctx context.Context, cfg *Config) error {
	var err error

	timeZone := os.Getenv("TZ")
	if timeZone != "" {
		time.Local, err = time.LoadLocation(timeZone)
		if err != nil {
			return err
		}
	}

	log := newLogger(cfg, nil)

	log.Info().Str("version", releaseVersion).Msg("starting liarparty")

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	recorderDone := a.run(ctx)

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.bind, strconv.Itoa(cfg.port)),
		Handler:           a.mux,
		IdleTimeout:       10 * time.Minute,
		ReadTimeout:       timeout,
		ReadHeaderTimeout: timeout,
		WriteTimeout:      timeout,
	}

	go func() {
		var err error

		log.Info().Msgf("listening on %s://%s%s/", cfg.scheme(), srv.Addr, cfg.prefix)

		if cfg.tlsKey != "" && cfg.tlsCert != "" {
			err = srv.ListenAndServeTLS(cfg.tlsCert, cfg.tlsKey)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	a.hub.closeAll()
	<-recorderDone
	a.close()

	return nil
}
