// Command quantapi serves measurement records over HTTP. Records are accepted and
// returned as JSON, in the binary format or sealed, chosen by Content-Type and
// Accept.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chandan-cmd-dev/quant-go/quantconf"
	"github.com/chandan-cmd-dev/quant-go/quantsec"
	"github.com/chandan-cmd-dev/quant-go/store"
	"github.com/chandan-cmd-dev/quant-go/store/s3store"
	"github.com/chandan-cmd-dev/quant-go/store/sqlstore"
	"github.com/chandan-cmd-dev/quant-go/units"
)

func main() {
	var (
		addr     string
		backend  string
		dsn      string
		cfgFile  string
		keyfile  string
		algFlag  string
		kid      string
		logLevel string
	)
	flag.StringVar(&addr, "addr", ":8080", "listen address")
	flag.StringVar(&backend, "store", "memory", "memory | sqlite | postgres | s3")
	flag.StringVar(&dsn, "dsn", "", "sqlite path or postgres DSN (s3 reads QUANT_S3_*)")
	flag.StringVar(&cfgFile, "config", "", "quant config file with extra units")
	flag.StringVar(&keyfile, "keyfile", "", "path to 32-byte key; enables sealed bodies")
	flag.StringVar(&algFlag, "alg", "xchacha", "xchacha | aesgcm")
	flag.StringVar(&kid, "kid", "k1", "key id for sealed responses")
	flag.StringVar(&logLevel, "log-level", "info", "debug | info | warn | error")
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		fatal(slog.Default(), "bad -log-level", err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg, err := loadRegistry(cfgFile)
	if err != nil {
		fatal(logger, "load config", err)
	}
	st, err := openStore(ctx, backend, dsn)
	if err != nil {
		fatal(logger, "open store", err, "store", backend)
	}
	defer func() { _ = st.Close() }()

	opts := []Option{WithLogger(logger), WithRegistry(reg)}
	if keyfile != "" {
		key, err := os.ReadFile(keyfile)
		if err != nil {
			fatal(logger, "read keyfile", err)
		}
		alg, err := quantsec.ParseAlg(algFlag)
		if err != nil {
			fatal(logger, "bad -alg", err)
		}
		opts = append(opts, WithSealing(quantsec.StaticKeyring{kid: trimNewlines(key)}, alg, kid))
		logger.Info("sealed bodies enabled", "alg", alg, "kid", kid)
	}
	srv := newServer(st, opts...)

	hs := &http.Server{Addr: addr, Handler: srv.routes(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = hs.Shutdown(shutdown)
	}()
	logger.Info("listening", "addr", addr, "store", backend)
	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fatal(logger, "serve", err)
	}
}

func fatal(logger *slog.Logger, msg string, err error, args ...any) {
	logger.Error(msg, append(args, "err", err)...)
	os.Exit(1)
}

func loadRegistry(path string) (*units.Registry, error) {
	reg := units.Default()
	if path == "" {
		var ok bool
		if path, ok = quantconf.Find(); !ok {
			return reg, nil
		}
	}
	f, err := quantconf.Load(path)
	if err != nil {
		return nil, err
	}
	if err := f.Register(reg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

func openStore(ctx context.Context, backend, dsn string) (store.Store, error) {
	switch backend {
	case "memory":
		return store.NewMemory(), nil
	case "sqlite":
		return sqlstore.OpenSQLite(ctx, dsn)
	case "postgres":
		return sqlstore.OpenPostgres(ctx, dsn)
	case "s3":
		return s3store.OpenFromEnv(ctx)
	}
	return nil, fmt.Errorf("unknown store %q", backend)
}

func trimNewlines(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}
