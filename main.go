package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/vadiminshakov/gowal"
	"github.com/vadiminshakov/sasaft/config"
	"github.com/vadiminshakov/sasaft/core/dto"
	"github.com/vadiminshakov/sasaft/core/engine"
	"github.com/vadiminshakov/sasaft/io/devices"
	"github.com/vadiminshakov/sasaft/io/gateway/grpc/server"
	"github.com/vadiminshakov/sasaft/io/ledger"
	"github.com/vadiminshakov/sasaft/io/store"
)

func main() {
	conf := config.Get()
	setupLogging(conf.LogLevel)

	m, err := start(conf)
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	m.stop()
}

func setupLogging(level string) {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC822,
	})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

// machine is a running EGM: engine, peripherals and host link.
type machine struct {
	engine *engine.Engine
	server *server.Server
	ledger *ledger.Ledger
	cancel context.CancelFunc
	closer []func()
}

func start(conf *config.Config) (*machine, error) {
	m := &machine{
		ledger: ledger.New(dto.Balances{Amounts: dto.Amounts{Cashable: conf.OpeningCredits}}),
	}

	var st engine.Store
	if conf.PersistHistory {
		s, closeStore, err := openStore(conf.DataDir)
		if err != nil {
			return nil, err
		}
		st = s
		m.closer = append(m.closer, closeStore)
	}

	e, err := engine.New(engine.Config{
		Address:         byte(conf.Address),
		AssetNumber:     uint32(conf.AssetNumber),
		MinLockTimeout:  uint16(conf.MinLockTimeout),
		ReceiptDefaults: conf.ReceiptDefaults(),
		Features:        conf,
		Bank:            m.ledger,
		Round:           m.ledger,
		Cashout:         devices.NewHostCashout(),
		Printer:         devices.NewPrinter(conf.PrinterOnline),
		AutoPlay:        devices.NewAutoPlay(true),
		Disable:         devices.NewDisable(),
		Ticketing:       devices.NewTicketing(uint32(conf.RestrictedExpiration), nil),
		Store:           st,
	})
	if err != nil {
		m.close()
		return nil, errors.Wrap(err, "build engine")
	}
	if err := e.Restore(); err != nil {
		m.close()
		return nil, errors.Wrap(err, "restore engine")
	}
	m.engine = e

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	e.Start(ctx)

	m.server, err = server.New(conf.HostAddr, conf.Whitelist, e)
	if err != nil {
		m.stop()
		return nil, err
	}
	if err := m.server.Run(server.WhiteListChecker, server.RequestLogger); err != nil {
		m.stop()
		return nil, err
	}

	log.Infof("machine %d at address %d ready", conf.AssetNumber, conf.Address)
	return m, nil
}

func openStore(dir string) (*store.Store, func(), error) {
	w, err := gowal.NewWAL(gowal.Config{
		Dir:              filepath.Join(dir, "wal"),
		Prefix:           "wal_",
		SegmentThreshold: 1024 * 1024,
		MaxSegments:      100,
		IsInSyncDiskMode: true,
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "open wal")
	}

	s, recovery, err := store.New(w, filepath.Join(dir, "badger"))
	if err != nil {
		w.Close()
		return nil, nil, err
	}
	log.Infof("store recovered, %d wal entries replayed", recovery.Replayed)

	return s, func() {
		if err := s.Close(); err != nil {
			log.Errorf("failed to close store: %v", err)
		}
		w.Close()
	}, nil
}

// stop shuts the host link first so no poll races the engine shutdown.
func (m *machine) stop() {
	if m.server != nil {
		m.server.Stop()
	}
	if m.cancel != nil {
		m.cancel()
	}
	if m.engine != nil {
		m.engine.Close()
	}
	m.close()
}

func (m *machine) close() {
	for _, f := range m.closer {
		f()
	}
	m.closer = nil
}
