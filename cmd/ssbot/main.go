// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"go.mau.fi/ssbot"
	"go.mau.fi/ssbot/config"
	"go.mau.fi/ssbot/credstore"
	"go.mau.fi/ssbot/health"
	"go.mau.fi/ssbot/provision"
	"go.mau.fi/ssbot/schedule"
	"go.mau.fi/ssbot/store/sqlstore"
	"go.mau.fi/ssbot/transport/console"
	"go.mau.fi/ssbot/transport/whatsapp"
	"go.mau.fi/ssbot/types"
	ssLog "go.mau.fi/ssbot/util/log"
)

// transport is what main needs from a chat transport on top of ssbot.Messenger.
type transport interface {
	ssbot.Messenger
	start(ctx context.Context, handler func(evt any)) error
	stop()
}

type consoleTransport struct {
	*console.Client
	in        io.Reader
	handlerID uint32
}

func (ct *consoleTransport) start(ctx context.Context, handler func(evt any)) error {
	ct.handlerID = ct.AddEventHandler(handler)
	go func() {
		err := ct.Run(ctx, ct.in)
		if err != nil && !errors.Is(err, context.Canceled) {
			ct.Log.Errorf("Failed to read input: %v", err)
		}
	}()
	return ct.FetchGroupContacts(ctx)
}

func (ct *consoleTransport) stop() {
	ct.RemoveEventHandler(ct.handlerID)
}

type whatsappTransport struct {
	*whatsapp.Client
}

func (wt whatsappTransport) start(ctx context.Context, handler func(evt any)) error {
	wt.AddEventHandler(handler)
	return wt.Connect(ctx)
}

func (wt whatsappTransport) stop() {
	wt.Disconnect()
}

func main() {
	err := run()
	if errors.Is(err, pflag.ErrHelp) {
		return
	} else if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Stamp}).
		With().Timestamp().Logger().
		Level(cfg.ZerologLevel())
	log.Info().Object("config", cfg).Msg("Starting ssbot")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	container, err := sqlstore.New(ctx, cfg.Database.Dialect, cfg.Database.URI, log.With().Str("component", "database").Logger())
	if err != nil {
		return err
	}
	defer func() {
		_ = container.Close()
	}()

	monitor := health.NewMonitor(ssLog.Zerolog(log.With().Str("component", "health").Logger()))
	monitor.AddChecker(health.NewLivenessChecker(""))
	monitor.AddChecker(health.NewDatabaseChecker(container, ""))

	var messenger transport
	switch cfg.Transport {
	case config.TransportWhatsApp:
		wa, err := whatsapp.New(ctx, whatsapp.Options{
			Dialect:    cfg.Database.Dialect,
			Address:    cfg.Database.URI,
			Remarks:    container,
			RemarkName: cfg.Bot.RemarkName,
			UploadDir:  cfg.Media.UploadDir,
			Log:        log,
		})
		if err != nil {
			return err
		}
		messenger = whatsappTransport{wa}
		monitor.AddChecker(health.NewTransportChecker(wa, "whatsapp"))
	default:
		self := types.SelfInfo{UserID: "ssbot", NickName: "ssbot", RemarkName: cfg.Bot.RemarkName}
		cli := console.NewClient(os.Stdout, self, container, ssLog.Zerolog(log.With().Str("component", "console").Logger()))
		messenger = &consoleTransport{Client: cli, in: os.Stdin}
	}

	proc, err := ssbot.NewProcessor(ssbot.Options{
		Messenger:             messenger,
		Credentials:           credstore.New(cfg.SS.UsersFile, cfg.SS.TrafficFile),
		Provisioner:           provision.NewScript(cfg.SS.AdminScript, ssLog.Zerolog(log.With().Str("component", "provision").Logger())),
		IPResolver:            provision.NewProber(cfg.Probe.Address),
		Store:                 container,
		MinPasswordChangePort: cfg.SS.MinPasswordChangePort,
		ResetDay:              cfg.SS.ResetDay,
		AssetDir:              cfg.Media.TestDir,
		Log:                   ssLog.Zerolog(log.With().Str("component", "processor").Logger()),
	})
	if err != nil {
		return err
	}
	err = proc.CleanDB(ctx)
	if err != nil {
		return err
	}

	err = messenger.start(ctx, proc.HandleEvent)
	if err != nil {
		return fmt.Errorf("failed to start %s transport: %w", cfg.Transport, err)
	}
	defer messenger.stop()

	poller := schedule.NewPoller(proc.RefreshRoster, ssLog.Zerolog(log.With().Str("component", "schedule").Logger()))
	poller.Interval = cfg.Schedule.Interval
	go poller.Run(ctx)

	if cfg.Health.Address != "" {
		go func() {
			err := monitor.Serve(ctx, cfg.Health.Address)
			if err != nil {
				log.Err(err).Msg("Health endpoint failed")
			}
		}()
	}

	log.Info().Str("transport", cfg.Transport).Msg("ssbot is running")
	<-ctx.Done()
	log.Info().Msg("Shutting down")
	return nil
}
