// go-mfrc522
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-mfrc522.
//
// go-mfrc522 is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-mfrc522 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-mfrc522; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

// Command mfrc522rw writes a fixed payload to every data block of each
// MIFARE Classic tag presented to an MFRC522 reader, reads it back and
// prints the result on the console.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ZaparooProject/go-mfrc522"
	"github.com/ZaparooProject/go-mfrc522/console"
	"github.com/ZaparooProject/go-mfrc522/detection"
	// Import all detectors to register them
	_ "github.com/ZaparooProject/go-mfrc522/detection/spi"
	_ "github.com/ZaparooProject/go-mfrc522/detection/uart"
	"github.com/ZaparooProject/go-mfrc522/internal/config"
	"github.com/ZaparooProject/go-mfrc522/internal/virtual"
	"github.com/ZaparooProject/go-mfrc522/polling"
	"github.com/ZaparooProject/go-mfrc522/tagops"
	"github.com/ZaparooProject/go-mfrc522/transport/spi"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/physic"
)

type cliFlags struct {
	configPath   string
	envFile      string
	bus          string
	resetPin     string
	csPin        string
	consolePort  string
	key          string
	keyType      string
	payload      string
	baud         int
	speed        int64
	pollInterval time.Duration
	debug        bool
	simulate     bool
	list         bool
}

func parseFlags(args []string, stderr io.Writer) (*cliFlags, map[string]bool, error) {
	fl := &cliFlags{}
	fs := flag.NewFlagSet("mfrc522rw", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&fl.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&fl.envFile, "env-file", ".env", "File with MFRC522_* variables, ignored when missing")
	fs.StringVar(&fl.bus, "bus", config.DefaultBus, "SPI port (e.g., SPI0.0 or /dev/spidev0.0)")
	fs.StringVar(&fl.resetPin, "reset-pin", config.DefaultResetPin, "GPIO wired to RST, empty for none")
	fs.StringVar(&fl.csPin, "cs-pin", "", "GPIO driven as chip select, empty to use the bus CE line")
	fs.Int64Var(&fl.speed, "spi-speed", 0, "SPI clock in Hz (default 4 MHz)")
	fs.StringVar(&fl.consolePort, "console", "", "Serial port for the console, empty for stdout")
	fs.IntVar(&fl.baud, "baud", config.DefaultBaud, "Console baud rate")
	fs.DurationVar(&fl.pollInterval, "poll-interval", config.DefaultPollInterval, "Interval between tag checks")
	fs.StringVar(&fl.key, "key", mfrc522.DefaultKey.String(), "Access key as 12 hex digits")
	fs.StringVar(&fl.keyType, "key-type", "A", "Key used for authentication: A or B")
	fs.StringVar(&fl.payload, "payload", config.DefaultPayload, "Data written to every block, at most 16 bytes")
	fs.BoolVar(&fl.debug, "debug", false, "Enable debug output")
	fs.BoolVar(&fl.simulate, "simulate", false, "Use a simulated reader with a MIFARE 1K tag")
	fs.BoolVar(&fl.list, "list", false, "List SPI buses and serial ports, then exit")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return fl, set, nil
}

// applyFlags overrides cfg with the flags given on the command line only,
// so file and environment values survive flag defaults
func applyFlags(cfg *config.Config, fl *cliFlags, set map[string]bool) {
	overrides := map[string]func(){
		"bus":           func() { cfg.Reader.Bus = fl.bus },
		"reset-pin":     func() { cfg.Reader.ResetPin = fl.resetPin },
		"cs-pin":        func() { cfg.Reader.CSPin = fl.csPin },
		"spi-speed":     func() { cfg.Reader.SpeedHz = fl.speed },
		"console":       func() { cfg.Console.Port = fl.consolePort },
		"baud":          func() { cfg.Console.Baud = fl.baud },
		"poll-interval": func() { cfg.PollInterval = fl.pollInterval },
		"key":           func() { cfg.Tag.Key = fl.key },
		"key-type":      func() { cfg.Tag.KeyType = fl.keyType },
		"payload":       func() { cfg.Tag.Payload = fl.payload },
		"simulate":      func() { cfg.Simulate = fl.simulate },
	}
	for name, apply := range overrides {
		if set[name] {
			apply()
		}
	}
	if fl.debug {
		cfg.LogLevel = logrus.DebugLevel.String()
	}
}

func loadConfig(fl *cliFlags, set map[string]bool) (*config.Config, error) {
	if err := config.LoadDotEnv(fl.envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(fl.configPath)
	if err != nil {
		return nil, err
	}
	applyFlags(cfg, fl, set)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := cfg.Level(); err == nil {
		log.SetLevel(level)
	}
	return log
}

// newTransport opens the SPI bus, or a simulated reader holding a blank
// MIFARE 1K tag
func newTransport(cfg *config.Config) (mfrc522.Transport, error) {
	if cfg.Simulate {
		transport := mfrc522.NewVirtualTransport(virtual.NewChip(virtual.NewMIFARE1K(nil)))
		transport.SetResetPin(true)
		return transport, nil
	}

	transport, err := spi.New(spi.Config{
		Bus:      cfg.Reader.Bus,
		ResetPin: cfg.Reader.ResetPin,
		CSPin:    cfg.Reader.CSPin,
		Speed:    physic.Frequency(cfg.Reader.SpeedHz) * physic.Hertz,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create SPI transport: %w", err)
	}
	return transport, nil
}

// openConsole opens the configured serial console, or w when none is set
func openConsole(cfg *config.Config, w io.Writer) (*console.Console, error) {
	if cfg.Console.Port == "" {
		return &console.Console{Logger: console.New(w, "\n")}, nil
	}
	cons, err := console.Open(console.Config{Port: cfg.Console.Port, Baud: cfg.Console.Baud})
	if err != nil {
		return nil, err
	}
	return cons, nil
}

func listDevices(ctx context.Context, w io.Writer) error {
	devices, err := detection.DetectAll(ctx, &detection.Options{})
	if errors.Is(err, detection.ErrNoDevicesFound) {
		_, _ = fmt.Fprintln(w, "No devices found")
		return nil
	}
	for _, dev := range devices {
		access := "ok"
		if !dev.Accessible {
			access = "no access"
		}
		_, _ = fmt.Fprintf(w, "%-5s %-16s %-20s %s\n", dev.Transport, dev.Name, dev.Path, access)
	}
	return err
}

func newSession(
	cfg *config.Config,
	device *mfrc522.Device,
	cons *console.Console,
	log logrus.FieldLogger,
) (*polling.Session, error) {
	key, err := cfg.Key()
	if err != nil {
		return nil, err
	}
	authCmd, err := cfg.AuthCommand()
	if err != nil {
		return nil, err
	}
	payload, err := cfg.Payload()
	if err != nil {
		return nil, err
	}

	ops := tagops.New(device, cons.Logger, tagops.WithKeyType(authCmd), tagops.WithLogger(log))
	session, err := polling.NewSession(ops, &polling.Config{
		PollInterval: cfg.PollInterval,
		Payload:      payload,
		Key:          key,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to setup session: %w", err)
	}

	session.SetCallbacks(polling.Callbacks{
		OnSessionEnd: func(result polling.SessionResult) {
			log.WithFields(logrus.Fields{
				"session":  result.ID,
				"uid":      result.Info.UIDString,
				"swept":    result.Swept,
				"duration": result.Duration,
			}).Info("tag done, waiting for the next one")
		},
	})
	return session, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fl, set, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if fl.list {
		return listDevices(ctx, stdout)
	}

	cfg, err := loadConfig(fl, set)
	if err != nil {
		return err
	}
	log := newLogger(cfg, stderr)

	transport, err := newTransport(cfg)
	if err != nil {
		return err
	}
	device, err := mfrc522.New(transport, mfrc522.WithLogger(log))
	if err != nil {
		_ = transport.Close()
		return err
	}
	defer func() { _ = device.Close() }()

	if err := device.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize MFRC522: %w", err)
	}
	if version, err := device.FirmwareVersion(); err == nil {
		log.WithField("version", version.String()).Info("MFRC522 ready")
	}

	cons, err := openConsole(cfg, stdout)
	if err != nil {
		return err
	}
	defer func() { _ = cons.Close() }()

	session, err := newSession(cfg, device, cons, log)
	if err != nil {
		return err
	}

	log.WithField("interval", cfg.PollInterval).Info("waiting for tags")
	if err := session.Run(ctx); err != nil {
		return fmt.Errorf("polling stopped: %w", err)
	}

	m := session.Metrics()
	log.WithFields(logrus.Fields{
		"sessions":     m.Sessions,
		"incompatible": m.IncompatibleTags,
		"poll_cycles":  m.PollCycles,
	}).Info("stopped")
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		_, _ = fmt.Fprintf(os.Stderr, "mfrc522rw: %v\n", err)
		stop()
		os.Exit(1)
	}
}
