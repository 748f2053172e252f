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

// Package config loads the settings of the mfrc522rw command. Values are
// layered: defaults, then the YAML file, then MFRC522_* environment
// variables (a .env file included), then command line flags.
package config

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ZaparooProject/go-mfrc522"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load
const EnvPrefix = "MFRC522_"

// Defaults
const (
	DefaultBus          = "SPI0.0"
	DefaultResetPin     = "GPIO25"
	DefaultBaud         = 9600
	DefaultPollInterval = 100 * time.Millisecond
	DefaultLogLevel     = "info"
	DefaultPayload      = "@GuilhermeAw.com"
)

// Config is the complete command configuration
type Config struct {
	Reader       ReaderConfig  `yaml:"reader"`
	Console      ConsoleConfig `yaml:"console"`
	Tag          TagConfig     `yaml:"tag"`
	LogLevel     string        `yaml:"log_level"`
	PollInterval time.Duration `yaml:"poll_interval"`
	Simulate     bool          `yaml:"simulate"`
}

// ReaderConfig describes how the MFRC522 is wired
type ReaderConfig struct {
	Bus      string `yaml:"bus"`
	ResetPin string `yaml:"reset_pin"`
	CSPin    string `yaml:"cs_pin"`
	SpeedHz  int64  `yaml:"speed_hz"`
}

// ConsoleConfig selects the output of the progress lines
type ConsoleConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

// TagConfig holds the key and the payload used for every block
type TagConfig struct {
	Key     string `yaml:"key"`
	KeyType string `yaml:"key_type"`
	Payload string `yaml:"payload"`
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		Reader: ReaderConfig{
			Bus:      DefaultBus,
			ResetPin: DefaultResetPin,
		},
		Console: ConsoleConfig{
			Baud: DefaultBaud,
		},
		Tag: TagConfig{
			Key:     mfrc522.DefaultKey.String(),
			KeyType: "A",
			Payload: DefaultPayload,
		},
		LogLevel:     DefaultLogLevel,
		PollInterval: DefaultPollInterval,
	}
}

// LoadDotEnv loads variables from a .env file into the process environment.
// Variables already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load builds the configuration from the defaults, the YAML file at path
// (skipped when path is empty) and the environment. The result is not
// validated so flags can still be applied.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(content))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	str("BUS", &c.Reader.Bus)
	str("RESET_PIN", &c.Reader.ResetPin)
	str("CS_PIN", &c.Reader.CSPin)
	str("CONSOLE_PORT", &c.Console.Port)
	str("KEY", &c.Tag.Key)
	str("KEY_TYPE", &c.Tag.KeyType)
	str("PAYLOAD", &c.Tag.Payload)
	str("LOG_LEVEL", &c.LogLevel)

	if v, ok := lookup(EnvPrefix + "SPI_SPEED"); ok {
		speed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sSPI_SPEED: %w", EnvPrefix, err)
		}
		c.Reader.SpeedHz = speed
	}
	if v, ok := lookup(EnvPrefix + "CONSOLE_BAUD"); ok {
		baud, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sCONSOLE_BAUD: %w", EnvPrefix, err)
		}
		c.Console.Baud = baud
	}
	if v, ok := lookup(EnvPrefix + "POLL_INTERVAL"); ok {
		interval, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sPOLL_INTERVAL: %w", EnvPrefix, err)
		}
		c.PollInterval = interval
	}
	if v, ok := lookup(EnvPrefix + "SIMULATE"); ok {
		simulate, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sSIMULATE: %w", EnvPrefix, err)
		}
		c.Simulate = simulate
	}
	return nil
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if !c.Simulate && strings.TrimSpace(c.Reader.Bus) == "" {
		return errors.New("config.reader.bus is required")
	}
	if c.Reader.SpeedHz < 0 {
		return fmt.Errorf("config.reader.speed_hz must be >= 0, got %d", c.Reader.SpeedHz)
	}
	if c.Console.Baud <= 0 {
		return fmt.Errorf("config.console.baud must be positive, got %d", c.Console.Baud)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("config.poll_interval must be positive, got %s", c.PollInterval)
	}
	if _, err := c.Key(); err != nil {
		return err
	}
	if _, err := c.AuthCommand(); err != nil {
		return err
	}
	if _, err := c.Payload(); err != nil {
		return fmt.Errorf("config.tag.payload: %w", err)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Key parses the configured access key
func (c *Config) Key() (mfrc522.Key, error) {
	key, err := ParseKey(c.Tag.Key)
	if err != nil {
		return key, fmt.Errorf("config.tag.key: %w", err)
	}
	return key, nil
}

// AuthCommand returns the authentication command for the configured key type
func (c *Config) AuthCommand() (mfrc522.AuthCommand, error) {
	switch strings.ToUpper(strings.TrimSpace(c.Tag.KeyType)) {
	case "", "A":
		return mfrc522.AuthKeyA, nil
	case "B":
		return mfrc522.AuthKeyB, nil
	default:
		return 0, fmt.Errorf("config.tag.key_type must be A or B, got %q", c.Tag.KeyType)
	}
}

// Payload returns the configured payload as a zero padded block
func (c *Config) Payload() (mfrc522.Block, error) {
	return mfrc522.BlockFromString(c.Tag.Payload)
}

// Level returns the configured log level
func (c *Config) Level() (logrus.Level, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return level, fmt.Errorf("config.log_level: %w", err)
	}
	return level, nil
}

// ParseKey parses a 6 byte key written in hex. Colons and spaces between
// bytes are accepted: "FFFFFFFFFFFF", "ff:ff:ff:ff:ff:ff".
func ParseKey(s string) (mfrc522.Key, error) {
	var key mfrc522.Key

	clean := strings.NewReplacer(":", "", " ", "", "-", "").Replace(strings.TrimSpace(s))
	raw, err := hex.DecodeString(clean)
	if err != nil {
		return key, fmt.Errorf("invalid key %q: %w", s, err)
	}
	if len(raw) != mfrc522.KeySize {
		return key, fmt.Errorf("invalid key %q: %d bytes, want %d", s, len(raw), mfrc522.KeySize)
	}
	copy(key[:], raw)
	return key, nil
}
