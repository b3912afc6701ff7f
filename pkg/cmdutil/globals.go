// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdutil

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/open-source-firmware/go-tcg-drive/pkg/config"
	"github.com/open-source-firmware/go-tcg-drive/pkg/drive"
)

// Globals are the flags shared by every command.
type Globals struct {
	Config   string `optional:"" short:"c" env:"TCG_DRIVE_CONFIG" type:"path" help:"Path to the configuration file"`
	LogLevel string `optional:"" env:"TCG_DRIVE_LOG_LEVEL" enum:",panic,fatal,error,warn,info,debug,trace" default:"" help:"Override the configured log level"`
}

// Env is what a command needs to talk to devices.
type Env struct {
	Config  *config.Config
	Log     *logrus.Logger
	Factory *drive.Factory
}

// Setup loads the configuration and builds the logger and device factory.
func (g *Globals) Setup() (*Env, error) {
	cfg, err := config.Load(afero.NewOsFs(), g.Config)
	if err != nil {
		return nil, err
	}
	log := NewLogger(cfg.Level())
	if g.LogLevel != "" {
		if l, err := logrus.ParseLevel(g.LogLevel); err == nil {
			log.SetLevel(l)
		}
	}
	f, err := cfg.Factory(drive.NewHost(cfg.HostOptions()), log)
	if err != nil {
		return nil, err
	}
	return &Env{Config: cfg, Log: log, Factory: f}, nil
}

// NewLogger logs to stderr so command output stays machine readable.
func NewLogger(level logrus.Level) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return log
}

// ExitCode maps err to the process exit status of a command.
func ExitCode(err error) int {
	return int(drive.Code(err))
}
