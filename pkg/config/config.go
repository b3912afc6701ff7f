// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/open-source-firmware/go-tcg-drive/pkg/drive"
	"github.com/open-source-firmware/go-tcg-drive/pkg/drive/quirk"
)

type Config struct {
	// Zero leaves the pass-through driver default in place.
	Timeout  time.Duration `yaml:"timeout,omitempty"`
	MaxDisks int           `yaml:"max_disks,omitempty"`
	Inquiry  Inquiry       `yaml:"inquiry"`
	Quirks   []Quirk       `yaml:"quirks,omitempty"`
	LogLevel string        `yaml:"log_level,omitempty"`
}

type Inquiry struct {
	AllowPage00Failure *bool   `yaml:"allow_page00_failure,omitempty"`
	Stages             []Stage `yaml:"stages,omitempty"`
}

type Stage struct {
	Page   uint8  `yaml:"page"`
	Policy string `yaml:"policy"`
}

// Quirk attaches workarounds to devices whose vendor, product and revision
// start with the given strings. Vendor and product are matched as the
// device reports them, with spaces:
//
//	quirks:
//	  - vendor: Samsung
//	    product: PSSD T7
//	    flags: [avoid-slow-sata-timeout]
//	  - vendor: Innostor
//	    flags: [reverse-serial-number]
//	  - vendor: APPLE
//	    product: SSD AP
//	    flags: [accept-pseudo-device-immediately]
type Quirk struct {
	Vendor   string   `yaml:"vendor,omitempty"`
	Product  string   `yaml:"product,omitempty"`
	Revision string   `yaml:"revision,omitempty"`
	Flags    []string `yaml:"flags"`
}

// SearchPaths lists the files Load tries, in order, when no path is given.
func SearchPaths() []string {
	return []string{
		"/etc/go-tcg-drive/config.yaml",
		filepath.Join(os.Getenv("HOME"), ".config/go-tcg-drive/config.yaml"),
	}
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	allow := true
	def := drive.DefaultInquiryConfig()
	cfg := &Config{
		MaxDisks: drive.DefaultMaxDisks,
		Inquiry:  Inquiry{AllowPage00Failure: &allow},
		LogLevel: logrus.InfoLevel.String(),
	}
	for _, s := range def.Stages {
		cfg.Inquiry.Stages = append(cfg.Inquiry.Stages, Stage{Page: s.Page, Policy: s.Policy.String()})
	}
	return cfg
}

// Load reads path from fs. An empty path searches SearchPaths and falls back
// to Default when none exists. The result is validated.
func Load(fs afero.Fs, path string) (*Config, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if path == "" {
		for _, c := range SearchPaths() {
			if ok, _ := afero.Exists(fs, c); ok {
				path = c
				break
			}
		}
	}
	if path == "" {
		return Default(), nil
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.MaxDisks <= 0 {
		c.MaxDisks = def.MaxDisks
	}
	if c.Inquiry.AllowPage00Failure == nil {
		c.Inquiry.AllowPage00Failure = def.Inquiry.AllowPage00Failure
	}
	if c.Inquiry.Stages == nil {
		c.Inquiry.Stages = def.Inquiry.Stages
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
}

func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("negative timeout %s", c.Timeout)
	}
	if _, err := c.InquiryConfig(); err != nil {
		return err
	}
	if _, err := c.QuirkEntries(); err != nil {
		return err
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// InquiryConfig converts the inquiry section for drive.IdentifyUsingInquiry.
func (c *Config) InquiryConfig() (drive.InquiryConfig, error) {
	ic := drive.InquiryConfig{
		AllowPage00Failure: c.Inquiry.AllowPage00Failure == nil || *c.Inquiry.AllowPage00Failure,
		Timeout:            c.Timeout,
	}
	for _, s := range c.Inquiry.Stages {
		p, err := drive.ParseStagePolicy(s.Policy)
		if err != nil {
			return ic, fmt.Errorf("inquiry stage %#02x: %w", s.Page, err)
		}
		ic.Stages = append(ic.Stages, drive.Stage{Page: s.Page, Policy: p})
	}
	return ic, nil
}

// QuirkEntries converts the configured quirks.
func (c *Config) QuirkEntries() ([]quirk.Entry, error) {
	entries := make([]quirk.Entry, 0, len(c.Quirks))
	for _, q := range c.Quirks {
		flags, err := quirk.ParseFlags(q.Flags)
		if err != nil {
			return nil, fmt.Errorf("quirk %s/%s: %w", q.Vendor, q.Product, err)
		}
		entries = append(entries, quirk.Entry{Vendor: q.Vendor, Product: q.Product, Revision: q.Revision, Flags: flags})
	}
	return entries, nil
}

func (c *Config) HostOptions() drive.HostOptions {
	return drive.HostOptions{MaxDisks: c.MaxDisks}
}

func (c *Config) Level() logrus.Level {
	l, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return l
}

// Factory builds a drive.Factory on host configured from c.
func (c *Config) Factory(host drive.Host, log logrus.FieldLogger) (*drive.Factory, error) {
	ic, err := c.InquiryConfig()
	if err != nil {
		return nil, err
	}
	entries, err := c.QuirkEntries()
	if err != nil {
		return nil, err
	}
	f := drive.NewFactory(host)
	f.Inquiry = ic
	f.Quirks = quirk.NewTable(entries...)
	if log != nil {
		f.Log = log
	}
	return f, nil
}
