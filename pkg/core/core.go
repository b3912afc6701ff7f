// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Implements device identification for TCG Storage Architecture Core Specification TCG Specification Version 2.01

package core

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/open-source-firmware/go-tcg-drive/pkg/drive"
)

// Core holds the device interface to access IFSend/IFReceive functions as well as disk information
// obtained by the Identify and Discovery functions. This struct shall be use to interface the library
type Core struct {
	drive.Device
	Info drive.DeviceInfo
	// Nil when the device did not answer Level 0 discovery and was kept
	// as a generic device.
	*Level0Discovery
}

type options struct {
	factory          *drive.Factory
	genericIfNotTPer bool
	log              logrus.FieldLogger
}

type Option func(*options)

// WithFactory identifies through f instead of a factory on the default host.
func WithFactory(f *drive.Factory) Option {
	return func(o *options) { o.factory = f }
}

// WithGenericIfNotTPer keeps devices that do not report a TPer instead of
// failing with ErrNotSupported.
func WithGenericIfNotTPer() Option {
	return func(o *options) { o.genericIfNotTPer = true }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) { o.log = log }
}

// NewCore opens and identifies device, then runs Level 0 discovery on it.
// Errors can be classified with drive.Code.
func NewCore(device string, opts ...Option) (*Core, error) {
	o := options{log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.factory == nil {
		o.factory = drive.NewFactory(drive.DefaultHost())
		o.factory.Log = o.log
	}
	log := o.log.WithField("device", device)

	c := &Core{}
	d, err := o.factory.Get(device, &c.Info)
	if err != nil {
		return nil, fmt.Errorf("open device %s failed: %w", device, err)
	}
	if d == nil {
		return nil, fmt.Errorf("identify device %s failed: %w", device, drive.ErrDeviceTypeUnknown)
	}
	c.Device = d

	var d0 *Level0Discovery
	err = drive.Discovery0(d, &c.Info, func(raw []byte, info *drive.DeviceInfo) error {
		var err error
		if d0, err = ParseDiscovery0(raw); err != nil {
			return err
		}
		info.SSC = d0.SSC()
		return nil
	})
	if err == nil && !c.Info.SSC.TPer {
		err = fmt.Errorf("%w: no TPer feature reported", ErrNotSupported)
	}
	if err != nil {
		if o.genericIfNotTPer {
			log.Debugf("Keeping generic device: %v", err)
			return c, nil
		}
		d.Close()
		if !errors.Is(err, drive.ErrCommand) {
			err = fmt.Errorf("%w: %w", drive.ErrCommand, err)
		}
		return nil, fmt.Errorf("discovery on device %s failed: %w", device, err)
	}
	c.Level0Discovery = d0
	log.Debugf("Level 0 discovery: SSC %+v", c.Info.SSC)
	return c, nil
}

func (c *Core) Close() error {
	return c.Device.Close()
}
