// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package drive

import (
	"github.com/sirupsen/logrus"

	"github.com/open-source-firmware/go-tcg-drive/pkg/drive/quirk"
)

// Factory turns a device reference into an identified Device.
type Factory struct {
	Host    Host
	Quirks  *quirk.Table
	Inquiry InquiryConfig
	Log     logrus.FieldLogger
}

func NewFactory(host Host) *Factory {
	return &Factory{
		Host:    host,
		Quirks:  quirk.NewTable(),
		Inquiry: DefaultInquiryConfig(),
		Log:     logrus.StandardLogger(),
	}
}

type opener func(ref string, info *DeviceInfo) Device

// Get introspects ref and dispatches it on its device type. A nil Device
// with a nil error means ref is not a supported device. The only errors
// returned are from opening ref, ErrAccessDenied among them.
func (f *Factory) Get(ref string, info *DeviceInfo) (Device, error) {
	log := f.logFor(ref)

	h, err := f.Host.Open(ref)
	if err != nil {
		return nil, err
	}
	props, err := f.Host.Introspect(h, info)
	h.Close()
	if err != nil {
		log.Debugf("Host introspection failed: %v", err)
		return nil, nil
	}
	log.Debugf("Host properties: %s", props)

	flags := f.Quirks.Resolve(info.Fingerprint())
	if flags.Any() {
		log.Debugf("Quirks for %s: %s", info.Fingerprint(), flags)
	}

	var d Device
	switch info.DevType {
	case DevTypeSCSI, DevTypeSAS:
		d = f.attempt(f.openSCSI, ref, info)
	case DevTypeUSB:
		if !flags.AvoidSlowSATATimeout {
			d = f.attempt(f.openSATA, ref, info)
		}
		if d == nil && !flags.AvoidSlowSASTimeout {
			d = f.attempt(f.openSCSI, ref, info)
		}
	case DevTypeNVMe:
		if !flags.AcceptPseudoDeviceImmediately {
			d = f.attempt(f.openNVMe, ref, info)
		}
		if d == nil {
			d = f.attempt(f.openPseudo, ref, info)
		}
	case DevTypeATA:
		log.Debugf("ATA devices are not supported")
	default:
		log.Debugf("Unsupported device type %s", info.DevType)
	}
	if d == nil {
		return nil, nil
	}

	SoftCopy(info.PasswordSalt[:], info.SerialNum[:])
	synthesizeWWN(info)
	log.Debugf("Using %s transport: %s", d.Variant(), info)
	return d, nil
}

// attempt runs one transport opener against a scratch copy of info and
// commits it only when the opener produced a Device.
func (f *Factory) attempt(open opener, ref string, info *DeviceInfo) Device {
	trial := *info
	d := open(ref, &trial)
	if d != nil {
		*info = trial
	}
	return d
}

func (f *Factory) logFor(ref string) logrus.FieldLogger {
	if f.Log == nil {
		return logrus.WithField("device", ref)
	}
	return f.Log.WithField("device", ref)
}

func (f *Factory) openSCSI(ref string, info *DeviceInfo) Device {
	h, err := f.Host.Open(ref)
	if err != nil {
		return nil
	}
	d := &scsiDrive{
		h:       h,
		exec:    f.Host.Executor(h),
		variant: VariantSCSI,
		inquiry: f.Inquiry,
		quirks:  f.Quirks,
		log:     f.logFor(ref),
	}
	if !d.Identify(info) {
		h.Close()
		return nil
	}
	// SAS targets do not answer ATA IDENTIFY through SAT
	scratch := *info
	isATA := identifyUsingATA(d.exec, &scratch, f.Inquiry.Timeout)
	if isATA {
		d.variant = VariantSATA
		SoftCopy(info.PasswordSalt[:], scratch.PasswordSalt[:])
		if !info.HasWorldWideName() {
			info.WorldWideName = scratch.WorldWideName
		}
	}
	if info.DevType == DevTypeSCSI {
		info.DevType = DevTypeSAS
		if isATA {
			info.DevType = DevTypeSATA
		}
	}
	return d
}

func (f *Factory) openSATA(ref string, info *DeviceInfo) Device {
	h, err := f.Host.Open(ref)
	if err != nil {
		return nil
	}
	d := &scsiDrive{
		h:       h,
		exec:    f.Host.Executor(h),
		variant: VariantSATA,
		inquiry: f.Inquiry,
		quirks:  f.Quirks,
		log:     f.logFor(ref),
	}
	if !d.Identify(info) {
		h.Close()
		return nil
	}
	return d
}

func (f *Factory) openNVMe(ref string, info *DeviceInfo) Device {
	h, err := f.Host.Open(ref)
	if err != nil {
		return nil
	}
	admin := f.Host.NVMe(h)
	if admin == nil {
		h.Close()
		return nil
	}
	d := &nvmeDrive{h: h, admin: admin, timeout: f.Inquiry.Timeout}
	if !d.Identify(info) {
		h.Close()
		return nil
	}
	return d
}

func (f *Factory) openPseudo(ref string, info *DeviceInfo) Device {
	h, err := f.Host.Open(ref)
	if err != nil {
		return nil
	}
	d := &pseudoDrive{h: h, host: f.Host, exec: f.Host.Executor(h), timeout: f.Inquiry.Timeout}
	if !d.Identify(info) {
		h.Close()
		return nil
	}
	return d
}
