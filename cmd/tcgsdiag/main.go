// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"

	"github.com/open-source-firmware/go-tcg-drive/pkg/cmdutil"
	tcg "github.com/open-source-firmware/go-tcg-drive/pkg/core"
	"github.com/open-source-firmware/go-tcg-drive/pkg/drive"
)

var cli struct {
	cmdutil.Globals `embed:""`

	Device string `arg:"" help:"Path to SED device (e.g. /dev/nvme0)"`
}

func TestComID(log logrus.FieldLogger, d drive.Device) tcg.ComID {
	comID, err := tcg.GetComID(d)
	if err != nil {
		log.Warnf("Unable to auto-allocate ComID: %v", err)
		return tcg.ComIDInvalid
	}
	log.Infof("Allocated ComID 0x%08x", comID)
	state, err := tcg.VerifyComID(d, comID)
	if err != nil {
		log.Warnf("Unable to validate allocated ComID: %v", err)
		return tcg.ComIDInvalid
	}
	if state != tcg.ComIDStateIssued && state != tcg.ComIDStateAssociated {
		log.Warnf("Allocated ComID not valid, state %s", state)
		return tcg.ComIDInvalid
	}
	log.Infof("ComID validated successfully, state %s", state)

	if err := tcg.StackReset(d, comID); err != nil {
		log.Warnf("Unable to reset the synchronous protocol stack: %v", err)
		return tcg.ComIDInvalid
	}
	log.Infof("Synchronous protocol stack reset successfully")
	return comID
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("tcgsdiag"),
		kong.Description("Print the security diagnostics of a drive"),
		kong.UsageOnError())
	spew.Config.Indent = "  "

	env, err := cli.Setup()
	ctx.FatalIfErrorf(err)
	log := env.Log.WithField("device", cli.Device)

	c, err := tcg.NewCore(cli.Device, tcg.WithFactory(env.Factory), tcg.WithLogger(env.Log), tcg.WithGenericIfNotTPer())
	if err != nil {
		log.Errorf("tcg.NewCore: %v", err)
		os.Exit(cmdutil.ExitCode(err))
	}
	defer c.Close()

	fmt.Printf("===> DRIVE IDENTITY\n")
	log.Infof("Drive identity: %s", &c.Info)
	log.Infof("Transport: %s", c.Variant())
	flags := env.Factory.Quirks.Resolve(c.Info.Fingerprint())
	if flags.Any() {
		log.Infof("Quirks: %s", flags)
	}
	spew.Dump(c.Info)
	fmt.Printf("\n")

	fmt.Printf("===> DRIVE SECURITY INFORMATION\n")
	spl, err := drive.SecurityProtocols(c)
	if err != nil {
		log.Errorf("drive.SecurityProtocols: %v", err)
		os.Exit(cmdutil.ExitCode(err))
	}
	log.Infof("SecurityProtocols: %+v", spl)
	crt, err := drive.Certificate(c)
	if err != nil {
		log.Warnf("drive.Certificate: %v", err)
	}
	log.Infof("Drive certificate:")
	spew.Dump(crt)
	fmt.Printf("\n")

	fmt.Printf("===> TCG FEATURE DISCOVERY\n")
	if c.Level0Discovery == nil {
		log.Infof("Drive does not report a TCG TPer, unable to continue")
		return
	}
	spew.Dump(c.Level0Discovery)
	fmt.Printf("\n")

	fmt.Printf("===> TCG AUTO ComID SELF-TEST\n")
	comID := TestComID(log, c)
	if comID == tcg.ComIDInvalid {
		comID = c.BaseComID()
		log.Infof("Auto-allocation ComID test failed, selected base ComID 0x%08x", comID)
	}
	if comID == tcg.ComIDInvalid {
		log.Infof("No supported feature found, giving up without a ComID ...")
		return
	}
	state, err := tcg.VerifyComID(c, comID)
	if err != nil {
		log.Warnf("Unable to verify ComID 0x%08x: %v", comID, err)
		return
	}
	log.Infof("Using ComID 0x%08x, state %s", comID, state)
}
