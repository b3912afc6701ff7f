package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"

	"github.com/open-source-firmware/go-tcg-drive/pkg/cmdutil"
	"github.com/open-source-firmware/go-tcg-drive/pkg/core"
	"github.com/open-source-firmware/go-tcg-drive/pkg/scan"
)

// context is the context struct required by kong command line parser
type context struct {
	*cmdutil.Env
}

type scanCmd struct {
	Verbose bool `flag:"" short:"v" help:"Show the identity columns of every device"`
}

type identifyCmd struct {
	Device string `flag:"" required:"" short:"d" help:"Path to SED device (e.g. /dev/nvme0)"`
}

type discovery0Cmd struct {
	Device string `flag:"" required:"" short:"d" help:"Path to SED device (e.g. /dev/nvme0)"`
}

type passwordHashCmd struct {
	Device                string `flag:"" required:"" short:"d" help:"Path to SED device (e.g. /dev/nvme0)"`
	cmdutil.PasswordEmbed `embed:""`
}

// cli is the main command line interface struct required by kong command line parser
var cli struct {
	cmdutil.Globals `embed:""`

	Scan         scanCmd         `cmd:"" help:"Scan the system for TCG storage compliant devices"`
	Identify     identifyCmd     `cmd:"" help:"Print the identity of a device"`
	Discovery0   discovery0Cmd   `cmd:"" name:"discovery0" help:"Print the Level 0 discovery of a device"`
	PasswordHash passwordHashCmd `cmd:"" help:"Print the hash a password is sent to the device as"`
}

func (c *context) open(device string, generic bool) (*core.Core, error) {
	opts := []core.Option{core.WithFactory(c.Factory), core.WithLogger(c.Log)}
	if generic {
		opts = append(opts, core.WithGenericIfNotTPer())
	}
	return core.NewCore(device, opts...)
}

// Run executes when the scan command is invoked
func (t *scanCmd) Run(ctx *context) error {
	r, err := scan.Scan(ctx.Factory, ctx.Log)
	if err != nil {
		return err
	}
	return scan.WriteTable(os.Stdout, r, t.Verbose)
}

func (t *identifyCmd) Run(ctx *context) error {
	c, err := ctx.open(t.Device, true)
	if err != nil {
		return err
	}
	defer c.Close()

	info := &c.Info
	fmt.Printf("Device:                %s\n", t.Device)
	fmt.Printf("Transport:             %s (%s)\n", c.Variant(), scan.TypeCode(info.DevType))
	fmt.Printf("Vendor:                %s\n", info.Vendor())
	fmt.Printf("Model:                 %s\n", info.Model())
	fmt.Printf("Firmware:              %s\n", info.Firmware())
	fmt.Printf("Serial:                %s\n", info.Serial())
	if m := info.Manufacturer(); m != "" {
		fmt.Printf("Manufacturer:          %s\n", m)
	}
	if ic := info.Interconnect(); ic != "" {
		fmt.Printf("Interconnect:          %s %s\n", ic, info.InterconnectLocation())
	}
	if info.HasWorldWideName() {
		synthetic := ""
		if info.WorldWideNameSynthetic {
			synthetic = " (synthetic)"
		}
		fmt.Printf("World Wide Name:       %X%s\n", info.WorldWideName[:], synthetic)
	}
	fmt.Printf("Size:                  %d\n", info.DevSize)
	ssc := scan.SSCFeatures(c.Level0Discovery)
	if len(ssc) == 0 {
		ssc = []string{"-"}
	}
	fmt.Printf("SSC:                   %v\n", ssc)
	return nil
}

func (t *discovery0Cmd) Run(ctx *context) error {
	c, err := ctx.open(t.Device, false)
	if err != nil {
		return err
	}
	defer c.Close()
	spew.Config.Indent = "  "
	spew.Dump(c.Level0Discovery)
	return nil
}

func (t *passwordHashCmd) Run(ctx *context) error {
	c, err := ctx.open(t.Device, true)
	if err != nil {
		return err
	}
	defer c.Close()
	pwhash, err := t.GenerateHash(&c.Info)
	if err != nil {
		return err
	}
	fmt.Println(hex.EncodeToString(pwhash))
	return nil
}
