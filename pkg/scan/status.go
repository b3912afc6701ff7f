// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scan

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/open-source-firmware/go-tcg-drive/pkg/core"
)

// StateFlagsHelp documents the flags of the STATE column of WriteStatus.
const StateFlagsHelp = `The following state flags might be shown:
  L/l - Locking is supported and is enabled (L) or disabled (l)
  M/m - MBR is enabled and is active (M) or hidden (m)
  E   - The device has media encryption
  P   - The Admin SP SID PIN is set to MSID [Block SID feature specific]
  !   - Authentication to Admin SP is blocked [Block SID feature specific]
`

// WriteStatus prints an aligned status table of the identified devices.
func WriteStatus(w io.Writer, r *Report, header bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	if header {
		fmt.Fprintf(tw, "DEVICE\tMODEL\tSERIAL\tFIRMWARE\tPROTOCOL\tSSC\tSTATE\n")
	}
	for _, e := range r.Entries {
		feat := SSCFeatures(e.Level0)
		if e.Level0 == nil {
			feat = []string{"-"}
		}
		fmt.Fprint(tw,
			e.Ref, "\t",
			e.Info.Model(), "\t",
			e.Info.Serial(), "\t",
			e.Info.Firmware(), "\t",
			TypeCode(e.Info.DevType), "\t",
			strings.Join(feat, ","), "\t",
			LockingState(e.Level0), "\t",
			"\n")
	}
	return tw.Flush()
}

type jsonIdentity struct {
	Type                 string
	Variant              string
	Vendor               string
	Model                string
	Firmware             string
	SerialNumber         string
	Manufacturer         string `json:",omitempty"`
	Interconnect         string `json:",omitempty"`
	InterconnectLocation string `json:",omitempty"`
	WorldWideName        string `json:",omitempty"`
	SyntheticWWN         bool   `json:",omitempty"`
	Size                 uint64
}

type jsonEntry struct {
	Device   string
	Identity jsonIdentity
	SSC      []string
	Level0   *core.Level0Discovery
}

// WriteJSON prints the identified devices as an indented JSON array.
func WriteJSON(w io.Writer, r *Report) error {
	out := make([]jsonEntry, 0, len(r.Entries))
	for _, e := range r.Entries {
		id := jsonIdentity{
			Type:                 e.Info.DevType.String(),
			Variant:              e.Variant.String(),
			Vendor:               e.Info.Vendor(),
			Model:                e.Info.Model(),
			Firmware:             e.Info.Firmware(),
			SerialNumber:         e.Info.Serial(),
			Manufacturer:         e.Info.Manufacturer(),
			Interconnect:         e.Info.Interconnect(),
			InterconnectLocation: e.Info.InterconnectLocation(),
			Size:                 e.Info.DevSize,
		}
		if e.Info.HasWorldWideName() {
			id.WorldWideName = fmt.Sprintf("%X", e.Info.WorldWideName[:])
			id.SyntheticWWN = e.Info.WorldWideNameSynthetic
		}
		out = append(out, jsonEntry{
			Device:   e.Ref,
			Identity: id,
			SSC:      SSCFeatures(e.Level0),
			Level0:   e.Level0,
		})
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal scan report: %w", err)
	}
	_, err = w.Write(b)
	return err
}
