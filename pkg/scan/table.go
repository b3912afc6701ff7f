// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scan

import (
	"fmt"
	"io"
	"strings"
)

const (
	columnHeader     = " device "
	verboseHeaders   = " SSC        Model Number       Firmware Locn   World Wide Name        Serial Number     Vendor      Manufacturer Name\n"
	verboseUnderline = " --- ------------ ------------ -------- -----  ----- ---- -----   ---------- ---------  -------  --------------- -------\n"
)

// deviceColumnWidth fits the longest reference and the column header.
func deviceColumnWidth(refs []string) int {
	w := len(columnHeader)
	for _, ref := range refs {
		if len(ref) > w {
			w = len(ref)
		}
	}
	return w
}

func sscColumn(e *Entry) string {
	ssc := e.Info.SSC
	if !ssc.Any() {
		return " No  "
	}
	flag := func(set bool, c string) string {
		if set {
			return c
		}
		return " "
	}
	return " " + flag(ssc.Opal1, "1") + flag(ssc.Opal2, "2") + flag(ssc.Enterprise, "E") + " "
}

func wwnColumn(e *Entry) string {
	if !e.Info.HasWorldWideName() {
		return strings.Repeat(" ", 18)
	}
	mark := ' '
	if e.Info.WorldWideNameSynthetic {
		mark = '*'
	}
	return fmt.Sprintf("%X %c", e.Info.WorldWideName[:], mark)
}

// WriteTable prints the fixed width scan report. Verbose adds the column
// headers and the identity columns after the device type.
func WriteTable(w io.Writer, r *Report, verbose bool) error {
	ew := &errWriter{w: w}
	if verbose {
		ew.printf("Scanning for TCG SWG compliant disks\n")
	} else {
		ew.printf("Scanning for Opal compliant disks\n")
	}
	if len(r.Refs) > 0 {
		width := deviceColumnWidth(r.Refs)
		if verbose {
			left := (width - len(columnHeader)) / 2
			right := width - len(columnHeader) - left
			ew.printf("%s%s%s%s", strings.Repeat(" ", left), columnHeader, strings.Repeat(" ", right), verboseHeaders)
			ew.printf("%s%s", strings.Repeat("-", width), verboseUnderline)
		}
		for i := range r.Entries {
			e := &r.Entries[i]
			ew.printf("%-*s", width, e.Ref)
			ew.printf("%s", sscColumn(e))
			if verbose {
				ew.printf("%-25.25s %-8.8s %-5.5s  %18s %-20.20s %-8.8s %-25.25s\n",
					cString(e.Info.ModelNum[:]),
					cString(e.Info.FirmwareRev[:]),
					TypeCode(e.Info.DevType),
					wwnColumn(e),
					cString(e.Info.SerialNum[:]),
					cString(e.Info.VendorID[:]),
					cString(e.Info.ManufacturerName[:]))
			} else {
				ew.printf("%-25.25s %-8.8s %-5.5s\n",
					cString(e.Info.ModelNum[:]),
					cString(e.Info.FirmwareRev[:]),
					TypeCode(e.Info.DevType))
			}
		}
	}
	ew.printf("No more disks present -- ending scan\n")
	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
