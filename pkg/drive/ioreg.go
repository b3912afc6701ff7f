// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package drive

import (
	"fmt"
	"strconv"
	"strings"

	"howett.net/plist"
)

// IORegistryEntry is one node of `ioreg -a` output.
type IORegistryEntry struct {
	Class                   string                 `plist:"IOObjectClass"`
	BSDName                 string                 `plist:"BSD Name"`
	Size                    interface{}            `plist:"Size"`
	DeviceCharacteristics   map[string]interface{} `plist:"Device Characteristics"`
	ProtocolCharacteristics map[string]interface{} `plist:"Protocol Characteristics"`
	Children                []*IORegistryEntry     `plist:"IORegistryEntryChildren"`
}

// ParseIORegistry decodes the plist array printed by
// `ioreg -a -r -c IOBlockStorageDevice`.
func ParseIORegistry(b []byte) ([]*IORegistryEntry, error) {
	var entries []*IORegistryEntry
	if _, err := plist.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("decode I/O registry: %w", err)
	}
	return entries, nil
}

// FindMedia looks up the block storage device whose IOMedia, reached
// through its block storage driver, has the BSD name bsdName.
func FindMedia(devices []*IORegistryEntry, bsdName string) (device, media *IORegistryEntry) {
	for _, dev := range devices {
		for _, drv := range dev.Children {
			if !strings.HasSuffix(drv.Class, "BlockStorageDriver") {
				continue
			}
			for _, m := range drv.Children {
				if m.BSDName == bsdName {
					return dev, m
				}
			}
		}
	}
	return nil, nil
}

func stringValue(m map[string]interface{}, key string) (string, bool) {
	switch v := m[key].(type) {
	case string:
		return strings.TrimSpace(v), true
	case nil:
		return "", false
	default:
		return fmt.Sprint(v), true
	}
}

func numberValue(v interface{}) (uint64, bool) {
	switch n := v.(type) {
	case uint64:
		return n, true
	case int64:
		return uint64(n), true
	case int:
		return uint64(n), true
	case float64:
		return uint64(n), true
	case string:
		u, err := strconv.ParseUint(n, 10, 64)
		return u, err == nil
	}
	return 0, false
}

// ioregDevType maps the protocol characteristics of a block storage device.
func ioregDevType(device *IORegistryEntry) DevType {
	if loc, _ := stringValue(device.ProtocolCharacteristics, "Physical Interconnect Location"); loc == "File" {
		return DevTypeOther
	}
	interconnect, _ := stringValue(device.ProtocolCharacteristics, "Physical Interconnect")
	switch interconnect {
	case "USB":
		return DevTypeUSB
	case "SATA":
		return DevTypeATA
	case "Apple Fabric", "PCI-Express", "PCI":
		if strings.Contains(device.Class, "NVMe") {
			return DevTypeNVMe
		}
	}
	return DevTypeOther
}

// applyIORegistry copies the identity of device and media into info.
func applyIORegistry(device, media *IORegistryEntry, info *DeviceInfo) Properties {
	props := Properties{"IOObjectClass": device.Class, "BSD Name": media.BSDName}
	for _, p := range []struct {
		key string
		src map[string]interface{}
		dst []byte
	}{
		{"Vendor Name", device.DeviceCharacteristics, info.VendorID[:]},
		{"Product Name", device.DeviceCharacteristics, info.ModelNum[:]},
		{"Product Revision Level", device.DeviceCharacteristics, info.FirmwareRev[:]},
		{"Serial Number", device.DeviceCharacteristics, info.SerialNum[:]},
		{"Physical Interconnect", device.ProtocolCharacteristics, info.PhysicalInterconnect[:]},
		{"Physical Interconnect Location", device.ProtocolCharacteristics, info.PhysicalInterconnectLocation[:]},
	} {
		if v, ok := stringValue(p.src, p.key); ok {
			HardCopy(p.dst, []byte(v))
			props[p.key] = v
		}
	}
	if size, ok := numberValue(media.Size); ok {
		info.DevSize = size
		props["Size"] = strconv.FormatUint(size, 10)
	}
	info.DevType = ioregDevType(device)
	return props
}
