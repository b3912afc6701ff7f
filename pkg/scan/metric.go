// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scan

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

var (
	mDriveInfo = prometheus.NewDesc(
		"tcg_storage_drive_info",
		"Info metric regarding the detected drives",
		[]string{"device", "model", "serial", "firmware", "protocol"}, nil,
	)
	mDriveSize = prometheus.NewDesc(
		"tcg_storage_drive_size_bytes",
		"Capacity of the drive as reported by the host",
		[]string{"device"}, nil,
	)
	mTCGSupported = prometheus.NewDesc(
		"tcg_storage_supported",
		"Boolean describing whether a drive supports any TCG storage standards",
		[]string{"device"}, nil,
	)
	mSSCSupported = prometheus.NewDesc(
		"tcg_storage_ssc_supported",
		"Boolean describing whether a particular SSC is supported by the drive or not",
		[]string{"device", "ssc"}, nil,
	)
	mLockingEnabled = prometheus.NewDesc(
		"tcg_storage_locking_enabled",
		"Boolean describing whether the drive is reporting range locking has been enabled",
		[]string{"device"}, nil,
	)
	mSIDAuthBlocked = prometheus.NewDesc(
		"tcg_storage_sid_authentication_blocked",
		"Boolean describing if the Block SID feature has made authentication to the drive currently impossible",
		[]string{"device"}, nil,
	)
	mDefaultSIDPIN = prometheus.NewDesc(
		"tcg_storage_default_sid_pin_detected",
		"Boolean describing if the Block SID feature reports the default SID PIN is in use",
		[]string{"device"}, nil,
	)
)

type reportCollector struct {
	r *Report
}

func (rc *reportCollector) Describe(c chan<- *prometheus.Desc) {
	c <- mDriveInfo
	c <- mDriveSize
	c <- mTCGSupported
	c <- mSSCSupported
	c <- mLockingEnabled
	c <- mSIDAuthBlocked
	c <- mDefaultSIDPIN
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func (rc *reportCollector) Collect(c chan<- prometheus.Metric) {
	for _, e := range rc.r.Entries {
		c <- prometheus.MustNewConstMetric(mDriveInfo, prometheus.GaugeValue, 1,
			e.Ref, e.Info.Model(), e.Info.Serial(), e.Info.Firmware(), TypeCode(e.Info.DevType))
		if e.Info.DevSize > 0 {
			c <- prometheus.MustNewConstMetric(mDriveSize, prometheus.GaugeValue, float64(e.Info.DevSize), e.Ref)
		}
		c <- prometheus.MustNewConstMetric(mTCGSupported, prometheus.GaugeValue, boolValue(e.Level0 != nil), e.Ref)

		// This is how far we can make it without a successful Level0 discovery
		if e.Level0 == nil {
			continue
		}

		for _, ssc := range SSCFeatures(e.Level0) {
			c <- prometheus.MustNewConstMetric(mSSCSupported, prometheus.GaugeValue, 1, e.Ref, ssc)
		}
		lockEn := e.Level0.Locking != nil && e.Level0.Locking.LockingEnabled
		c <- prometheus.MustNewConstMetric(mLockingEnabled, prometheus.GaugeValue, boolValue(lockEn), e.Ref)

		// Only visible if the Block SID feature is supported
		if b := e.Level0.BlockSID; b != nil {
			c <- prometheus.MustNewConstMetric(mSIDAuthBlocked, prometheus.GaugeValue, boolValue(b.SIDAuthenticationBlockedState), e.Ref)
			c <- prometheus.MustNewConstMetric(mDefaultSIDPIN, prometheus.GaugeValue, boolValue(!b.SIDValueState), e.Ref)
		}
	}
}

// WriteMetrics prints the report in the Prometheus text exposition format.
func WriteMetrics(w io.Writer, r *Report) error {
	reg := prometheus.NewPedanticRegistry()
	if err := reg.Register(&reportCollector{r: r}); err != nil {
		return fmt.Errorf("register collector: %w", err)
	}
	mfs, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("serialize metrics: %w", err)
		}
	}
	return nil
}
