package util

import (
	"sync"
	"time"

	"github.com/saulo-duarte/examgate-lambda/internal/config"
	"github.com/sirupsen/logrus"
)

const reportLayout = "2006-01-02 15:04:05"

var (
	locOnce sync.Once
	loc     *time.Location
)

// ReportLocation is the zone exported reports are written in, read once from
// REPORT_TIMEZONE. Unknown zones fall back to UTC.
func ReportLocation() *time.Location {
	locOnce.Do(func() {
		name := config.GetEnv("REPORT_TIMEZONE", "UTC")
		l, err := time.LoadLocation(name)
		if err != nil {
			logrus.WithError(err).WithField("zone", name).Warn("Unknown report timezone, using UTC")
			l = time.UTC
		}
		loc = l
	})
	return loc
}

// FormatReportTime renders t for reports. A nil time renders empty.
func FormatReportTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.In(ReportLocation()).Format(reportLayout)
}
