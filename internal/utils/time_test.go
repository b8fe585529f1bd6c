package util_test

import (
	"testing"
	"time"

	util "github.com/saulo-duarte/examgate-lambda/internal/utils"
)

func TestFormatReportTime(t *testing.T) {
	if got := util.FormatReportTime(nil); got != "" {
		t.Errorf("expected empty string for nil, got %q", got)
	}
	if got := util.FormatReportTime(&time.Time{}); got != "" {
		t.Errorf("expected empty string for zero time, got %q", got)
	}

	ts := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	want := ts.In(util.ReportLocation()).Format("2006-01-02 15:04:05")
	if got := util.FormatReportTime(&ts); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
