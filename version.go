package cloudpay

import (
	"fmt"
	"runtime"
)

// Build metadata. Commit and BuildDate are set with
// -ldflags "-X github.com/undr/cloud-pay.Commit=...".
var (
	Version   = "0.4.0"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// GetVersion describes the library build, e.g. for a CLI's --version output.
func GetVersion() string {
	return fmt.Sprintf("cloud-pay-go v%s (commit %s, built %s, %s)", Version, Commit, BuildDate, runtime.Version())
}

// GetVersionInfo is the build metadata as labels. MetricsCollector exports
// it as cloudpay_build_info.
func GetVersionInfo() map[string]string {
	return map[string]string{
		"version":    Version,
		"commit":     Commit,
		"build_date": BuildDate,
		"go_version": runtime.Version(),
	}
}

// UserAgent is the User-Agent sent when WithUserAgent is not used.
func UserAgent() string {
	return "cloud-pay-go/" + Version
}
