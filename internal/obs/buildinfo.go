package obs

import (
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Build identifies the running binary.
type Build struct {
	Version   string
	Commit    string
	GoVersion string
	Storage   string
}

var (
	buildGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "jobkonnect_build_info",
			Help: "Constant 1, labelled with the running build.",
		},
		[]string{"version", "commit", "go_version", "storage"},
	)
	buildOnce sync.Once

	readBuildInfo = debug.ReadBuildInfo
)

// ResolveBuild fills in the commit from the embedded VCS stamp when the
// linker did not set one.
func ResolveBuild(version, commit, storage string) Build {
	b := Build{Version: version, Commit: commit, GoVersion: runtime.Version(), Storage: storage}
	if b.Commit != "" && b.Commit != "dev" {
		return b
	}
	info, ok := readBuildInfo()
	if !ok {
		return b
	}
	dirty := false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if len(s.Value) > 12 {
				b.Commit = s.Value[:12]
			} else if s.Value != "" {
				b.Commit = s.Value
			}
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if dirty && b.Commit != "" && b.Commit != "dev" {
		b.Commit += "-dirty"
	}
	if b.Commit == "" {
		b.Commit = "unknown"
	}
	return b
}

// PublishBuild exports b as the only jobkonnect_build_info series.
func PublishBuild(b Build) {
	buildOnce.Do(func() { prometheus.MustRegister(buildGauge) })
	buildGauge.Reset()
	buildGauge.WithLabelValues(b.Version, b.Commit, b.GoVersion, b.Storage).Set(1)
}
