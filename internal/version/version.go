// Package version carries the build metadata stamped into the askdoc
// binary. Release builds inject real values with -ldflags, for example:
//
//	go build -ldflags "\
//	  -X github.com/54b3r/askdoc-go/internal/version.Version=v0.3.0 \
//	  -X github.com/54b3r/askdoc-go/internal/version.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/54b3r/askdoc-go/internal/version.BuildDate=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// A plain `go build` or `go run` leaves the placeholder defaults in place.
package version

// Version is the release tag the binary was cut from; "dev" for local builds.
var Version = "dev"

// Commit is the short git SHA the binary was built at.
var Commit = "unknown"

// BuildDate is the UTC build timestamp in RFC3339.
var BuildDate = "unknown"
