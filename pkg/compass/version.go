// Package compass holds build metadata for the compass binary.
package compass

// Version is the release version. Release builds override it with
// -ldflags "-X github.com/mesh-intelligence/compass/pkg/compass.Version=...".
var Version = "0.1.0"

// ModulePath is the Go module path of this repository.
const ModulePath = "github.com/mesh-intelligence/compass"
