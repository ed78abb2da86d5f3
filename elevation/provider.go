// Package elevation is the read-only external collaborator of spec §6:
// given a longitude/latitude, return an elevation in meters or report it
// missing. L1 validation (package condition) uses a Provider to convert 2D
// trail geometry to 3D and to recompute elevation stats that the source
// data omitted or got wrong.
package elevation

// Provider looks up ground elevation at a single point. Implementations
// must be safe for concurrent use.
type Provider interface {
	// Elevation returns the ground elevation in meters at (lng, lat).
	// ok is false when the provider has no data for the point (outside
	// its raster coverage, a gap in the source, etc); callers must not
	// treat a false ok as an error.
	Elevation(lng, lat float64) (meters float64, ok bool)
}

// NullProvider answers every lookup as missing. It is the zero-configuration
// default: runs without a configured elevation source fall back to the 2D
// geometry L1 already has rather than fail, matching spec.md §9's Open
// Question decision that elevation-provider-unavailable behavior is a
// configuration choice, not a hard failure.
type NullProvider struct{}

// Elevation implements Provider.
func (NullProvider) Elevation(lng, lat float64) (float64, bool) { return 0, false }

// Static assertion that NullProvider satisfies Provider.
var _ Provider = NullProvider{}
