//go:build !debugAssertions

package afsa

// checkInvariants is a no-op in release builds; see invariants_debug.go.
func (a *AFSA) checkInvariants() {}
