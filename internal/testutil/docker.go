// Package testutil starts throwaway containers for integration tests.
package testutil

import (
	"testing"

	"github.com/testcontainers/testcontainers-go"
)

// RequireDocker skips the test under -short or when no container runtime is reachable.
func RequireDocker(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
}
