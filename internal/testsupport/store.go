package testsupport

import (
	"testing"

	"artistdb/internal/config"
	"artistdb/internal/state"
)

// MustOpenStore opens the state store for cfg and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *state.Store {
	t.Helper()

	store, err := state.Open(cfg.StatePath())
	if err != nil {
		t.Fatalf("state.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
