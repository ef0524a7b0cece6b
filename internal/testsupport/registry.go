package testsupport

import (
	"testing"

	"artistdb/internal/config"
)

// SampleRegistry is a small registry exercising the common resolution paths.
// It is not in normalized form: the "Bob Smith" key becomes bob_smith.
const SampleRegistry = `[alice]
__name__ = "Alice"
__flag__ = "🇯🇵"
__alias__ = ["ali"]
github = "alice"
"twitter:Art" = "alice_draws"

["Bob Smith"]
__avatar__ = "https://img.example.com/bob.png"
website = "https://bob.example.com"
`

// WriteRegistry writes contents to cfg's registry file.
func WriteRegistry(t testing.TB, cfg *config.Config, contents string) {
	t.Helper()
	WriteFile(t, cfg.Paths.RegistryFile, contents)
}
