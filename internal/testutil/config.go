package testutil

import (
	"testing"

	"github.com/lepinkainen/bookscape/internal/config"
	"github.com/spf13/viper"
)

// SetTestConfig resets viper to the bookscape defaults and points every file
// the application writes into env. The API key environment variable is
// cleared so a developer key never leaks into a test run. Viper is reset
// again when the test completes.
func SetTestConfig(t *testing.T, env *TestEnv) {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv(config.APIKeyEnv, "")

	config.SetDefaults(viper.GetViper())
	viper.Set("googlebooks.ratelimit", 0)
	viper.Set("database.dsn", env.Path("bookscape.db"))
	viper.Set("cache.dbfile", env.Path("cache.db"))
}

// SetViperValue sets a viper configuration value and schedules cleanup.
func SetViperValue(t *testing.T, key string, value any) {
	t.Helper()

	// Get the old value (if any)
	oldValue := viper.Get(key)
	hadValue := viper.IsSet(key)

	// Set the new value
	viper.Set(key, value)

	// Schedule cleanup
	t.Cleanup(func() {
		if hadValue {
			viper.Set(key, oldValue)
		}
		// Note: viper doesn't have an Unset function, so we can't
		// restore the "unset" state. This is a known limitation.
	})
}
