package secrets

import "os"

// EnvLoader returns a Loader that snapshots the named environment
// variables. Synod loads its provider and MCP credentials this way at
// startup and again on SIGHUP, so a rotated key takes effect without a
// restart. Unset or empty variables are left out of the snapshot.
func EnvLoader(names ...string) Loader {
	return func() (map[string]string, error) {
		snap := make(map[string]string, len(names))
		for _, name := range names {
			if v := os.Getenv(name); v != "" {
				snap[name] = v
			}
		}
		return snap, nil
	}
}
