package question

import (
	_ "embed"
	"encoding/json"
)

//go:embed fallback.json
var fallbackJSON []byte

// Fallback returns the bundled question set used when the remote store is
// unconfigured or unreachable. Gameplay never blocks on the network.
func Fallback() []Raw {
	var records []Raw
	if err := json.Unmarshal(fallbackJSON, &records); err != nil {
		return nil
	}
	return records
}
