package instance

import (
	"os"

	"github.com/angelmondragon/packfinderz-ops/pkg/env"
)

const fallbackID = "worker-0"

// ID identifies this replica in lock owners and logs: WORKER_ID, then DYNO, then the hostname.
func ID() string {
	if id := env.First("WORKER_ID", "DYNO"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return fallbackID
}
