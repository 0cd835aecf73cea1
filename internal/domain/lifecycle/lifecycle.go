// Package lifecycle holds shared limits for start and stop hooks.
package lifecycle

import "time"

// DefaultTimeout bounds each start or stop hook (DB ping, migrations, HTTP shutdown).
const DefaultTimeout = 15 * time.Second
