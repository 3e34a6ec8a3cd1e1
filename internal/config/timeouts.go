package config

import (
	"time"

	"github.com/spf13/viper"
)

// Timeouts holds Hetzner Cloud API timeouts and retry parameters.
type Timeouts struct {
	ServerCreate      time.Duration // Timeout for server creation
	Delete            time.Duration // Timeout for every delete operation
	ActionWait        time.Duration // Timeout for waiting on an API action
	RetryMaxAttempts  int           // Maximum number of retries
	RetryInitialDelay time.Duration // Initial delay between retries
}

// LoadTimeouts reads timeouts from the environment, falling back to
// defaults for unset or invalid values.
//
// Environment Variables:
//   - HCLOUD_TIMEOUT_SERVER_CREATE (default: 10m)
//   - HCLOUD_TIMEOUT_DELETE (default: 5m)
//   - HCLOUD_TIMEOUT_ACTION_WAIT (default: 5m)
//   - HCLOUD_RETRY_MAX_ATTEMPTS (default: 5)
//   - HCLOUD_RETRY_INITIAL_DELAY (default: 1s)
func LoadTimeouts() *Timeouts {
	v := viper.New()
	v.SetEnvPrefix("HCLOUD")
	v.AutomaticEnv()

	return &Timeouts{
		ServerCreate:      durationOr(v, "timeout_server_create", 10*time.Minute),
		Delete:            durationOr(v, "timeout_delete", 5*time.Minute),
		ActionWait:        durationOr(v, "timeout_action_wait", 5*time.Minute),
		RetryMaxAttempts:  intOr(v, "retry_max_attempts", 5),
		RetryInitialDelay: durationOr(v, "retry_initial_delay", time.Second),
	}
}

// TestTimeouts returns short timeouts for tests that exercise retries and
// action polling against a fake API.
func TestTimeouts() *Timeouts {
	return &Timeouts{
		ServerCreate:      10 * time.Second,
		Delete:            10 * time.Second,
		ActionWait:        10 * time.Second,
		RetryMaxAttempts:  3,
		RetryInitialDelay: 10 * time.Millisecond,
	}
}
