package retry

import (
	"time"

	wbfretry "github.com/wb-go/wbf/retry"
)

// DefaultStrategy is used for database statements and queue publishes.
var DefaultStrategy = wbfretry.Strategy{
	Attempts: 3,
	Delay:    500 * time.Millisecond,
	Backoff:  2.0,
}
