package port

import "time"

// Clock supplies the current time so timing rules can be tested with fixed times.
type Clock interface {
	Now() time.Time
}
