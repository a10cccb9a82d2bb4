package outbox

import "time"

// RetryPolicy maps an attempt count to the earliest time of the next retry.
// delay = unit * base^(attempt-1): with the defaults the schedule is
// 1 min, 5 min, 25 min for attempts 1-3.
type RetryPolicy struct {
	Base int
	Unit time.Duration
}

// DefaultRetryPolicy is the production schedule.
var DefaultRetryPolicy = RetryPolicy{Base: 5, Unit: time.Minute}

// NextRetry returns the moment a record that just failed its attempt-th
// publish becomes eligible again. Always strictly after now.
func (p RetryPolicy) NextRetry(attempt int, now time.Time) time.Time {
	if attempt < 1 {
		attempt = 1
	}

	delay := p.Unit
	for i := 1; i < attempt; i++ {
		delay *= time.Duration(p.Base)
	}

	return now.Add(delay)
}
