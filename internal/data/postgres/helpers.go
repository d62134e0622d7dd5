package postgres

import "time"

// nullableTime maps a zero time to SQL NULL so optional range bounds can be
// expressed in a single query.
func nullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
