package core

import (
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// UUIDs returns an ID generator producing random UUIDs.
func UUIDs() func() string {
	return uuid.NewString
}

// TimestampIDs returns an ID generator producing millisecond timestamps, the
// format used by the mobile app. IDs are strictly increasing within the
// process, even when several are drawn in the same millisecond.
func TimestampIDs(clock func() time.Time) func() string {
	if clock == nil {
		clock = time.Now
	}
	var (
		mu   sync.Mutex
		last int64
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		ms := clock().UnixMilli()
		if ms <= last {
			ms = last + 1
		}
		last = ms
		return strconv.FormatInt(ms, 10)
	}
}
