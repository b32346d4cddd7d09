package redis

import (
	"strconv"
	"sync/atomic"

	"github.com/redis/rueidis"
)

// NewStoreForTest creates a Store with the provided rueidis client and
// sequential document ids "1", "2", ... (test-only).
func NewStoreForTest(c rueidis.Client) *Store {
	s := newStore(c, "")
	var seq atomic.Int64
	s.newID = func() (string, error) {
		return strconv.FormatInt(seq.Add(1), 10), nil
	}
	return s
}
