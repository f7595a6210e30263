package domain

import (
	"fmt"
	"sync/atomic"
	"time"
)

var orderSeq atomic.Uint64

// NewOrderNumber returns a timestamp-derived token. The monotonic suffix keeps
// two orders created within the same clock tick distinct.
func NewOrderNumber() string {
	return fmt.Sprintf("ORD-%d-%d", time.Now().UnixMilli(), orderSeq.Add(1))
}
