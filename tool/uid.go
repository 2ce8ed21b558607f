// Package tool small shared helpers
package tool

import (
	"fmt"
	"sync/atomic"
	"time"
)

var uidCounter atomic.Int64

// NewUniqueID returns a process-unique identifier: epoch microseconds fused
// with a monotonic sequence. Collision-free within a process and practically
// unique across restarts.
func NewUniqueID() string {
	return fmt.Sprintf("%d_%d", time.Now().UnixMicro(), uidCounter.Add(1))
}
