package h264encoder

import (
	"fmt"
	"strings"
	"sync"
	"testing"
)

func TestLockedBuffer_ConcurrentWriteAndRead(t *testing.T) {
	var b lockedBuffer
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				fmt.Fprintf(&b, "w%d\n", n)
			}
		}(i)
	}
	for i := 0; i < 50; i++ {
		_ = b.String()
	}
	wg.Wait()

	if got := strings.Count(b.String(), "\n"); got != 400 {
		t.Errorf("lines = %d, want 400", got)
	}
}
