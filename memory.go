package main

import (
	"os"
	"sync"
	"time"

	"github.com/shirou/gopsutil/process"
)

const samplingInterval = 10 * time.Millisecond

var rssBytesFunc = rssBytes

// measurePeakResidentMemory runs fn while polling the resident set size and
// returns fn's results together with the highest reading seen.
func measurePeakResidentMemory[T any](fn func() (T, error)) (T, float64, error) {
	baseline := rssBytesFunc()
	peak := baseline

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(samplingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if current := rssBytesFunc(); current > peak {
					peak = current
				}
			case <-stop:
				return
			}
		}
	}()

	out, err := fn()
	close(stop)
	wg.Wait()

	if current := rssBytesFunc(); current > peak {
		peak = current
	}
	return out, peak, err
}

var self = sync.OnceValues(func() (*process.Process, error) {
	return process.NewProcess(int32(os.Getpid()))
})

func rssBytes() float64 {
	p, err := self()
	if err != nil {
		return 0
	}
	mem, err := p.MemoryInfo()
	if err != nil {
		return 0
	}
	return float64(mem.RSS)
}
