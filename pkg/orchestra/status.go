package orchestra

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DeviceStatus is one row of the fleet dashboard.
type DeviceStatus struct {
	Host     string
	DeviceID string
	Online   bool
	Err      string
	Norm     float64
	Lux      float64
	UptimeMs int64
}

// CollectStatuses polls /health and /sensor on every device concurrently.
// Transient failures are retried briefly with exponential backoff before a
// device is reported offline. The result order matches hosts.
func CollectStatuses(ctx context.Context, hosts []string, timeout time.Duration) []DeviceStatus {
	out := make([]DeviceStatus, len(hosts))
	var wg sync.WaitGroup
	for i, h := range hosts {
		wg.Add(1)
		go func(i int, host string) {
			defer wg.Done()
			out[i] = deviceStatus(ctx, host, timeout)
		}(i, h)
	}
	wg.Wait()
	return out
}

func deviceStatus(ctx context.Context, host string, timeout time.Duration) DeviceStatus {
	st := DeviceStatus{Host: host, DeviceID: "n/a"}
	cl := NewClient(host, timeout)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	bo.MaxElapsedTime = 2 * time.Second

	err := backoff.Retry(func() error {
		h, err := cl.Health(ctx)
		if err != nil {
			return err
		}
		r, err := cl.Sensor(ctx)
		if err != nil {
			return err
		}
		st.DeviceID = h.DeviceID
		st.UptimeMs = h.UptimeMs
		st.Norm = r.Norm
		st.Lux = r.Lux
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(bo, 2), ctx))

	if err != nil {
		st.Err = err.Error()
		return st
	}
	st.Online = true
	return st
}

// RenderStatuses writes the fleet table, one row per device, with a small
// bar graph of the normalized light level.
func RenderStatuses(w io.Writer, statuses []DeviceStatus) {
	line := strings.Repeat("-", 72)
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "%-18s %-22s %-8s %s\n", "Host", "Device ID", "Status", "Light Level")
	fmt.Fprintln(w, line)
	for _, st := range statuses {
		status := "online"
		if !st.Online {
			status = "offline"
			if st.Err != "" {
				status = "offline (" + st.Err + ")"
			}
		}
		fmt.Fprintf(w, "%-18s %-22s %-8s [%s] %.2f  %4.0f lux\n",
			st.Host, st.DeviceID, status, lightBar(st.Norm), st.Norm, st.Lux)
	}
	fmt.Fprintln(w, line)
	fmt.Fprintln(w, "Last updated:", time.Now().Format("2006-01-02 15:04:05"))
}

func lightBar(norm float64) string {
	n := int(norm * 10)
	if n < 0 {
		n = 0
	}
	if n > 10 {
		n = 10
	}
	return strings.Repeat("#", n) + strings.Repeat("-", 10-n)
}
