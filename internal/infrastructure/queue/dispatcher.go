package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/triplog/tracking-system/internal/api/metrics"
	"github.com/triplog/tracking-system/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Dispatcher routes submitted position samples to a fixed set of workers
// using consistent hashing on the device id, guaranteeing per-device
// processing order even when a flushed offline queue arrives in a burst.
type Dispatcher struct {
	workers []chan ports.PositionInput
	service ports.IngestService
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.IngestService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.PositionInput, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.PositionInput, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends a sample to the worker responsible for its device.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(in ports.PositionInput) {
	idx := d.shardIndex(in.DeviceID)
	d.workers[idx] <- in
	metrics.SamplesQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

// EnqueueBatch enqueues multiple samples preserving per-device ordering.
func (d *Dispatcher) EnqueueBatch(ins []ports.PositionInput) {
	for _, in := range ins {
		d.Enqueue(in)
	}
}

// shardIndex maps a device id deterministically to a worker index.
func (d *Dispatcher) shardIndex(deviceID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(deviceID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.PositionInput) {
	for {
		select {
		case <-ctx.Done():
			return
		case in, ok := <-ch:
			if !ok {
				return
			}
			start := time.Now()
			result := "ok"
			if err := d.service.Process(ctx, in); err != nil {
				result = "error"
				metrics.SamplesErrorsTotal.WithLabelValues("process_failed").Inc()
				d.log.Error().Err(err).
					Str("device_id", in.DeviceID).
					Int("worker_id", id).
					Msg("sample processing failed")
			} else {
				metrics.SamplesProcessedTotal.WithLabelValues(in.TripID).Inc()
			}
			metrics.SampleProcessingDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
			metrics.SamplesQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
		}
	}
}
