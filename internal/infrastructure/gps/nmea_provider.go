package gps

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	nmea "github.com/adrianmo/go-nmea"
	serial "github.com/jacobsa/go-serial/serial"
	"github.com/rs/zerolog"

	"github.com/triplog/tracking-system/internal/core/domain"
	"github.com/triplog/tracking-system/internal/core/ports"
)

// hdopBaseM converts a reported HDOP into an accuracy estimate in
// meters, assuming a nominal 5m base uncertainty for the receiver.
const hdopBaseM = 5.0

// pollInterval is how often Acquire re-checks the shared fix while
// waiting for one fresh enough.
const pollInterval = 200 * time.Millisecond

type fix struct {
	coords    domain.Coordinates
	accuracyM float64
	at        time.Time
}

// Provider reads NMEA sentences from a serial GPS receiver and serves
// them as location samples. A background goroutine keeps the latest
// valid fix; Acquire waits until one fresh enough is present.
//
// RMC sentences carry position and time, GGA sentences carry HDOP for
// the accuracy estimate.
type Provider struct {
	portName string
	baudRate uint
	log      zerolog.Logger

	mu        sync.Mutex
	port      io.ReadWriteCloser
	last      *fix
	accuracyM float64
}

func NewProvider(portName string, baudRate uint, log zerolog.Logger) *Provider {
	if baudRate == 0 {
		baudRate = 9600
	}
	return &Provider{portName: portName, baudRate: baudRate, log: log}
}

// Start opens the serial port and begins consuming sentences. The read
// loop stops when ctx is cancelled or the port errors out.
func (p *Provider) Start(ctx context.Context) error {
	if p.portName == "" {
		return domain.ErrCapabilityUnavailable
	}

	port, err := serial.Open(serial.OpenOptions{
		PortName:        p.portName,
		BaudRate:        p.baudRate,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
		ParityMode:      serial.PARITY_NONE,
	})
	if err != nil {
		if os.IsPermission(err) {
			return domain.ErrPermissionDenied
		}
		return domain.ErrCapabilityUnavailable
	}

	p.mu.Lock()
	p.port = port
	p.mu.Unlock()

	go p.readLoop(ctx, port)

	p.log.Info().Str("port", p.portName).Uint("baud", p.baudRate).Msg("gps receiver opened")
	return nil
}

// Close shuts the serial port; the read loop exits on the next read.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.port == nil {
		return nil
	}
	err := p.port.Close()
	p.port = nil
	return err
}

// Available reports whether a receiver is attached and open.
func (p *Provider) Available() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.port != nil
}

// Acquire returns the latest fix when it is no older than req.MaxAge,
// otherwise it waits for a fresh one until ctx expires.
func (p *Provider) Acquire(ctx context.Context, req ports.AcquireRequest) (domain.Sample, error) {
	if !p.Available() {
		return domain.Sample{}, domain.ErrCapabilityUnavailable
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		if s, ok := p.freshSample(req.MaxAge); ok {
			return s, nil
		}
		select {
		case <-ctx.Done():
			return domain.Sample{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (p *Provider) freshSample(maxAge time.Duration) (domain.Sample, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return domain.Sample{}, false
	}
	if maxAge > 0 && time.Since(p.last.at) > maxAge {
		return domain.Sample{}, false
	}
	return domain.Sample{
		Coordinates: p.last.coords,
		AccuracyM:   p.last.accuracyM,
		CapturedAt:  p.last.at,
	}, true
}

func (p *Provider) readLoop(ctx context.Context, port io.Reader) {
	reader := bufio.NewReader(port)

	for {
		if ctx.Err() != nil {
			return
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			p.log.Warn().Err(err).Msg("gps read failed, stopping")
			return
		}

		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "$") {
			continue
		}

		sentence, err := nmea.Parse(line)
		if err != nil {
			// partial or garbled sentences are routine on serial links
			continue
		}

		switch sentence.DataType() {
		case nmea.TypeGGA:
			m := sentence.(nmea.GGA)
			p.mu.Lock()
			p.accuracyM = m.HDOP * hdopBaseM
			p.mu.Unlock()

		case nmea.TypeRMC:
			m := sentence.(nmea.RMC)
			if string(m.Validity) != "A" {
				continue
			}
			p.mu.Lock()
			p.last = &fix{
				coords:    domain.Coordinates{Lat: m.Latitude, Lng: m.Longitude},
				accuracyM: p.accuracyM,
				at:        time.Now().UTC(),
			}
			p.mu.Unlock()
		}
	}
}
