package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/triplog/tracking-system/internal/core/domain"
	"github.com/triplog/tracking-system/internal/core/ports"
	"github.com/triplog/tracking-system/internal/core/service"
	"github.com/triplog/tracking-system/internal/infrastructure/config"
	"github.com/triplog/tracking-system/internal/infrastructure/gps"
	"github.com/triplog/tracking-system/internal/infrastructure/httpclient"
	"github.com/triplog/tracking-system/internal/infrastructure/localstore"
	"github.com/triplog/tracking-system/internal/infrastructure/mqtt"
	"github.com/triplog/tracking-system/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	cfg := config.LoadSampler()

	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Persistent device state ---
	store, err := localstore.New(cfg.StateDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.StateDir).Msg("state dir unusable")
	}
	deviceID, err := service.EnsureDeviceID(store)
	if err != nil {
		log.Fatal().Err(err).Msg("device identity unavailable")
	}
	log.Info().Str("device_id", deviceID).Msg("device identity loaded")

	// --- Location provider ---
	provider, cleanup, err := buildProvider(ctx, cfg, log)
	if fatalProviderErr(err) {
		log.Fatal().Err(err).Msg("gps receiver setup failed")
	}
	defer cleanup()

	// --- Delivery path ---
	submitter := httpclient.NewSubmitter(cfg.APIBaseURL, cfg.APIToken)
	queue := service.NewOfflineQueue(store, service.DefaultQueueCapacity, log)

	// --- Progress tracking ---
	var publisher ports.PositionPublisher
	if cfg.MQTT.BrokerURL != "" {
		p, err := mqtt.Connect(mqtt.Config{
			BrokerURL: cfg.MQTT.BrokerURL,
			ClientID:  cfg.MQTT.ClientID,
			Username:  cfg.MQTT.Username,
			Password:  cfg.MQTT.Password,
		}, log)
		if err != nil {
			log.Warn().Err(err).Msg("live publishing disabled, broker unreachable")
		} else {
			defer p.Close()
			publisher = p
		}
	}

	itinerary := httpclient.NewItineraryClient(cfg.APIBaseURL, cfg.APIToken, cfg.TripID)
	tracker := service.NewProgressTracker(itinerary, publisher, cfg.TripID, log)

	sampler := service.NewSampler(provider, submitter, queue, tracker, deviceID, service.SamplerOptions{
		Interval:       cfg.Interval,
		AcquireTimeout: cfg.AcquireTimeout,
		MaxFixAge:      cfg.MaxFixAge,
	}, log)

	result := sampler.RequestTracking(ctx)
	fmt.Println(result.Message)
	if result.Outcome != service.StartStarted {
		return
	}

	<-ctx.Done()
	sampler.StopTracking()
}

// buildProvider picks the location source: a simulated route when
// configured, otherwise the serial NMEA receiver.
func buildProvider(ctx context.Context, cfg *config.SamplerConfig, log zerolog.Logger) (ports.LocationProvider, func(), error) {
	if cfg.SimulateRoute != "" {
		route, err := parseRoute(cfg.SimulateRoute)
		if err != nil {
			return nil, func() {}, err
		}
		log.Info().Int("points", len(route)).Msg("using simulated gps route")
		return gps.NewSimulatedProvider(route), func() {}, nil
	}

	provider := gps.NewProvider(cfg.SerialPort, cfg.SerialBaud, log)
	if err := provider.Start(ctx); err != nil {
		// an unavailable or denied receiver is reported by RequestTracking,
		// not fatal
		return provider, func() {}, err
	}
	return provider, func() { _ = provider.Close() }, nil
}

// fatalProviderErr reports whether a receiver setup error should abort the
// agent. Unavailable and permission-denied receivers are surfaced through
// the tracking request as classified, user-facing outcomes instead.
func fatalProviderErr(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, domain.ErrCapabilityUnavailable) &&
		!errors.Is(err, domain.ErrPermissionDenied)
}

// parseRoute parses "lat,lng;lat,lng;..." into coordinates.
func parseRoute(s string) ([]domain.Coordinates, error) {
	var route []domain.Coordinates
	for _, pair := range strings.Split(s, ";") {
		parts := strings.Split(strings.TrimSpace(pair), ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid route point %q", pair)
		}
		lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		lng, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("invalid route point %q", pair)
		}
		route = append(route, domain.Coordinates{Lat: lat, Lng: lng})
	}
	return route, nil
}
