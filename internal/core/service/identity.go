package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/triplog/tracking-system/internal/core/ports"
)

const deviceIDKey = "device_id"

// EnsureDeviceID returns the stable per-install device identifier,
// generating one (timestamp plus random suffix) and persisting it on
// first use.
func EnsureDeviceID(store ports.KeyValueStore) (string, error) {
	raw, err := store.Get(deviceIDKey)
	if err == nil && len(raw) > 0 {
		return string(raw), nil
	}
	if err != nil && !errors.Is(err, ports.ErrKeyNotFound) {
		return "", fmt.Errorf("read device id: %w", err)
	}

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	id := fmt.Sprintf("dev-%d-%s", time.Now().UTC().Unix(), suffix)

	if err := store.Set(deviceIDKey, []byte(id)); err != nil {
		return "", fmt.Errorf("persist device id: %w", err)
	}
	return id, nil
}
