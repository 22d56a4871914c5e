package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/triplog/tracking-system/internal/core/domain"
)

const itineraryTimeout = 10 * time.Second

// ItineraryClient fetches the trip's waypoint sequence from the
// collector. It implements ports.WaypointSource and is read fresh on
// every derivation, so itinerary edits take effect immediately.
type ItineraryClient struct {
	baseURL string
	token   string
	tripID  string
	client  *http.Client
}

func NewItineraryClient(baseURL, token, tripID string) *ItineraryClient {
	return &ItineraryClient{
		baseURL: baseURL,
		token:   token,
		tripID:  tripID,
		client:  &http.Client{Timeout: itineraryTimeout},
	}
}

func (c *ItineraryClient) Waypoints(ctx context.Context) ([]domain.Waypoint, error) {
	url := fmt.Sprintf("%s/api/v1/trips/%s/itinerary", c.baseURL, c.tripID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch itinerary: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch itinerary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// a trip without an itinerary derives as hidden
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch itinerary: collector returned %d", resp.StatusCode)
	}

	var body struct {
		Waypoints []domain.Waypoint `json:"waypoints"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("fetch itinerary: %w", err)
	}
	return body.Waypoints, nil
}
