package location

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"portal/backend/internal/entity"
)

// ErrUnavailable tags every capture failure: permission denied, timeout,
// no geolocation capability. A failed capture never yields partial
// coordinates.
var ErrUnavailable = errors.New("location unavailable")

// Capturer produces the employee's current coordinates. The underlying
// source may block on a user-granted permission prompt, so callers wrap
// it with a timeout.
type Capturer interface {
	Capture(ctx context.Context) (entity.LocationSample, error)
}

// CaptureFunc adapts a function to the Capturer interface.
type CaptureFunc func(ctx context.Context) (entity.LocationSample, error)

func (f CaptureFunc) Capture(ctx context.Context) (entity.LocationSample, error) {
	return f(ctx)
}

// Static wraps coordinates that were already captured elsewhere, such
// as the browser geolocation values posted with an HTTP request.
func Static(sample entity.LocationSample) Capturer {
	return CaptureFunc(func(context.Context) (entity.LocationSample, error) {
		return sample, nil
	})
}

// WithTimeout bounds a capture. The wrapped Capturer keeps running in
// the background on expiry; its late result is discarded.
func WithTimeout(capturer Capturer, limit time.Duration) Capturer {
	return CaptureFunc(func(ctx context.Context) (entity.LocationSample, error) {
		ctx, cancel := context.WithTimeout(ctx, limit)
		defer cancel()

		type result struct {
			sample entity.LocationSample
			err    error
		}

		done := make(chan result, 1)
		go func() {
			sample, err := capturer.Capture(ctx)
			done <- result{sample, err}
		}()

		select {
		case r := <-done:
			if r.err != nil {
				return entity.LocationSample{}, errors.Wrap(ErrUnavailable, r.err.Error())
			}
			return r.sample, nil
		case <-ctx.Done():
			return entity.LocationSample{}, errors.Wrap(ErrUnavailable, "capture timed out")
		}
	})
}

// Geocoder turns coordinates into a human-readable address.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, latitude, longitude float64) (string, error)
}

// Nominatim reverse-geocodes against the OpenStreetMap Nominatim API.
type Nominatim struct {
	baseURL string
	client  *http.Client
}

func NewNominatim(baseURL string) *Nominatim {
	if baseURL == "" {
		baseURL = "https://nominatim.openstreetmap.org"
	}
	return &Nominatim{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (n *Nominatim) ReverseGeocode(ctx context.Context, latitude, longitude float64) (string, error) {
	query := url.Values{}
	query.Set("format", "jsonv2")
	query.Set("lat", strconv.FormatFloat(latitude, 'f', 6, 64))
	query.Set("lon", strconv.FormatFloat(longitude, 'f', 6, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/reverse?"+query.Encode(), nil)
	if err != nil {
		return "", errors.Wrap(err, "building reverse geocode request")
	}
	req.Header.Set("User-Agent", "portal-backend")

	resp, err := n.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "reverse geocode request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("reverse geocode: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", errors.Wrap(err, "decoding reverse geocode response")
	}
	if payload.DisplayName == "" {
		return "", errors.New("reverse geocode: address not available")
	}

	return payload.DisplayName, nil
}

// MapLink builds the coordinate-based display string persisted when no
// address is available.
func MapLink(sample entity.LocationSample) string {
	return fmt.Sprintf("https://www.google.com/maps?q=%.6f,%.6f", sample.Latitude, sample.Longitude)
}

// Reference derives the display string stored with an attendance row:
// the reverse-geocoded address when the geocoder answers, degrading to
// the map link on any failure so a lookup outage never blocks the
// attendance write.
func Reference(ctx context.Context, geocoder Geocoder, sample entity.LocationSample) string {
	if geocoder == nil {
		return MapLink(sample)
	}

	address, err := geocoder.ReverseGeocode(ctx, sample.Latitude, sample.Longitude)
	if err != nil {
		log.Printf("location: reverse geocode failed, falling back to map link: %v", err)
		return MapLink(sample)
	}
	return address
}
