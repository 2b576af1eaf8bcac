package kernel

import (
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

const (
	minLatitude  = -90.0
	maxLatitude  = 90.0
	minLongitude = -180.0
	maxLongitude = 180.0
)

// ErrGeoPointIsNotConstructed is returned when a zero-value GeoPoint is validated.
var ErrGeoPointIsNotConstructed = errs.NewValueIsRequiredError("geo point must be created via NewGeoPoint")

// GeoPoint is the customer's device location captured at checkout. The core
// does not interpret it; it is stored and forwarded to delivery notifications.
type GeoPoint struct { //nolint:recvcheck //using for validation
	latitude   float64
	longitude  float64
	accuracy   float64
	capturedAt time.Time
	guard      guard.ConstructorGuard
}

// NewGeoPoint validates coordinate ranges and a non-negative accuracy in meters.
func NewGeoPoint(latitude, longitude, accuracy float64, capturedAt time.Time) (GeoPoint, error) {
	var errList []error
	if latitude < minLatitude || latitude > maxLatitude {
		errList = append(errList, errs.NewValueIsOutOfRangeError("latitude", latitude, minLatitude, maxLatitude))
	}
	if longitude < minLongitude || longitude > maxLongitude {
		errList = append(errList, errs.NewValueIsOutOfRangeError("longitude", longitude, minLongitude, maxLongitude))
	}
	if accuracy < 0 {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("accuracy",
			fmt.Errorf("%v is negative", accuracy)))
	}
	if capturedAt.IsZero() {
		errList = append(errList, errs.NewValueIsRequiredError("captured at"))
	}
	if err := errors.Join(errList...); err != nil {
		return GeoPoint{}, err
	}

	return GeoPoint{
		latitude:   latitude,
		longitude:  longitude,
		accuracy:   accuracy,
		capturedAt: capturedAt.UTC(),
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (g GeoPoint) Validate() error {
	return g.guard.Validate(ErrGeoPointIsNotConstructed)
}

func (g GeoPoint) Latitude() float64 {
	return g.latitude
}

func (g GeoPoint) Longitude() float64 {
	return g.longitude
}

// Accuracy is the reported radius of uncertainty in meters.
func (g GeoPoint) Accuracy() float64 {
	return g.accuracy
}

func (g GeoPoint) CapturedAt() time.Time {
	return g.capturedAt
}

// String renders the point as "lat,lng".
func (g GeoPoint) String() string {
	return fmt.Sprintf("%.6f,%.6f", g.latitude, g.longitude)
}
