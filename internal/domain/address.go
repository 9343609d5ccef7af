package domain

import "math"

// Address is a delivery or origin location
type Address struct {
	Line1     string   `bson:"line1,omitempty" json:"line1,omitempty"`
	Line2     string   `bson:"line2,omitempty" json:"line2,omitempty"`
	City      string   `bson:"city,omitempty" json:"city,omitempty"`
	State     string   `bson:"state,omitempty" json:"state,omitempty"`
	Country   string   `bson:"country" json:"country"`
	Pincode   string   `bson:"pincode" json:"pincode"`
	Latitude  *float64 `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude *float64 `bson:"longitude,omitempty" json:"longitude,omitempty"`
}

// HasCoordinates reports whether the address carries geocoordinates
func (a Address) HasCoordinates() bool {
	return a.Latitude != nil && a.Longitude != nil
}

// DistanceEstimator estimates the distance between two addresses.
// Implementations may use geocoordinates or coarser heuristics.
type DistanceEstimator interface {
	Estimate(from, to Address) float64
}

// Distance heuristic constants used when geocoordinates are unavailable
const (
	DistanceSamePincode   = 0
	DistanceSamePrefix    = 10
	DistanceDifferentArea = 100
)

// PincodeDistanceEstimator estimates distance using haversine when both
// addresses carry coordinates, and a pincode-prefix heuristic otherwise:
// identical pincode scores 0, a shared 3-digit prefix scores 10, anything
// else scores 100.
type PincodeDistanceEstimator struct{}

// NewPincodeDistanceEstimator creates the default distance estimator
func NewPincodeDistanceEstimator() *PincodeDistanceEstimator {
	return &PincodeDistanceEstimator{}
}

// Estimate returns the estimated distance between two addresses
func (e *PincodeDistanceEstimator) Estimate(from, to Address) float64 {
	if from.HasCoordinates() && to.HasCoordinates() {
		return haversineKm(*from.Latitude, *from.Longitude, *to.Latitude, *to.Longitude)
	}

	if from.Pincode != "" && from.Pincode == to.Pincode {
		return DistanceSamePincode
	}
	if len(from.Pincode) >= 3 && len(to.Pincode) >= 3 && from.Pincode[:3] == to.Pincode[:3] {
		return DistanceSamePrefix
	}
	return DistanceDifferentArea
}

const earthRadiusKm = 6371.0

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
