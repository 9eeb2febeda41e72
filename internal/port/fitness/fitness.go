// Package fitness defines the activity-lookup port for the fitness provider.
package fitness

import "context"

// Activity is the subset of a fitness activity the relay cares about.
type Activity struct {
	ID   int64
	Name string
	Type string // e.g. "Ride", "VirtualRide", "Workout"
}

// Client is the port interface for fetching activity details.
type Client interface {
	// Activity fetches full details for the given activity id.
	Activity(ctx context.Context, id int64) (Activity, error)

	// IsVirtualRide reports whether the activity is a virtual ride.
	// Transport failures surface as errors; there is no safe default.
	IsVirtualRide(ctx context.Context, id int64) (bool, error)
}
