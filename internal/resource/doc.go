// Package resource bounds the number of similarity queries running at once.
//
// A full scan touches every vector, so a burst of concurrent queries is
// CPU-bound. The Controller admits at most a fixed number of queries and
// makes the rest wait until a slot frees up or their context ends:
//
//	rc := resource.NewController(resource.Config{MaxConcurrentQueries: 4})
//	if err := rc.AcquireQuery(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseQuery()
//
// A nil *Controller admits everything.
package resource
