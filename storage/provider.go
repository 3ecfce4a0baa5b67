// Package storage keeps drone photos in an object store.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"
)

// PhotoStore stores photo objects by key.
type PhotoStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// PresignGet returns a URL the browser can fetch the object from.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// PhotoKey is the object key of a drone's photo.
func PhotoKey(userID, droneID string) string {
	return fmt.Sprintf("drones/%s/%s", userID, droneID)
}

// PhotoURL is the API path that redirects to a drone's stored photo.
func PhotoURL(droneID string) string {
	return "/api/drones/" + droneID + "/photo"
}
