package config

import (
	"errors"
	"fmt"
)

var errMissingCredentials = errors.New("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required with MINIO_ENDPOINT")

// EnvError reports an unusable environment variable.
type EnvError struct {
	Key string
	Err error
}

func (e *EnvError) Error() string {
	return fmt.Sprintf("config: %s: %v", e.Key, e.Err)
}

func (e *EnvError) Unwrap() error { return e.Err }
