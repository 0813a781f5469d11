package credentials

import "context"

// Repo is the durable key-value backend the credential store persists into.
// Values are opaque strings; a missing key is reported with ok == false, not an error.
type Repo interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
}
