package clients

import "context"

// RetryOnUnauthorized runs call; when it fails with a 401 it runs refresh once and
// then call exactly once more. Any other failure, or a failing refresh, is returned
// as is. There is never more than one retry.
func RetryOnUnauthorized(ctx context.Context, refresh func(context.Context) error, call func(context.Context) error) error {
	err := call(ctx)
	if err == nil || !IsUnauthorized(err) {
		return err
	}
	if rerr := refresh(ctx); rerr != nil {
		return rerr
	}
	return call(ctx)
}
