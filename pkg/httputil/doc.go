// Package httputil provides HTTP helpers shared by the remote fetch client.
//
// # Retry
//
// [Retry] wraps an operation with automatic retry for transient failures.
// Only errors wrapped with [Retryable] are retried; everything else returns
// immediately:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    defer resp.Body.Close()
//	    return httputil.CheckStatus(resp.StatusCode, req.URL.String())
//	})
//
// [CheckStatus] classifies response codes: 2xx succeed, 5xx and 429 are
// retryable, other codes fail with a [StatusError].
//
// # Configuration
//
// [RetryWithBackoff] uses 3 attempts and a 1 second initial delay that
// doubles after each failure.
package httputil
