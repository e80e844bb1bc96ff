// Package errors enumerates the abstract error taxonomy from spec.md
// section 7 as wrapped sentinel errors. Callers use errors.Is/errors.As
// (stdlib) to classify a failure and decide whether it degrades, retries,
// or propagates.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Wrap these with fmt.Errorf("...: %w", KindX) to attach
// context while preserving classification.
var (
	// TransientNetwork covers timeout, DNS, and connection-reset failures.
	// Retried with exponential backoff; exhausting retries degrades the
	// source's reputation via a FeedbackSignal.
	TransientNetwork = errors.New("transient network error")

	// RateLimited covers upstream 429/quota responses. The LLM layer
	// rotates keys; the scraper layer defers the source with an increased
	// TTL.
	RateLimited = errors.New("rate limited")

	// ContentInvalid covers HTML parse failure, empty body, or corrupted
	// encoding. The article is dropped, never retried.
	ContentInvalid = errors.New("content invalid")

	// QualityRejected means the article was fetched successfully but
	// failed the quality filter. Not retried.
	QualityRejected = errors.New("quality rejected")

	// DuplicateDetected is not a failure; it routes the caller to the
	// cluster-update path instead of the accept path.
	DuplicateDetected = errors.New("duplicate detected")

	// DependencyUnavailable covers embedding-model load failure, vector
	// index unavailability, or an LLM pool with no available keys. A
	// fallback path is mandatory wherever this is returned; the pipeline
	// degrades but never fails outright.
	DependencyUnavailable = errors.New("dependency unavailable")

	// StorageError covers write/read failures against the relational,
	// document, or KV stores.
	StorageError = errors.New("storage error")

	// InvalidInput covers a malformed record crossing a layer boundary
	// (e.g. a RawArticle with no ArticleID reaching L2).
	InvalidInput = errors.New("invalid input")
)

// Wrap attaches a sentinel kind to a lower-level error with a short message,
// preserving errors.Is(err, kind) for callers and errors.Unwrap for the
// underlying cause.
func Wrap(kind error, msg string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%s: %w", msg, kind)
	}
	return fmt.Errorf("%s: %w: %w", msg, kind, cause)
}

// Is reports whether err is classified as kind.
func Is(err, kind error) bool {
	return errors.Is(err, kind)
}
