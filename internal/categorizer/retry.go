package categorizer

import (
	"context"
	"errors"
	"time"

	"fjacquet/txcat/internal/apperrors"
	"fjacquet/txcat/internal/logging"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds the attempts made for one completion call.
type RetryPolicy struct {
	// MaxAttempts counts the first call. Values below 1 mean 1.
	MaxAttempts int
	// BaseDelay is multiplied by the attempt number between attempts.
	BaseDelay time.Duration
}

type callStatus int

const (
	callSucceeded callStatus = iota
	// callExhausted means every attempt failed with a retryable error.
	callExhausted
	// callAborted means retrying stopped early because the context ended.
	callAborted
)

func (s callStatus) String() string {
	switch s {
	case callSucceeded:
		return "succeeded"
	case callExhausted:
		return "exhausted"
	default:
		return "aborted"
	}
}

type callOutcome struct {
	Status   callStatus
	Response CompletionResponse
	Attempts int
	Err      error
}

// linearBackOff waits attempt × base between attempts.
type linearBackOff struct {
	base    time.Duration
	attempt int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return time.Duration(b.attempt) * b.base
}

func (b *linearBackOff) Reset() {
	b.attempt = 0
}

// callWithRetry runs one completion call under policy. Attempts never overlap.
// Token counts are only taken from a successful response, so a failed or
// cancelled call reports no usage.
func callWithRetry(ctx context.Context, client CompletionClient, req CompletionRequest, policy RetryPolicy, logger logging.Logger) callOutcome {
	maxAttempts := policy.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var outcome callOutcome
	operation := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		outcome.Attempts++
		resp, err := client.Complete(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		outcome.Response = resp
		return nil
	}
	notify := func(err error, wait time.Duration) {
		logger.WithError(err).Debug("Completion call failed, retrying",
			logging.Field{Key: logging.FieldProvider, Value: client.Provider()},
			logging.Field{Key: logging.FieldAttempt, Value: outcome.Attempts},
			logging.Field{Key: logging.FieldDiagnosis, Value: apperrors.Diagnose(err)},
			logging.Field{Key: logging.FieldDuration, Value: wait.Milliseconds()})
	}

	policyBackOff := backoff.WithContext(
		backoff.WithMaxRetries(&linearBackOff{base: policy.BaseDelay}, uint64(maxAttempts-1)), // #nosec G115 -- maxAttempts >= 1
		ctx,
	)

	err := backoff.RetryNotify(operation, policyBackOff, notify)
	switch {
	case err == nil:
		outcome.Status = callSucceeded
	case ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		outcome.Status = callAborted
		outcome.Response = CompletionResponse{}
		outcome.Err = err
	default:
		outcome.Status = callExhausted
		outcome.Response = CompletionResponse{}
		outcome.Err = err
	}
	return outcome
}

// logCallFailure reports a failed call with its diagnosis.
func logCallFailure(logger logging.Logger, provider string, outcome callOutcome, fields ...logging.Field) {
	all := append([]logging.Field{
		{Key: logging.FieldProvider, Value: provider},
		{Key: logging.FieldAttempt, Value: outcome.Attempts},
		{Key: logging.FieldDiagnosis, Value: apperrors.Diagnose(outcome.Err)},
		{Key: logging.FieldReason, Value: outcome.Status.String()},
	}, fields...)
	logger.WithError(outcome.Err).Warn("Completion call failed", all...)
}
