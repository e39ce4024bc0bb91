package apperrors

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Diagnosis is a coarse classification of a completion failure, used in logs.
type Diagnosis string

const (
	DiagnosisAuth      Diagnosis = "auth"
	DiagnosisRateLimit Diagnosis = "rate_limit"
	DiagnosisTimeout   Diagnosis = "timeout"
	DiagnosisNetwork   Diagnosis = "network"
	DiagnosisCancelled Diagnosis = "cancelled"
	DiagnosisUnknown   Diagnosis = "unknown"
)

// Diagnose classifies err. It understands CompletionError status codes,
// googleapi and gRPC errors from the Gemini SDK, net.Error and context errors,
// and falls back to matching well-known phrases in the message.
func Diagnose(err error) Diagnosis {
	if err == nil {
		return DiagnosisUnknown
	}
	if errors.Is(err, context.Canceled) {
		return DiagnosisCancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return DiagnosisTimeout
	}

	var completionErr *CompletionError
	if errors.As(err, &completionErr) && completionErr.StatusCode != 0 {
		if d, ok := fromHTTPStatus(completionErr.StatusCode); ok {
			return d
		}
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if d, ok := fromHTTPStatus(apiErr.Code); ok {
			return d
		}
	}

	if st, ok := status.FromError(err); ok && st.Code() != codes.OK && st.Code() != codes.Unknown {
		if d, ok := fromGRPCCode(st.Code()); ok {
			return d
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return DiagnosisTimeout
		}
		return DiagnosisNetwork
	}

	return fromMessage(err.Error())
}

func fromHTTPStatus(code int) (Diagnosis, bool) {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return DiagnosisAuth, true
	case http.StatusTooManyRequests:
		return DiagnosisRateLimit, true
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return DiagnosisTimeout, true
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		return DiagnosisNetwork, true
	}
	return "", false
}

func fromGRPCCode(code codes.Code) (Diagnosis, bool) {
	switch code {
	case codes.Unauthenticated, codes.PermissionDenied:
		return DiagnosisAuth, true
	case codes.ResourceExhausted:
		return DiagnosisRateLimit, true
	case codes.DeadlineExceeded:
		return DiagnosisTimeout, true
	case codes.Unavailable:
		return DiagnosisNetwork, true
	case codes.Canceled:
		return DiagnosisCancelled, true
	}
	return "", false
}

var messagePatterns = []struct {
	diagnosis Diagnosis
	phrases   []string
}{
	{DiagnosisAuth, []string{"api key", "api_key", "unauthorized", "unauthenticated", "permission denied", "forbidden"}},
	{DiagnosisRateLimit, []string{"rate limit", "rate_limit", "quota", "too many requests", "resource exhausted"}},
	{DiagnosisTimeout, []string{"timeout", "timed out", "deadline exceeded"}},
	{DiagnosisNetwork, []string{"connection refused", "connection reset", "no such host", "network", "eof", "unavailable"}},
}

func fromMessage(msg string) Diagnosis {
	lower := strings.ToLower(msg)
	for _, p := range messagePatterns {
		for _, phrase := range p.phrases {
			if strings.Contains(lower, phrase) {
				return p.diagnosis
			}
		}
	}
	return DiagnosisUnknown
}
