package services

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FailureKind is the user-facing category of a failed provider call.
type FailureKind int

const (
	FailureUnknown FailureKind = iota
	FailureConfiguration
	FailureQuota
	FailureContentRejected
)

func (k FailureKind) String() string {
	switch k {
	case FailureConfiguration:
		return "configuration"
	case FailureQuota:
		return "quota"
	case FailureContentRejected:
		return "content_rejected"
	default:
		return "unknown"
	}
}

// Branded replies shown in the chat widget. They never contain provider
// details or the rejected input.
const (
	MessageConfiguration   = "Security protocol failure. The Logic Core is not authorized to run. The operator has been alerted."
	MessageQuota           = "Logic Core at capacity. Too many audits in flight; wait thirty seconds and resubmit."
	MessageContentRejected = "Signal rejected by the integrity filter. Rephrase your position in plain strategic terms."
	MessageUnknown         = "Logic Core disrupted. Signal interference detected. Retry shortly."
	MessageInvalidRequest  = "Empty transmission. State your position before the audit can begin."
)

// UserMessage returns the stable reply for a failure category.
func UserMessage(kind FailureKind) string {
	switch kind {
	case FailureConfiguration:
		return MessageConfiguration
	case FailureQuota:
		return MessageQuota
	case FailureContentRejected:
		return MessageContentRejected
	default:
		return MessageUnknown
	}
}

var (
	quotaSignals      = []string{"429", "quota", "rate limit", "ratelimit", "resource_exhausted", "resource exhausted", "too many requests"}
	safetySignals     = []string{"safety", "blocked", "prohibited_content", "blocklist"}
	credentialSignals = []string{"api key", "api_key", "permission_denied", "unauthenticated", "unauthorized", "401", "403"}
)

// ClassifyFailure maps an opaque provider error onto a FailureKind.
// Structured error types are consulted first; the error text is only
// sniffed when the client library did not surface a code.
func ClassifyFailure(err error) FailureKind {
	if err == nil {
		return FailureUnknown
	}

	if errors.Is(err, ErrMissingAPIKey) {
		return FailureConfiguration
	}

	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return FailureContentRejected
	}

	if kind, ok := classifyAPIError(err); ok {
		return kind
	}

	return classifyText(err.Error())
}

func classifyAPIError(err error) (FailureKind, bool) {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		if kind, ok := classifyHTTPCode(apiErr.HTTPCode()); ok {
			return kind, true
		}
		switch apiErr.GRPCStatus().Code() {
		case codes.ResourceExhausted:
			return FailureQuota, true
		case codes.Unauthenticated, codes.PermissionDenied:
			return FailureConfiguration, true
		}
		if reason := apiErr.Reason(); reason != "" {
			if strings.Contains(strings.ToUpper(reason), "API_KEY") {
				return FailureConfiguration, true
			}
		}
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		if kind, ok := classifyHTTPCode(gErr.Code); ok {
			return kind, true
		}
		for _, item := range gErr.Errors {
			if strings.Contains(strings.ToUpper(item.Reason), "API_KEY") {
				return FailureConfiguration, true
			}
		}
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.ResourceExhausted:
			return FailureQuota, true
		case codes.Unauthenticated, codes.PermissionDenied:
			return FailureConfiguration, true
		}
	}

	return FailureUnknown, false
}

func classifyHTTPCode(code int) (FailureKind, bool) {
	switch code {
	case http.StatusTooManyRequests:
		return FailureQuota, true
	case http.StatusUnauthorized, http.StatusForbidden:
		return FailureConfiguration, true
	}
	return FailureUnknown, false
}

// classifyText checks quota before safety before credentials so a
// rate-limit message that also mentions the key is still a quota failure.
func classifyText(msg string) FailureKind {
	lower := strings.ToLower(msg)
	switch {
	case containsAny(lower, quotaSignals):
		return FailureQuota
	case containsAny(lower, safetySignals):
		return FailureContentRejected
	case containsAny(lower, credentialSignals):
		return FailureConfiguration
	default:
		return FailureUnknown
	}
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
