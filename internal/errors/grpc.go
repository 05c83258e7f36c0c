package errors

import (
	"errors"

	"github.com/louisbranch/crowdvault/internal/errors/i18n"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DefaultLocale is the locale used when a request does not name one.
const DefaultLocale = "en-US"

// UserMessage resolves the code and localized user-facing message for
// an error. Non-domain errors map to CodeUnknown with a generic
// message so internals never leak to clients.
func UserMessage(err error, locale string) (Code, string) {
	if locale == "" {
		locale = DefaultLocale
	}
	var appErr *Error
	if !errors.As(err, &appErr) {
		return CodeUnknown, "an unexpected error occurred"
	}
	catalog := i18n.GetCatalog(locale)
	return appErr.Code, catalog.Format(string(appErr.Code), appErr.Metadata)
}

// HandleError converts an error to a gRPC status carrying the localized
// user-facing message.
func HandleError(err error, locale string) error {
	if err == nil {
		return nil
	}
	code, msg := UserMessage(err, locale)
	if code == CodeUnknown {
		return status.Error(codes.Internal, msg)
	}
	return status.Error(code.GRPCCode(), msg)
}

// GetCode extracts the domain code from any error, CodeUnknown when the
// error is not a domain error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// IsCode reports whether the error carries the given code.
func IsCode(err error, code Code) bool {
	return GetCode(err) == code
}

// GetMetadata returns the error's metadata, nil for non-domain errors.
func GetMetadata(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) {
		return e.Metadata
	}
	return nil
}
