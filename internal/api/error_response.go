package api

// error_response.go maps domain and transport errors to the error response
// payload returned to clients. The response carries a sanitized error code
// text; the full message is logged server-side by RespondWithErrorResponse.

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/quillsign/quillsign/internal/logger"
	"github.com/quillsign/quillsign/internal/sign"
)

// ErrorResponse is the standard error payload.
type ErrorResponse struct {

	// The HTTP method used to make the request e.g. GET, POST, etc
	HTTPMethod string `json:"httpMethod"`

	// The URI that was requested
	RequestURI string `json:"requestUri"`

	// The HTTP status code returned
	StatusCode int `json:"statusCode"`

	// A standard short description corresponding to the HTTP status code
	StatusCodeText string `json:"statusCodeText"`

	// A long description corresponding to the HTTP status code with additional information
	StatusCodeMessage string `json:"statusCodeMessage,omitempty"`

	// A unique identifier for the HTTP request
	RequestReference string `json:"requestReference,omitempty"`

	// The DateTime corresponding to the error occurring
	ErrorDateTime string `json:"errorDateTime"`

	// An array of errors providing more detail about the root cause
	Errors []DetailedError `json:"errors"`
}

// DetailedError provides the root-cause detail for an ErrorResponse.
type DetailedError struct {
	ErrorCode        string `json:"errorCode"`
	ErrorCodeText    string `json:"errorCodeText"`
	ErrorCodeMessage string `json:"errorCodeMessage"`
}

// MapErrorToResponse maps sign.SignError, api.APIError or generic errors to an
// error response, establishing the HTTP status code from the error category.
func MapErrorToResponse(err error, r *http.Request) *ErrorResponse {
	requestID := middleware.GetReqID(r.Context())

	var signErr *sign.SignError
	if errors.As(err, &signErr) {
		return errorResponseFromSign(signErr, r, requestID)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return errorResponseFromAPI(apiErr, r, requestID)
	}

	// fallback - not expected; log the unmapped error and return an internal error response
	reqLogger := logger.ContextRequestLogger(r.Context())
	reqLogger.Error("BUG: Unmapped error type in MapErrorToResponse",
		slog.String("error_type", fmt.Sprintf("%T", err)),
		slog.String("error", err.Error()),
		slog.String("request_id", requestID),
	)
	return newErrorResponse(r, requestID, http.StatusInternalServerError, string(ErrCodeInternalError),
		"Internal Error", "An internal error occurred")
}

// errorResponseFromSign maps the signing core's error taxonomy to HTTP:
// not-found 404, validation 400, authorization 403, state conflict 409.
func errorResponseFromSign(err *sign.SignError, r *http.Request, requestID string) *ErrorResponse {
	var statusCode int
	var errorCodeText string

	switch err.Code() {
	case sign.ErrCodeNotFound:
		statusCode = http.StatusNotFound
		errorCodeText = "Not found"
	case sign.ErrCodeValidation:
		statusCode = http.StatusBadRequest
		errorCodeText = "Validation failed"
	case sign.ErrCodeAuthorization:
		statusCode = http.StatusForbidden
		errorCodeText = "Not authorized for this signing action"
	case sign.ErrCodeStateConflict:
		statusCode = http.StatusConflict
		errorCodeText = "Operation conflicts with document state"
	default:
		statusCode = http.StatusInternalServerError
		errorCodeText = "Internal Error"
	}

	return newErrorResponse(r, requestID, statusCode, string(err.Code()), errorCodeText, err.Error())
}

func errorResponseFromAPI(err *APIError, r *http.Request, requestID string) *ErrorResponse {
	var statusCode int
	var errorCodeText string

	switch err.Code() {
	case ErrCodeMalformedRequest:
		statusCode = http.StatusBadRequest
		errorCodeText = "Malformed request"
	case ErrCodeRateLimitExceeded:
		statusCode = http.StatusTooManyRequests
		errorCodeText = "Rate limit exceeded"
	case ErrCodeRequestTooLarge:
		statusCode = http.StatusRequestEntityTooLarge
		errorCodeText = "Request too large"
	default:
		statusCode = http.StatusInternalServerError
		errorCodeText = "Internal Error"
	}

	return newErrorResponse(r, requestID, statusCode, string(err.Code()), errorCodeText, err.Error())
}

func newErrorResponse(r *http.Request, requestID string, statusCode int, code, codeText, message string) *ErrorResponse {
	return &ErrorResponse{
		HTTPMethod:       r.Method,
		RequestURI:       r.RequestURI,
		StatusCode:       statusCode,
		StatusCodeText:   http.StatusText(statusCode),
		StatusCodeMessage: codeText,
		RequestReference: requestID,
		ErrorDateTime:    time.Now().UTC().Format(time.RFC3339),
		Errors: []DetailedError{
			{
				ErrorCode:        code,
				ErrorCodeText:    codeText,
				ErrorCodeMessage: message,
			},
		},
	}
}
