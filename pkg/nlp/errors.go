package nlp

import (
	"errors"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

// Common LLM client errors
var (
	// ErrRateLimit indicates the rate limit has been exceeded
	ErrRateLimit = errors.New("rate limit exceeded. Please try again later")

	// ErrRefusal indicates the LLM refused to respond to the prompt
	ErrRefusal = errors.New("the LLM refused to respond to this prompt")

	// ErrEmptyResponse indicates the LLM returned an empty response
	ErrEmptyResponse = errors.New("the LLM returned an empty response")

	// ErrInvalidModel indicates an invalid model was specified
	ErrInvalidModel = errors.New("invalid model specified")

	// ErrMissingAPIKey indicates no API key was configured for the hosted OpenAI API
	ErrMissingAPIKey = errors.New("an API key is required when no base URL is configured")

	// ErrAuthentication indicates the endpoint rejected the credentials
	ErrAuthentication = errors.New("the LLM endpoint rejected the API key")
)

// RateLimitError represents a rate limit error with optional custom message
type RateLimitError struct {
	Message string
}

func (e *RateLimitError) Error() string {
	if e.Message == "" {
		return "rate limit exceeded. Please try again later"
	}
	return e.Message
}

// Is implements errors.Is support for RateLimitError.
// This allows errors.Is(err, &RateLimitError{}) to work with wrapped errors.
func (e *RateLimitError) Is(target error) bool {
	_, ok := target.(*RateLimitError)
	return ok
}

// NewRateLimitError creates a new rate limit error with optional custom message
func NewRateLimitError(message ...string) *RateLimitError {
	err := &RateLimitError{}
	if len(message) > 0 {
		err.Message = message[0]
	}
	return err
}

// RefusalError represents an LLM refusal error
type RefusalError struct {
	Message string
}

func (e *RefusalError) Error() string {
	return e.Message
}

// Is implements errors.Is support for RefusalError.
func (e *RefusalError) Is(target error) bool {
	_, ok := target.(*RefusalError)
	return ok || target == ErrRefusal
}

// NewRefusalError creates a new refusal error (message is required)
func NewRefusalError(message string) *RefusalError {
	return &RefusalError{Message: message}
}

// EmptyResponseError represents an empty response error
type EmptyResponseError struct {
	Message string
}

func (e *EmptyResponseError) Error() string {
	return e.Message
}

// Is implements errors.Is support for EmptyResponseError.
func (e *EmptyResponseError) Is(target error) bool {
	_, ok := target.(*EmptyResponseError)
	return ok || target == ErrEmptyResponse
}

// NewEmptyResponseError creates a new empty response error (message is required)
func NewEmptyResponseError(message string) *EmptyResponseError {
	return &EmptyResponseError{Message: message}
}

// classifyAPIError maps go-openai API errors onto the package's error types.
// Errors it does not recognize are returned unchanged.
func classifyAPIError(err error) error {
	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.HTTPStatusCode {
	case http.StatusTooManyRequests:
		return errors.Join(NewRateLimitError(apiErr.Message), err)
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.Join(ErrAuthentication, err)
	case http.StatusNotFound:
		if apiErr.Code == "model_not_found" {
			return errors.Join(ErrInvalidModel, err)
		}
	}
	return err
}
