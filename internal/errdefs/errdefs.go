package errdefs

type ErrorType int

const (
	ErrTypeCameraUnavailable ErrorType = iota
	ErrTypeCameraDenied
	ErrTypeNoUpstreamData
	ErrTypeInvalidImage
	ErrTypeGenerationFailed
	ErrTypeGeneric
)

type CustomError struct {
	Type    ErrorType
	Message string
}

func (e *CustomError) Error() string {
	return e.Message
}

func NewCustomError(errType ErrorType, message string) error {
	return &CustomError{
		Type:    errType,
		Message: message,
	}
}

var ErrNoUpstreamData = NewCustomError(ErrTypeNoUpstreamData, "no captured photo available")
