package planner

import "fmt"

// ErrorKind classifies a generation failure. All kinds collapse into the
// fallback result at the public boundary; they exist so inner layers can be
// tested against real variants.
type ErrorKind string

const (
	KindMalformedCredential ErrorKind = "malformed_credential"
	KindSigningFailed       ErrorKind = "signing_failed"
	KindTransportFailed     ErrorKind = "transport_failed"
	KindExtractionFailed    ErrorKind = "extraction_failed"
	KindValidationFailed    ErrorKind = "validation_failed"
)

// PlanError tags an underlying error with the stage it occurred in.
type PlanError struct {
	Kind ErrorKind
	Err  error
}

func (e *PlanError) Error() string {
	return fmt.Sprintf("plan generation failed (%s): %v", e.Kind, e.Err)
}

func (e *PlanError) Unwrap() error {
	return e.Err
}
