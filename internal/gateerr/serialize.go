package gateerr

import (
	"encoding/json"
	"fmt"
)

// SerializableError is the JSON-serializable representation of a GateError,
// produced by MarshalJSON and ToJSON.
type SerializableError struct {
	Code         string            `json:"code"`
	Class        string            `json:"class"`
	Message      string            `json:"message"`
	RecoveryHint string            `json:"recovery_hint,omitempty"`
	Context      map[string]string `json:"context,omitempty"`
	Cause        string            `json:"cause,omitempty"`
}

// ToSerializable converts an error to a serializable form. Non-GateError
// values are wrapped as an internal error rather than dropped.
func ToSerializable(err error) *SerializableError {
	if err == nil {
		return nil
	}

	ge, ok := err.(*GateError)
	if !ok {
		return &SerializableError{
			Code:    string(ErrInternal),
			Class:   string(ClassInternal),
			Message: err.Error(),
		}
	}

	out := &SerializableError{
		Code:         string(ge.Code),
		Class:        string(ge.Class()),
		Message:      ge.Message,
		RecoveryHint: ge.RecoveryHint(),
		Context:      ge.Context,
	}
	if ge.Cause != nil {
		out.Cause = ge.Cause.Error()
	}
	return out
}

// FromSerializable reconstructs a GateError from its serialized form.
func FromSerializable(se *SerializableError) *GateError {
	if se == nil {
		return nil
	}

	code := Code(se.Code)
	var cause error
	if se.Cause != "" {
		cause = fmt.Errorf("%s", se.Cause)
	}

	return &GateError{
		Code:    code,
		Message: se.Message,
		Cause:   cause,
		Context: se.Context,
	}
}

// MarshalJSON implements json.Marshaler.
func (e *GateError) MarshalJSON() ([]byte, error) {
	return json.Marshal(ToSerializable(e))
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *GateError) UnmarshalJSON(data []byte) error {
	var se SerializableError
	if err := json.Unmarshal(data, &se); err != nil {
		return err
	}
	parsed := FromSerializable(&se)
	*e = *parsed
	return nil
}

// ToJSON serializes a GateError to a compact JSON string.
func ToJSON(err *GateError) (string, error) {
	data, marshalErr := json.Marshal(ToSerializable(err))
	if marshalErr != nil {
		return "", fmt.Errorf("marshal gate error: %w", marshalErr)
	}
	return string(data), nil
}
