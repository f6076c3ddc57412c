package tts

import (
	"errors"
	"fmt"
)

// Common errors for the TTS system.
var (
	// ErrUnsupported is returned by every engine-bound operation when the
	// host has no speech-synthesis capability. It is permanent for the
	// lifetime of the adapter.
	ErrUnsupported = errors.New("not supported on this device")

	// ErrNotImplemented is returned by operations the backend does not offer.
	ErrNotImplemented = errors.New("not implemented on this platform")
)

// ErrorCode identifies why an utterance failed. Values follow the Web
// Speech API error vocabulary so every engine reports the same codes.
type ErrorCode string

const (
	ErrorCodeCanceled             ErrorCode = "canceled"
	ErrorCodeInterrupted          ErrorCode = "interrupted"
	ErrorCodeAudioBusy            ErrorCode = "audio-busy"
	ErrorCodeAudioHardware        ErrorCode = "audio-hardware"
	ErrorCodeNetwork              ErrorCode = "network"
	ErrorCodeSynthesisUnavailable ErrorCode = "synthesis-unavailable"
	ErrorCodeSynthesisFailed      ErrorCode = "synthesis-failed"
	ErrorCodeLanguageUnavailable  ErrorCode = "language-unavailable"
	ErrorCodeVoiceUnavailable     ErrorCode = "voice-unavailable"
	ErrorCodeTextTooLong          ErrorCode = "text-too-long"
	ErrorCodeInvalidArgument      ErrorCode = "invalid-argument"
	ErrorCodeNotAllowed           ErrorCode = "not-allowed"
)

// SynthesisError is the error an engine reports through Utterance.OnError.
type SynthesisError struct {
	Code        ErrorCode
	CharIndex   int     // Position in the text when the error occurred
	ElapsedTime float64 // Seconds since the utterance started
	Payload     any     // Raw host event, when the host provides one
	Err         error   // Underlying cause
}

// Error implements the error interface.
func (e *SynthesisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("speech synthesis %s: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("speech synthesis %s", e.Code)
}

// Unwrap returns the underlying error.
func (e *SynthesisError) Unwrap() error {
	return e.Err
}

// NewSynthesisError creates an error for code caused by err.
func NewSynthesisError(code ErrorCode, err error) *SynthesisError {
	return &SynthesisError{Code: code, Err: err}
}

// IsPermanent reports whether retrying the same call can never succeed.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrUnsupported) || errors.Is(err, ErrNotImplemented)
}
