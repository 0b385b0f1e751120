package models

import "strings"

type InputMode string

const (
	InputModeText InputMode = "text"
	InputModeFile InputMode = "file"
)

func ParseInputMode(s string) (InputMode, bool) {
	switch InputMode(strings.ToLower(strings.TrimSpace(s))) {
	case InputModeText:
		return InputModeText, true
	case InputModeFile:
		return InputModeFile, true
	}
	return "", false
}

type UploadFile struct {
	Name    string
	Content []byte
}

func (f UploadFile) IsPDF() bool {
	return strings.HasSuffix(strings.ToLower(f.Name), ".pdf")
}

func (f UploadFile) Size() int64 {
	return int64(len(f.Content))
}

// UploadSelection holds everything the user has entered so far. Only one of
// the job description slots is sent, chosen by InputMode.
type UploadSelection struct {
	ResumeFile         *UploadFile
	JobDescriptionText string
	JobDescriptionFile *UploadFile
	InputMode          InputMode
}

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseInvalid    Phase = "invalid"
	PhaseSubmitting Phase = "submitting"
	PhaseSucceeded  Phase = "succeeded"
	PhaseFailed     Phase = "failed"
)

// FormState is a snapshot of a form controller taken for rendering.
type FormState struct {
	Phase     Phase
	Selection UploadSelection
	Error     string
	Result    *AnalysisResult
}

func (s FormState) InFlight() bool {
	return s.Phase == PhaseSubmitting
}
