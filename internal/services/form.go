package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"akash-aiml/resume-score-analyzer/internal/models"
)

const (
	MsgNotPDF                 = "Please upload a PDF file"
	MsgResumeRequired         = "Please upload your resume"
	MsgJobDescriptionRequired = "Please enter a job description"
	MsgJobFileRequired        = "Please upload a job description PDF"
	MsgAnalysisFailed         = "Analysis failed. Please try again."
)

var ErrSubmissionInFlight = errors.New("a submission is already in flight")

// ValidationError is a local input problem. It never reaches the network.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// FormController owns the state of one upload form.
type FormController struct {
	mu          sync.Mutex
	analyzer    ResumeAnalyzer
	maxFileSize int64

	selection  models.UploadSelection
	phase      models.Phase
	errMsg     string
	result     *models.AnalysisResult
	generation uint64
}

// NewFormController returns an empty form in text mode. A maxFileSize of zero
// disables the size check.
func NewFormController(analyzer ResumeAnalyzer, maxFileSize int64) *FormController {
	return &FormController{
		analyzer:    analyzer,
		maxFileSize: maxFileSize,
		selection:   models.UploadSelection{InputMode: models.InputModeText},
		phase:       models.PhaseIdle,
	}
}

func (f *FormController) SelectResumeFile(file models.UploadFile) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.checkFile(file); err != nil {
		return err
	}

	f.selection.ResumeFile = &file
	f.clearError()
	return nil
}

func (f *FormController) SelectJobDescriptionFile(file models.UploadFile) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.checkFile(file); err != nil {
		return err
	}

	f.selection.JobDescriptionFile = &file
	f.clearError()
	return nil
}

func (f *FormController) SetJobDescriptionText(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.selection.JobDescriptionText = text
}

// SetInputMode switches the authoritative job description slot. The other
// slot keeps its value.
func (f *FormController) SetInputMode(mode models.InputMode) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.selection.InputMode = mode
}

// Submit validates the form and sends it for analysis. The outcome is recorded
// on the controller; the returned error is for logging.
func (f *FormController) Submit(ctx context.Context) error {
	f.mu.Lock()

	if f.phase == models.PhaseSubmitting {
		f.mu.Unlock()
		return ErrSubmissionInFlight
	}

	if err := f.validate(); err != nil {
		f.fail(models.PhaseInvalid, err.Message)
		f.mu.Unlock()
		return err
	}

	req := AnalyzeRequest{Resume: *f.selection.ResumeFile}
	if f.selection.InputMode == models.InputModeFile {
		jobFile := *f.selection.JobDescriptionFile
		req.JobDescriptionFile = &jobFile
	} else {
		req.JobDescriptionText = f.selection.JobDescriptionText
	}

	f.phase = models.PhaseSubmitting
	f.errMsg = ""
	f.result = nil
	generation := f.generation
	f.mu.Unlock()

	result, err := f.analyzer.AnalyzeResume(ctx, req)

	f.mu.Lock()
	defer f.mu.Unlock()

	if generation != f.generation {
		slog.Info("Discarding analysis outcome after reset")
		f.phase = models.PhaseIdle
		return err
	}

	if err != nil {
		f.fail(models.PhaseFailed, failureMessage(err))
		return err
	}

	f.result = result
	f.phase = models.PhaseSucceeded
	return nil
}

// Reset clears the result and all inputs except the input mode.
func (f *FormController) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.result = nil
	f.selection.ResumeFile = nil
	f.selection.JobDescriptionText = ""
	f.selection.JobDescriptionFile = nil
	f.errMsg = ""
	f.generation++

	// An outstanding call still holds the slot until it lands.
	if f.phase != models.PhaseSubmitting {
		f.phase = models.PhaseIdle
	}
}

func (f *FormController) State() models.FormState {
	f.mu.Lock()
	defer f.mu.Unlock()

	return models.FormState{
		Phase:     f.phase,
		Selection: f.selection,
		Error:     f.errMsg,
		Result:    f.result,
	}
}

func (f *FormController) checkFile(file models.UploadFile) error {
	if !file.IsPDF() {
		return f.reject(MsgNotPDF)
	}

	if f.maxFileSize > 0 && file.Size() > f.maxFileSize {
		return f.reject("File too large. Max size: " + FormatFileSize(f.maxFileSize))
	}

	return nil
}

func (f *FormController) reject(msg string) error {
	// Errors are not shown while a call is outstanding.
	if f.phase != models.PhaseSubmitting {
		f.fail(models.PhaseInvalid, msg)
	}
	return &ValidationError{Message: msg}
}

func (f *FormController) validate() *ValidationError {
	if f.selection.ResumeFile == nil {
		return &ValidationError{Message: MsgResumeRequired}
	}

	switch f.selection.InputMode {
	case models.InputModeFile:
		if f.selection.JobDescriptionFile == nil {
			return &ValidationError{Message: MsgJobFileRequired}
		}
	default:
		if strings.TrimSpace(f.selection.JobDescriptionText) == "" {
			return &ValidationError{Message: MsgJobDescriptionRequired}
		}
	}

	return nil
}

func (f *FormController) fail(phase models.Phase, msg string) {
	f.phase = phase
	f.errMsg = msg
}

func (f *FormController) clearError() {
	if f.phase != models.PhaseInvalid && f.phase != models.PhaseFailed {
		return
	}

	f.errMsg = ""
	if f.result != nil {
		f.phase = models.PhaseSucceeded
	} else {
		f.phase = models.PhaseIdle
	}
}

func failureMessage(err error) string {
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		if detail := respErr.Detail(); detail != "" {
			return detail
		}
	}
	return MsgAnalysisFailed
}

// FormatFileSize renders a byte count in the largest whole unit that fits.
func FormatFileSize(n int64) string {
	switch {
	case n >= 1024*1024:
		return fmt.Sprintf("%d MB", n/(1024*1024))
	case n >= 1024:
		return fmt.Sprintf("%d KB", n/1024)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}
