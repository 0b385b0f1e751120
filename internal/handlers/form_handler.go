package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"akash-aiml/resume-score-analyzer/internal/models"
	"akash-aiml/resume-score-analyzer/internal/services"
)

const (
	fieldResume             = "resume"
	fieldJobDescriptionText = "job_description_text"
	fieldJobDescriptionFile = "job_description_file"
)

type FormHandler struct {
	store       *session.Store
	registry    services.SessionRegistry
	maxFileSize int64
}

func NewFormHandler(
	store *session.Store,
	registry services.SessionRegistry,
	maxFileSize int64,
) *FormHandler {
	return &FormHandler{
		store:       store,
		registry:    registry,
		maxFileSize: maxFileSize,
	}
}

type PageData struct {
	ResumeName  string
	JobFileName string
	JobText     string
	TextMode    bool
	Error       string
	Submitting  bool
	MaxUpload   string
	Result      *services.ResultView
}

func (h *FormHandler) Register(router fiber.Router) {
	router.Get("/", h.HandleIndex)
	router.Post("/resume", h.HandleUpdate)
	router.Post("/job-description", h.HandleUpdate)
	router.Post("/mode/:mode", h.HandleMode)
	router.Post("/analyze", h.HandleAnalyze)
	router.Post("/reset", h.HandleReset)
}

// HandleIndex handles GET /
func (h *FormHandler) HandleIndex(c *fiber.Ctx) error {
	form, err := h.form(c)
	if err != nil {
		return err
	}

	return c.Render("index", h.pageData(form.State()), "layouts/main")
}

// HandleUpdate handles POST /resume and POST /job-description
func (h *FormHandler) HandleUpdate(c *fiber.Ctx) error {
	form, err := h.form(c)
	if err != nil {
		return err
	}

	h.applyInputs(c, form)
	return c.Redirect("/", fiber.StatusSeeOther)
}

// HandleMode handles POST /mode/:mode
func (h *FormHandler) HandleMode(c *fiber.Ctx) error {
	mode, ok := models.ParseInputMode(c.Params("mode"))
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("unknown input mode %q", c.Params("mode")))
	}

	form, err := h.form(c)
	if err != nil {
		return err
	}

	h.applyInputs(c, form)
	form.SetInputMode(mode)
	return c.Redirect("/", fiber.StatusSeeOther)
}

// HandleAnalyze handles POST /analyze
func (h *FormHandler) HandleAnalyze(c *fiber.Ctx) error {
	form, err := h.form(c)
	if err != nil {
		return err
	}

	h.applyInputs(c, form)

	start := time.Now()
	err = form.Submit(c.UserContext())

	var validationErr *services.ValidationError
	switch {
	case err == nil:
		slog.Info("✅ Analysis completed", "duration_ms", time.Since(start).Milliseconds())
	case errors.Is(err, services.ErrSubmissionInFlight):
		slog.Warn("⚠️ Submission ignored, another one is in flight")
	case errors.As(err, &validationErr):
		slog.Debug("Form rejected", "reason", validationErr.Message)
	default:
		slog.Error("❌ Analysis failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
	}

	return c.Redirect("/", fiber.StatusSeeOther)
}

// HandleReset handles POST /reset
func (h *FormHandler) HandleReset(c *fiber.Ctx) error {
	form, err := h.form(c)
	if err != nil {
		return err
	}

	form.Reset()
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (h *FormHandler) form(c *fiber.Ctx) (*services.FormController, error) {
	sess, err := h.store.Get(c)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	id := sess.ID()

	// Saving on every request slides the cookie expiry along with the
	// registry's idle timer.
	sess.Set("last_seen", time.Now().Unix())
	if err := sess.Save(); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return h.registry.Get(id), nil
}

// applyInputs copies whatever the posted form carries onto the controller.
// Fields that are absent leave the stored value alone.
func (h *FormHandler) applyInputs(c *fiber.Ctx, form *services.FormController) {
	mf, err := c.MultipartForm()
	if err != nil {
		args := c.Request().PostArgs()
		if args.Has(fieldJobDescriptionText) {
			form.SetJobDescriptionText(string(args.Peek(fieldJobDescriptionText)))
		}
		return
	}

	if vals, ok := mf.Value[fieldJobDescriptionText]; ok && len(vals) > 0 {
		form.SetJobDescriptionText(vals[0])
	}

	if file, ok := h.readUpload(mf.File[fieldResume]); ok {
		if err := form.SelectResumeFile(file); err != nil {
			slog.Debug("Resume rejected", "filename", file.Name, "reason", err)
		}
	}

	if file, ok := h.readUpload(mf.File[fieldJobDescriptionFile]); ok {
		if err := form.SelectJobDescriptionFile(file); err != nil {
			slog.Debug("Job description file rejected", "filename", file.Name, "reason", err)
		}
	}
}

func (h *FormHandler) readUpload(headers []*multipart.FileHeader) (models.UploadFile, bool) {
	if len(headers) == 0 || headers[0].Filename == "" {
		return models.UploadFile{}, false
	}
	fh := headers[0]

	src, err := fh.Open()
	if err != nil {
		slog.Error("❌ Failed to open uploaded file", "filename", fh.Filename, "error", err)
		return models.UploadFile{}, false
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		slog.Error("❌ Failed to read uploaded file", "filename", fh.Filename, "error", err)
		return models.UploadFile{}, false
	}

	return models.UploadFile{Name: fh.Filename, Content: content}, true
}

func (h *FormHandler) pageData(state models.FormState) PageData {
	data := PageData{
		JobText:    state.Selection.JobDescriptionText,
		TextMode:   state.Selection.InputMode != models.InputModeFile,
		Error:      state.Error,
		Submitting: state.InFlight(),
		Result:     services.RenderResult(state.Result),
	}

	if h.maxFileSize > 0 {
		data.MaxUpload = services.FormatFileSize(h.maxFileSize)
	}

	if state.Selection.ResumeFile != nil {
		data.ResumeName = state.Selection.ResumeFile.Name
	}
	if state.Selection.JobDescriptionFile != nil {
		data.JobFileName = state.Selection.JobDescriptionFile.Name
	}

	return data
}
