package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"akash-aiml/resume-score-analyzer/internal/models"
)

const AnalyzeResumePath = "/analyze/resume"

// AnalyzeRequest carries exactly one of JobDescriptionText or JobDescriptionFile.
type AnalyzeRequest struct {
	Resume             models.UploadFile
	JobDescriptionText string
	JobDescriptionFile *models.UploadFile
}

type ResumeAnalyzer interface {
	AnalyzeResume(ctx context.Context, req AnalyzeRequest) (*models.AnalysisResult, error)
}

type resumeAnalyzer struct {
	client APIClient
}

func NewResumeAnalyzer(client APIClient) ResumeAnalyzer {
	return &resumeAnalyzer{client: client}
}

// AnalyzeResume implements ResumeAnalyzer.
func (r *resumeAnalyzer) AnalyzeResume(ctx context.Context, req AnalyzeRequest) (*models.AnalysisResult, error) {
	body := MultipartBody{
		Fields: map[string]string{},
		Files: []*fiber.FormFile{
			{Fieldname: "resume", Name: req.Resume.Name, Content: req.Resume.Content},
		},
	}

	if req.JobDescriptionFile != nil {
		body.Files = append(body.Files, &fiber.FormFile{
			Fieldname: "job_description_file",
			Name:      req.JobDescriptionFile.Name,
			Content:   req.JobDescriptionFile.Content,
		})
	} else {
		body.Fields["job_description_text"] = req.JobDescriptionText
	}

	slog.Debug("📤 Sending resume for analysis",
		"resume", req.Resume.Name,
		"resume_bytes", req.Resume.Size(),
		"job_description_file", req.JobDescriptionFile != nil,
	)

	var result models.AnalysisResult
	if err := r.client.Post(ctx, AnalyzeResumePath, body, &result,
		WithHeader(fiber.HeaderContentType, fiber.MIMEMultipartForm),
	); err != nil {
		return nil, fmt.Errorf("failed to analyze resume: %w", err)
	}

	return &result, nil
}
