package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lmittmann/tint"

	"akash-aiml/resume-score-analyzer/internal/config"
	"akash-aiml/resume-score-analyzer/internal/models"
	"akash-aiml/resume-score-analyzer/internal/services"
)

func main() {
	resumePath := flag.String("resume", "", "path to the resume PDF")
	jobText := flag.String("job", "", "job description text")
	jobPath := flag.String("job-file", "", "path to a job description PDF (overrides -job)")
	flag.Parse()

	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{TimeFormat: "15:04:05"})))

	cfg := config.Load()
	client := services.NewHTTPClient(cfg.API)
	form := services.NewFormController(services.NewResumeAnalyzer(client), cfg.Upload.MaxFileSize)
	slog.Info("🚀 Analyzing resume", "api_url", client.BaseURL())

	if *resumePath != "" {
		file, err := readFile(*resumePath)
		if err != nil {
			slog.Error("❌ Failed to read resume", "error", err)
			os.Exit(1)
		}
		if err := form.SelectResumeFile(file); err != nil {
			slog.Error("❌ Resume rejected", "error", err)
			os.Exit(1)
		}
	}

	form.SetJobDescriptionText(*jobText)
	if *jobPath != "" {
		file, err := readFile(*jobPath)
		if err != nil {
			slog.Error("❌ Failed to read job description", "error", err)
			os.Exit(1)
		}
		if err := form.SelectJobDescriptionFile(file); err != nil {
			slog.Error("❌ Job description rejected", "error", err)
			os.Exit(1)
		}
		form.SetInputMode(models.InputModeFile)
	}

	if err := form.Submit(context.Background()); err != nil {
		slog.Error("❌ "+form.State().Error, "error", err)
		os.Exit(1)
	}

	printResult(services.RenderResult(form.State().Result))
}

func readFile(path string) (models.UploadFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return models.UploadFile{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return models.UploadFile{Name: filepath.Base(path), Content: content}, nil
}

func printResult(v *services.ResultView) {
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("📊 Resume score: %s (%s)\n", v.Score, v.Band)
	for _, card := range v.Breakdown {
		fmt.Printf("   %-12s %5s  %s\n", card.Category, card.Display, card.Band)
	}
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n%s\n", v.OverallAssessment)

	printTags("✅ Matched skills", v.MatchedSkills)
	printTags("❌ Missing skills", v.MissingSkills)

	if v.ShowStrengths() {
		fmt.Println("\n💪 Strengths")
		for _, s := range v.Strengths {
			fmt.Printf("   - %s\n", s)
		}
	}

	if v.ShowSuggestions() {
		fmt.Println("\n✨ How to improve your resume")
		for _, s := range v.Suggestions {
			fmt.Printf("   %s\n", s.Label())
		}
	}
}

func printTags(title string, tags services.TagList) {
	fmt.Printf("\n%s\n", title)
	if tags.Empty() {
		fmt.Printf("   %s\n", tags.Fallback)
		return
	}
	fmt.Printf("   %s\n", strings.Join(tags.Tags, ", "))
}
