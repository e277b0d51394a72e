package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"quicktask/internal/models"
	"quicktask/internal/pdf"
	"quicktask/internal/repositories"
)

var csvHeader = []string{"title", "description", "priority", "status", "dueDate", "createdAt"}

type ExportService interface {
	WriteCSV(ctx context.Context, w io.Writer, ownerID int64, filter models.TaskFilter) error
	WritePDF(ctx context.Context, w io.Writer, ownerID int64, filter models.TaskFilter) error
}

type exportService struct {
	repo   repositories.TaskRepository
	pdfGen pdf.Generator
}

func NewExportService(repo repositories.TaskRepository, pdfGen pdf.Generator) ExportService {
	return &exportService{repo: repo, pdfGen: pdfGen}
}

// load returns the owner's tasks matching filter, newest first.
func (s *exportService) load(ctx context.Context, ownerID int64, filter models.TaskFilter) ([]models.Task, error) {
	filter.OwnerID = &ownerID
	filter.SortField = "createdAt"
	filter.SortDesc = true
	tasks, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	return tasks, nil
}

func (s *exportService) WriteCSV(ctx context.Context, w io.Writer, ownerID int64, filter models.TaskFilter) error {
	tasks, err := s.load(ctx, ownerID, filter)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, t := range tasks {
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.UTC().Format(time.RFC3339)
		}
		record := []string{
			t.Title,
			t.Description,
			string(t.Priority),
			string(t.Status),
			due,
			t.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *exportService) WritePDF(ctx context.Context, w io.Writer, ownerID int64, filter models.TaskFilter) error {
	if s.pdfGen == nil {
		return fmt.Errorf("pdf generator not configured")
	}
	tasks, err := s.load(ctx, ownerID, filter)
	if err != nil {
		return err
	}
	return s.pdfGen.WriteTasks(w, tasks)
}
