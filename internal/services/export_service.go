package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/SAP-F-2025/gradequest-service/internal/models"
	"github.com/xuri/excelize/v2"
)

var exportHeaders = []string{
	"Student ID", "Name",
	"A1", "A2", "A3", "A4", "A5", "A6",
	"Midterm", "Final", "Status", "Reward Rights", "Redeemed",
	"Total", "Grade", "Rank", "Entitlement",
}

type exportService struct {
	gradebook GradebookService
	logger    *ServiceLogger
}

func NewExportService(gradebook GradebookService, logger *ServiceLogger) ExportService {
	return &exportService{
		gradebook: gradebook,
		logger:    logger,
	}
}

func (s *exportService) ExportSubjectExcel(ctx context.Context, subject models.SubjectCode, actor string) (data []byte, err error) {
	log := s.logger.WithOperation(ctx, "export_subject_excel", actor)
	defer func() { log.LogResult(string(subject), "subject", err) }()

	rows, err := s.gradebook.SubjectBoard(ctx, subject, "")
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := string(subject)
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	if err := writeExcelRow(f, sheetName, 1, toInterfaces(exportHeaders)); err != nil {
		return nil, err
	}
	for i, row := range rows {
		if err := writeExcelRow(f, sheetName, i+2, exportRow(row)); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *exportService) ExportSubjectCSV(ctx context.Context, subject models.SubjectCode, actor string) (data []byte, err error) {
	log := s.logger.WithOperation(ctx, "export_subject_csv", actor)
	defer func() { log.LogResult(string(subject), "subject", err) }()

	rows, err := s.gradebook.SubjectBoard(ctx, subject, "")
	if err != nil {
		return nil, err
	}

	var buf strings.Builder
	writer := csv.NewWriter(&buf)
	if err := writer.Write(exportHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rows {
		values := exportRow(row)
		record := make([]string, len(values))
		for i, v := range values {
			record[i] = fmt.Sprint(v)
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return []byte(buf.String()), nil
}

func writeExcelRow(f *excelize.File, sheet string, rowNum int, values []interface{}) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to write cell %s: %w", cell, err)
		}
	}
	return nil
}

func exportRow(row BoardRow) []interface{} {
	rec := row.Record
	values := []interface{}{row.StudentID, row.Name}
	for _, a := range rec.Scores.Assignments {
		values = append(values, a)
	}
	return append(values,
		rec.Scores.Midterm,
		rec.Scores.Final,
		rec.Status.SheetLabel(),
		rec.Rewards.Stored,
		rec.Rewards.Redeemed,
		rec.Total,
		rec.Grade,
		string(rec.Rank),
		rec.Rewards.Entitlement,
	)
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
