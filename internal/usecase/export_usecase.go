package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go-ats-backend/internal/domain"
	"go-ats-backend/pkg/apperror"

	"github.com/xuri/excelize/v2"
)

const (
	ExportFormatCSV  = "csv"
	ExportFormatXLSX = "xlsx"
)

// ExportFile is a rendered candidate export ready to stream to a client.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ExportUsecase interface {
	ExportCandidates(ctx context.Context, format string) (*ExportFile, error)
}

type exportUsecase struct {
	repo domain.CandidateRepository
	now  func() time.Time
}

func NewExportUsecase(repo domain.CandidateRepository) ExportUsecase {
	return &exportUsecase{repo: repo, now: time.Now}
}

var exportHeader = []string{
	"id", "firstName", "lastName", "email", "phone",
	"street", "city", "state", "postalCode", "country",
	"status", "tags", "cvFilePath", "education", "experience", "createdAt",
}

func (u *exportUsecase) ExportCandidates(ctx context.Context, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatXLSX {
		return nil, apperror.BadRequest("format must be csv or xlsx")
	}

	candidates, err := u.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(candidates))
	for _, c := range candidates {
		rows = append(rows, exportRow(c))
	}

	base := "candidates-" + u.now().UTC().Format("20060102-150405")
	if format == ExportFormatXLSX {
		data, err := renderXLSX(rows)
		if err != nil {
			return nil, fmt.Errorf("render xlsx: %w", err)
		}
		return &ExportFile{
			Filename:    base + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}, nil
	}

	data, err := renderCSV(rows)
	if err != nil {
		return nil, fmt.Errorf("render csv: %w", err)
	}
	return &ExportFile{
		Filename:    base + ".csv",
		ContentType: "text/csv; charset=utf-8",
		Data:        data,
	}, nil
}

func exportRow(c domain.Candidate) []string {
	return []string{
		c.ID, c.FirstName, c.LastName, c.Email, c.Phone,
		deref(c.Street), deref(c.City), deref(c.State), deref(c.PostalCode), deref(c.Country),
		deref(c.Status), strings.Join(c.Tags, "; "), deref(c.CVFilePath),
		strconv.Itoa(len(c.Education)), strconv.Itoa(len(c.Experience)),
		c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func renderCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderXLSX(rows [][]string) ([]byte, error) {
	const sheet = "Candidates"

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	header := make([]interface{}, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return nil, err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
