package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/khoahotran/member-directory/internal/domain/profile"
	"github.com/khoahotran/member-directory/pkg/apperror"
	"github.com/khoahotran/member-directory/pkg/logger"
)

const exportSheet = "Members"

var exportHeaders = []string{
	"Full Name",
	"Slug",
	"Category",
	"College",
	"Year",
	"Grade",
	"Image URL",
	"Certificates",
	"Created At",
}

type ExportProfilesUseCase struct {
	repo   profile.Repository
	logger logger.Logger
}

func NewExportProfilesUseCase(repo profile.Repository, log logger.Logger) *ExportProfilesUseCase {
	return &ExportProfilesUseCase{repo: repo, logger: log}
}

// Execute renders the filtered directory as an XLSX workbook.
func (uc *ExportProfilesUseCase) Execute(ctx context.Context, input ListProfilesInput) ([]byte, error) {
	start := time.Now()

	filter, err := buildFilter(input)
	if err != nil {
		return nil, err
	}
	members, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return nil, apperror.NewInternal("prepare export sheet", err)
	}
	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(exportSheet, cell, h)
	}

	for i, p := range members {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(exportSheet, cell, v)
		}
		write(1, p.FullName)
		write(2, p.Slug)
		write(3, string(p.Category))
		if cd, ok := p.College(); ok {
			write(4, cd.CollegeName)
			write(5, cd.Year)
			if cd.Grade != nil {
				write(6, *cd.Grade)
			}
		}
		write(7, p.ImageURL)
		write(8, len(p.CertificateURLs))
		write(9, p.CreatedAt.Format(time.RFC3339))
	}

	_ = f.SetColWidth(exportSheet, "A", "B", 28)
	_ = f.SetColWidth(exportSheet, "C", "C", 14)
	_ = f.SetColWidth(exportSheet, "D", "D", 36)
	_ = f.SetColWidth(exportSheet, "G", "G", 60)
	_ = f.SetColWidth(exportSheet, "I", "I", 22)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, apperror.NewInternal(fmt.Sprintf("write %s workbook", exportSheet), err)
	}

	uc.logger.Info("Directory exported",
		zap.Int("rows", len(members)),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()))
	return buf.Bytes(), nil
}
