// Package report builds spreadsheet exports of claim data for the
// accounts team.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/easybills/easybills/internal/models"
)

const sheetName = "Claims"

var headers = []string{
	"Claim Number", "Claimant", "Claim Type", "Expense Category",
	"Status", "Pending With", "Claimed Amount", "Approved Amount",
	"Created", "Verified", "Approved", "Paid",
}

// ExcelWriter renders claim listings as XLSX workbooks.
type ExcelWriter struct {
	logger *zap.Logger
}

// NewExcelWriter creates an Excel report writer
func NewExcelWriter(logger *zap.Logger) *ExcelWriter {
	return &ExcelWriter{logger: logger}
}

// WriteClaims writes one row per claim to w. ownerNames maps user IDs
// to display names for the claimant column.
func (e *ExcelWriter) WriteClaims(w io.Writer, claims []*models.Claim, ownerNames map[int64]string) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			e.logger.Warn("Failed to close workbook", zap.Error(err))
		}
	}()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to compute header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, claim := range claims {
		row := []interface{}{
			claim.ClaimNumber,
			ownerNames[claim.UserID],
			claim.ClaimType,
			claim.ExpenseCategory,
			claim.Status,
			claim.PendingWith,
			claim.ClaimedAmount,
			claim.ApprovedAmount,
			formatDate(&claim.CreatedAt),
			formatDate(claim.VerifiedAt),
			formatDate(claim.ApprovedAt),
			formatDate(claim.PaidAt),
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to compute row cell: %w", err)
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write claim row: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info("Claims report generated", zap.Int("rows", len(claims)))
	return nil
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
