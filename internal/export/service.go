package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/portfolio-grader/constants"
	"github.com/joseph-ayodele/portfolio-grader/internal/grade"
	"github.com/joseph-ayodele/portfolio-grader/internal/llm"
)

// ContentTypeXLSX is the MIME type of the workbooks this package writes.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SheetName is the single sheet in an exported workbook.
const SheetName = "Investment"

const (
	moneyPlaces = 2
	numFmtMoney = 4 // built-in "#,##0.00"
)

// Headers is the header row, one column per record field plus the grade visuals.
var Headers = []string{
	"Name",
	"Type",
	"Ticker",
	"Amount",
	"Quantity",
	"Purchase Date",
	"Risk Score",
	"Grade",
	"Progress",
	"Grade Color",
	"ROI Estimate",
}

// Service produces XLSX bytes for an extracted record.
type Service struct {
	logger *zap.Logger
}

func NewService(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger}
}

// ExportRecordXLSX returns a one-row workbook for rec.
// Amount becomes a two-place money cell and Quantity a plain number when they
// parse as decimals.
func (s *Service) ExportRecordXLSX(ctx context.Context, rec llm.InvestmentRecord) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("export.close_failed", zap.Error(err))
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	activeIndex, _ := f.GetSheetIndex(SheetName)
	f.SetActiveSheet(activeIndex)

	for i, h := range Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	amount, amountIsNumber := any(rec.Amount), false
	if d, ok := parseDecimal(rec.Amount); ok {
		amount, amountIsNumber = d.Round(moneyPlaces).InexactFloat64(), true
	}
	quantity := any(rec.Quantity)
	if d, ok := parseDecimal(rec.Quantity); ok {
		quantity = d.InexactFloat64()
	}

	values := []any{
		rec.Name,
		rec.Type,
		rec.Ticker,
		amount,
		quantity,
		rec.PurchaseDate,
		riskCell(rec.RiskScore),
		rec.Grade,
		grade.Progress(rec.Grade),
		grade.Color(rec.Grade),
		rec.ROIEstimate,
	}
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		if err := f.SetCellValue(SheetName, cell, v); err != nil {
			return nil, fmt.Errorf("write %s: %w", Headers[i], err)
		}
	}

	if amountIsNumber {
		style, err := f.NewStyle(&excelize.Style{NumFmt: numFmtMoney})
		if err != nil {
			return nil, fmt.Errorf("amount style: %w", err)
		}
		if err := f.SetCellStyle(SheetName, "D2", "D2", style); err != nil {
			return nil, fmt.Errorf("amount style: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		zap.String("ticker", rec.Ticker),
		zap.Int("bytes", buf.Len()),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)
	return buf.Bytes(), nil
}

// Filename suggests a download name for rec.
func Filename(rec llm.InvestmentRecord) string {
	t := strings.ToLower(strings.TrimSpace(rec.Ticker))
	if t == "" || t == constants.UnknownValue {
		return "investment.xlsx"
	}
	var b strings.Builder
	for _, r := range t {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "investment.xlsx"
	}
	return "investment-" + b.String() + ".xlsx"
}

// parseDecimal strips thousands separators and a currency sign before parsing.
func parseDecimal(s string) (decimal.Decimal, bool) {
	clean := strings.NewReplacer(",", "", "$", "", " ", "").Replace(strings.TrimSpace(s))
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

func riskCell(r llm.RiskScore) any {
	if !r.Known {
		return constants.UnknownValue
	}
	return r.Value
}
