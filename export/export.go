// Package export writes record reports, premiums included, as xlsx, json or yaml.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/stevemurr/policyledger/policy"
)

// SheetName is the worksheet that holds the report in xlsx output.
const SheetName = "Policies"

// Formats lists the supported output formats.
var Formats = []string{"xlsx", "json", "yaml"}

// ErrUnknownFormat is returned for a format not in Formats.
var ErrUnknownFormat = errors.New("unknown export format")

// CheckFormat returns ErrUnknownFormat unless format is in Formats.
func CheckFormat(format string) error {
	if slices.Contains(Formats, format) {
		return nil
	}
	return fmt.Errorf("%w: %q (supported: %s)", ErrUnknownFormat, format, strings.Join(Formats, ", "))
}

// Row is one report line.
type Row struct {
	ID         int     `json:"id" yaml:"id"`
	Name       string  `json:"name" yaml:"name"`
	Age        int     `json:"age" yaml:"age"`
	PolicyType string  `json:"policy_type" yaml:"policy_type"`
	SumInsured float64 `json:"sum_insured" yaml:"sum_insured"`
	VehicleAge int     `json:"vehicle_age,omitempty" yaml:"vehicle_age,omitempty"`
	Premium    float64 `json:"premium" yaml:"premium"`
}

var header = []any{"ID", "Name", "Age", "Type", "Sum Insured", "Vehicle Age", "Premium"}

// Rows builds report rows in store order.
func Rows(records []policy.Record) []Row {
	rows := make([]Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, Row{
			ID:         r.ID,
			Name:       r.Name,
			Age:        r.Age,
			PolicyType: r.Type.String(),
			SumInsured: r.SumInsured,
			VehicleAge: r.VehicleAge,
			Premium:    policy.Premium(r),
		})
	}
	return rows
}

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) (string, bool) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".xlsx"):
		return "xlsx", true
	case strings.HasSuffix(lower, ".json"):
		return "json", true
	case strings.HasSuffix(lower, ".yaml"), strings.HasSuffix(lower, ".yml"):
		return "yaml", true
	}
	return "", false
}

// Write renders records to w in the given format.
func Write(w io.Writer, format string, records []policy.Record) error {
	rows := Rows(records)
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rows); err != nil {
			return err
		}
		return enc.Close()
	case "xlsx":
		return writeXLSX(w, rows)
	default:
		return CheckFormat(format)
	}
}

func writeXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{r.ID, r.Name, r.Age, r.PolicyType, r.SumInsured, r.VehicleAge, r.Premium}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return err
		}
	}

	style, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		for _, col := range []string{"E", "G"} {
			last := fmt.Sprintf("%s%d", col, len(rows)+1)
			if err := f.SetCellStyle(SheetName, col+"2", last, style); err != nil {
				return err
			}
		}
	}
	_, err = f.WriteTo(w)
	return err
}
