package inventory

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/HerbHall/sentinel/pkg/models"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

const xlsxSheet = "Inventário"

// exportHeaders returns the export column headers.
func exportHeaders() []string {
	return []string{
		"id", "store", "name", "type", "ip", "mac", "status", "latency_ms",
		"cpu_usage", "disk_usage", "model", "os", "purchase_date",
		"last_seen", "observation",
	}
}

// exportColumnWidths matches exportHeaders order.
var exportColumnWidths = []float64{38, 20, 24, 12, 16, 20, 10, 12, 10, 10, 24, 18, 14, 22, 32}

// assetToRow converts an asset to an export row (matching exportHeaders order).
// storeNames maps store ids to display names.
func assetToRow(a models.Asset, storeNames map[string]string) []string {
	store := storeNames[a.StoreID]
	if store == "" {
		store = a.StoreID
	}
	lastSeen := ""
	if !a.LastSeen.IsZero() {
		lastSeen = a.LastSeen.UTC().Format(time.RFC3339)
	}
	return []string{
		a.ID,
		store,
		a.Name,
		string(a.Type),
		a.IP,
		a.MAC,
		string(a.Status),
		strconv.Itoa(a.Latency),
		optionalInt(a.CPUUsage),
		optionalInt(a.DiskUsage),
		a.Model,
		a.OS,
		a.PurchaseDate,
		lastSeen,
		a.Observation,
	}
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func storeNames(stores []models.Store) map[string]string {
	names := make(map[string]string, len(stores))
	for i := range stores {
		names[stores[i].ID] = stores[i].Name
	}
	return names
}

// WriteCSV writes assets as CSV with a header row.
func WriteCSV(w io.Writer, stores []models.Store, assets []models.Asset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeaders()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	names := storeNames(stores)
	for i := range assets {
		if err := cw.Write(assetToRow(assets[i], names)); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// BuildXLSX renders assets into a single-sheet workbook with a styled,
// frozen header row.
func BuildXLSX(stores []models.Store, assets []models.Asset) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(xlsxSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E2E8F0"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	headers := exportHeaders()
	for col, h := range headers {
		if err := setCell(f, col+1, 1, h); err != nil {
			return nil, err
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, fmt.Errorf("column name: %w", err)
		}
		if err := f.SetColWidth(xlsxSheet, name, name, exportColumnWidths[col]); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return nil, fmt.Errorf("header range: %w", err)
	}
	if err := f.SetCellStyle(xlsxSheet, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("set header style: %w", err)
	}

	names := storeNames(stores)
	for i := range assets {
		row := assetToRow(assets[i], names)
		for col, v := range row {
			if v == "" {
				continue
			}
			if err := setCell(f, col+1, i+2, v); err != nil {
				return nil, err
			}
		}
	}

	if err := f.SetPanes(xlsxSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("freeze header: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setCell(f *excelize.File, col, row int, value string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetCellValue(xlsxSheet, cell, value); err != nil {
		return fmt.Errorf("set cell %s: %w", cell, err)
	}
	return nil
}
