package httpapi

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"healthvault-data/internal/domain"
)

// vitalsExportFixedHeader 导出固定列；体征列按数据内容动态追加
var vitalsExportFixedHeader = []string{
	"Date",
	"Overall Condition",
	"Symptoms",
	"Source",
}

// GenerateVitalsExport 生成体征观察导出 Excel 文件
// 体征列取全部记录中出现过的体征名并集，按字母序排列
func GenerateVitalsExport(records []*domain.VitalSignRecord) ([]byte, error) {
	vitalNames := map[string]bool{}
	parsed := make([]map[string]float64, len(records))
	for i, r := range records {
		vitals := map[string]float64{}
		if len(r.Vitals) > 0 {
			if err := json.Unmarshal(r.Vitals, &vitals); err != nil {
				return nil, fmt.Errorf("failed to parse vitals for %s: %w", r.ObservedOn.Format("2006-01-02"), err)
			}
		}
		parsed[i] = vitals
		for name := range vitals {
			vitalNames[name] = true
		}
	}

	columns := make([]string, 0, len(vitalNames))
	for name := range vitalNames {
		columns = append(columns, name)
	}
	sort.Strings(columns)

	headers := append(append([]string{}, vitalsExportFixedHeader...), columns...)

	f := excelize.NewFile()
	// Note: Don't defer Close() here, because WriteTo needs the file to be open

	sheetName := "Vital Signs"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}

	for rowIdx, r := range records {
		row := rowIdx + 2
		values := []any{
			r.ObservedOn.Format("2006-01-02"),
			r.OverallCondition,
			strings.Join(r.Symptoms, ", "),
			r.Source,
		}
		for _, name := range columns {
			if v, ok := parsed[rowIdx][name]; ok {
				values = append(values, v)
			} else {
				values = append(values, "")
			}
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	f.Close()
	return buf.Bytes(), nil
}
