package mapping

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Column headers accepted when loading a table. The finance team's editor
// historically wrote "Teams_Folder" and "GL_Code"; newer exports spell them
// out.
var (
	payeeHeaders  = []string{"PAYEE"}
	targetHeaders = []string{"TEAMS_FOLDER", "TEAMS FOLDER", "ROUTING_TARGET", "ROUTING TARGET", "ROUTINGTARGET"}
	glCodeHeaders = []string{"GL_CODE", "GL CODE", "GLCODE"}
)

// Load reads a routing table from a .csv or .xlsx file. A missing file is not
// an error: it yields an empty table, since an absent table simply means
// every payee resolves to Uncategorized.
func Load(path string, mode Mode) (*Table, error) {
	if path == "" {
		return NewTable(nil, mode), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewTable(nil, mode), nil
	}

	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		rows, err = readXLSX(path)
	default:
		rows, err = readCSV(path)
	}
	if err != nil {
		return nil, fmt.Errorf("mapping: loading %s: %w", path, err)
	}

	rules, err := rulesFromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("mapping: loading %s: %w", path, err)
	}
	return NewTable(rules, mode), nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // tolerate ragged rows from hand-edited files

	var rows [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, record)
	}
	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.GetRows(sheet)
}

func rulesFromRows(rows [][]string) ([]Rule, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	payeeCol := findColumn(rows[0], payeeHeaders)
	if payeeCol < 0 {
		return nil, fmt.Errorf("missing Payee column in header %v", rows[0])
	}
	targetCol := findColumn(rows[0], targetHeaders)
	glCodeCol := findColumn(rows[0], glCodeHeaders)

	rules := make([]Rule, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rule := Rule{
			Payee:         cell(row, payeeCol),
			RoutingTarget: cell(row, targetCol),
			GLCode:        cell(row, glCodeCol),
		}
		if strings.TrimSpace(rule.Payee) == "" {
			continue
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func findColumn(header []string, names []string) int {
	for i, h := range header {
		normalized := strings.ToUpper(strings.TrimSpace(h))
		for _, name := range names {
			if normalized == name {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
