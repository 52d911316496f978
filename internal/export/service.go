package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"research-hub-api/internal/access"
	"research-hub-api/internal/apperrors"
	"research-hub-api/internal/form"

	"github.com/iancoleman/orderedmap"
	"github.com/xuri/excelize/v2"
)

type ExportService struct {
	Forms FormReaderPort
}

// ExportFormResponses renders every response of a form as csv or xlsx.
// Columns follow the schema's field order so exports line up with the form as
// respondents saw it.
func (es *ExportService) ExportFormResponses(formID uint, format string, p access.Principal) (string, string, []byte, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "xlsx"
	}
	if format != "csv" && format != "xlsx" {
		return "", "", nil, apperrors.NewValidation("format must be csv or xlsx")
	}

	f, decision, err := es.Forms.GetForm(formID, p)
	if err != nil {
		return "", "", nil, err
	}
	if !decision.CanExport {
		return "", "", nil, apperrors.NewAuth("no permission to export this form")
	}

	schema, err := form.ValidateFormSchema(f.Schema)
	if err != nil {
		return "", "", nil, err
	}

	responses, photos, err := es.Forms.ListResponses(formID, p)
	if err != nil {
		return "", "", nil, err
	}

	rows := buildRows(schema, responses, photos)
	ts := time.Now().Format("20060102_150405")

	if format == "csv" {
		data, err := buildCSV(schema, rows)
		if err != nil {
			return "", "", nil, err
		}
		return "text/csv; charset=utf-8", fmt.Sprintf("form_%d_responses_%s.csv", formID, ts), data, nil
	}

	data, err := buildXLSX(f.Title, schema, rows)
	if err != nil {
		return "", "", nil, err
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		fmt.Sprintf("form_%d_responses_%s.xlsx", formID, ts), data, nil
}

const metaColumns = 5

func headerFor(schema *form.FormSchema) []string {
	header := []string{"response_id", "submitted_at", "collector_type", "respondent_id", "photos"}
	for _, field := range schema.Fields {
		header = append(header, field.Key)
	}
	return header
}

// buildRows reorders each response's JSON payload to the schema's field order.
// Missing fields render as empty cells.
func buildRows(schema *form.FormSchema, responses []form.FormResponse, photos map[uint][]form.ResponsePhoto) []*orderedmap.OrderedMap {
	rows := make([]*orderedmap.OrderedMap, 0, len(responses))

	for _, r := range responses {
		var data map[string]interface{}
		_ = json.Unmarshal(r.Data, &data)

		row := orderedmap.New()
		row.Set("response_id", r.ID)
		row.Set("submitted_at", r.SubmittedAt.Format(time.RFC3339))
		row.Set("collector_type", r.CollectorType)
		if r.RespondentID != nil {
			row.Set("respondent_id", *r.RespondentID)
		} else {
			row.Set("respondent_id", "")
		}
		row.Set("photos", len(photos[r.ID]))

		for _, field := range schema.Fields {
			if val, exists := data[field.Key]; exists {
				row.Set(field.Key, val)
			} else {
				row.Set(field.Key, "")
			}
		}
		rows = append(rows, row)
	}

	return rows
}

func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, fmt.Sprintf("%v", item))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprintf("%v", t)
	}
}

func buildCSV(schema *form.FormSchema, rows []*orderedmap.OrderedMap) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	if err := w.Write(headerFor(schema)); err != nil {
		return nil, err
	}

	for _, row := range rows {
		record := make([]string, 0, len(row.Keys()))
		for _, key := range row.Keys() {
			v, _ := row.Get(key)
			record = append(record, cellString(v))
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

func buildXLSX(title string, schema *form.FormSchema, rows []*orderedmap.OrderedMap) ([]byte, error) {
	f := excelize.NewFile()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E2E8F0"}},
	})

	defaultSheet := f.GetSheetName(0)

	sheet := safeSheetName(title)
	if sheet == "" {
		sheet = "Responses"
	}
	f.NewSheet(sheet)

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return nil, err
	}

	header := make([]interface{}, 0, metaColumns+len(schema.Fields))
	for _, h := range headerFor(schema) {
		header = append(header, excelize.Cell{Value: h, StyleID: headerStyle})
	}
	_ = sw.SetRow("A1", header)

	rowNum := 2
	for _, row := range rows {
		values := make([]interface{}, 0, len(row.Keys()))
		for _, key := range row.Keys() {
			v, _ := row.Get(key)
			values = append(values, cellString(v))
		}
		cell, _ := excelize.CoordinatesToCellName(1, rowNum)
		_ = sw.SetRow(cell, values)
		rowNum++
	}

	if err := sw.Flush(); err != nil {
		return nil, err
	}

	if defaultSheet != "" && defaultSheet != sheet {
		f.DeleteSheet(defaultSheet)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func safeSheetName(name string) string {
	n := strings.TrimSpace(name)
	n = strings.NewReplacer(":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_").Replace(n)
	if len(n) > 31 {
		n = n[:31]
	}
	return n
}
