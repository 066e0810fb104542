// Package ingest moves record collections across the file boundary:
// loading raw and tagged report CSVs (including legacy Hebrew Windows
// exports), and writing the stage outputs the next stage or a human
// tagger consumes. The core packages never touch files themselves.
package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/matzpen-project/matzpen/internal/model"
)

// Column names of the report files, as produced by the intake system.
const (
	colReportID    = "Report_ID"
	colBody        = "Content_Body"
	colSector      = "Sector"
	colUrgency     = "Report_Urgency"
	colReliability = "Reliability_Score"
	colDate        = "Report_Date"

	colExtracted  = "Extracted_Coordinate"
	colHasCoord   = "Has_Coordinate"
	colPattern    = "Extraction_Pattern"
	colEdgeScore  = "Edge_Score"
	colEdgeReason = "Edge_Reasons"

	colModelYN    = "Y_N_MODEL"
	colTagYN      = "Y_N_TAG"
	colTaggedCoor = "Tagged_Coordinate"
	colIsEdge     = "Is_Edge_Case"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decode converts raw file bytes to UTF-8. Exports from older intake
// workstations arrive in cp1255 or iso-8859-8; anything that is not
// already valid UTF-8 goes through those decoders in that order.
func decode(raw []byte) ([]byte, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return raw, nil
	}
	for _, cm := range []*charmap.Charmap{charmap.Windows1255, charmap.ISO8859_8} {
		if out, err := cm.NewDecoder().Bytes(raw); err == nil {
			return out, nil
		}
	}
	return nil, fmt.Errorf("file is not UTF-8, cp1255, or iso-8859-8")
}

// header maps column names to indices, tolerating extra columns.
type header map[string]int

func readAll(path string) (header, [][]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	decoded, err := decode(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", path, err)
	}

	r := csv.NewReader(bytes.NewReader(decoded))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(rows) == 0 {
		return header{}, nil, nil
	}

	h := make(header, len(rows[0]))
	for i, name := range rows[0] {
		h[strings.TrimSpace(name)] = i
	}
	return h, rows[1:], nil
}

func (h header) get(row []string, name string) string {
	idx, ok := h[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// ReadReports loads raw report records. Missing optional columns load
// as empty strings; malformed rows are the cleanser's concern, not an
// error here.
func ReadReports(path string) ([]model.Report, error) {
	h, rows, err := readAll(path)
	if err != nil {
		return nil, err
	}
	if _, ok := h[colReportID]; !ok {
		return nil, fmt.Errorf("%s: missing required column %s", path, colReportID)
	}
	if _, ok := h[colBody]; !ok {
		return nil, fmt.Errorf("%s: missing required column %s", path, colBody)
	}

	reports := make([]model.Report, 0, len(rows))
	for _, row := range rows {
		rep := model.Report{
			ID:          h.get(row, colReportID),
			Body:        h.get(row, colBody),
			Sector:      h.get(row, colSector),
			Urgency:     h.get(row, colUrgency),
			Reliability: h.get(row, colReliability),
		}
		if raw := h.get(row, colDate); raw != "" {
			for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
				if t, err := time.Parse(layout, raw); err == nil {
					rep.ReportedAt = t
					break
				}
			}
		}
		reports = append(reports, rep)
	}
	return reports, nil
}

// WriteScored writes the extraction stage output: the report columns
// plus extraction and edge-score columns. The coordinate stays quoted
// as text so spreadsheet tools do not eat leading zeros.
func WriteScored(path string, records []model.ScoredReport) error {
	rows := [][]string{{
		colReportID, colBody, colSector, colUrgency, colReliability,
		colExtracted, colHasCoord, colPattern, colEdgeScore, colEdgeReason,
	}}
	for _, rec := range records {
		has := "0"
		if rec.Extraction.HasCoordinate {
			has = "1"
		}
		rows = append(rows, []string{
			rec.Report.ID, rec.Report.Body, rec.Report.Sector,
			rec.Report.Urgency, rec.Report.Reliability,
			rec.Extraction.Coordinate, has, rec.Extraction.PatternID,
			strconv.Itoa(rec.Edge.Score), strings.Join(rec.Edge.Reasons, ", "),
		})
	}
	return writeCSV(path, rows)
}

// ReadScored loads a scored-record file written by WriteScored.
func ReadScored(path string) ([]model.ScoredReport, error) {
	h, rows, err := readAll(path)
	if err != nil {
		return nil, err
	}
	records := make([]model.ScoredReport, 0, len(rows))
	for _, row := range rows {
		rec := model.ScoredReport{
			Report: model.Report{
				ID:          h.get(row, colReportID),
				Body:        h.get(row, colBody),
				Sector:      h.get(row, colSector),
				Urgency:     h.get(row, colUrgency),
				Reliability: h.get(row, colReliability),
			},
			Extraction: model.ExtractionResult{
				Coordinate: h.get(row, colExtracted),
				PatternID:  h.get(row, colPattern),
			},
		}
		rec.Extraction.HasCoordinate = rec.Extraction.Coordinate != ""
		if raw := h.get(row, colEdgeScore); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil {
				rec.Edge.Score = n
			}
		}
		if raw := h.get(row, colEdgeReason); raw != "" {
			rec.Edge.Reasons = strings.Split(raw, ", ")
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteTagging writes the file handed to human taggers: sample rows
// with the model's decision and two empty columns (decision and
// coordinate) for the tagger to fill in.
func WriteTagging(path string, sample model.Sample, byID map[string]model.ScoredReport) error {
	rows := [][]string{{
		colReportID, colBody, colExtracted, colModelYN, colTagYN,
		colTaggedCoor, colIsEdge, colSector, colUrgency, colReliability,
	}}
	for _, entry := range sample.Entries {
		rec, ok := byID[entry.ReportID]
		if !ok {
			return fmt.Errorf("sample entry %s not found in record set", entry.ReportID)
		}
		modelYN := "No"
		if rec.Extraction.HasCoordinate {
			modelYN = "Yes"
		}
		isEdge := "No"
		if entry.Category == model.CategoryEdge {
			isEdge = "Yes"
		}
		rows = append(rows, []string{
			rec.Report.ID, rec.Report.Body, rec.Extraction.Coordinate,
			modelYN, "", "", isEdge,
			rec.Report.Sector, rec.Report.Urgency, rec.Report.Reliability,
		})
	}
	return writeCSV(path, rows)
}

// ReadLabeled loads a tagged file for evaluation. Decision values are
// passed through raw; the evaluator normalizes and filters them.
func ReadLabeled(path string) ([]model.LabeledRecord, error) {
	h, rows, err := readAll(path)
	if err != nil {
		return nil, err
	}
	for _, required := range []string{colModelYN, colTagYN} {
		if _, ok := h[required]; !ok {
			return nil, fmt.Errorf("%s: missing required column %s", path, required)
		}
	}
	records := make([]model.LabeledRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, model.LabeledRecord{
			ReportID:    h.get(row, colReportID),
			Body:        h.get(row, colBody),
			Extracted:   h.get(row, colExtracted),
			ModelSays:   h.get(row, colModelYN),
			TaggerSays:  h.get(row, colTagYN),
			TaggedCoord: h.get(row, colTaggedCoor),
			IsEdgeCase:  strings.EqualFold(h.get(row, colIsEdge), "yes"),
			Sector:      h.get(row, colSector),
			Urgency:     h.get(row, colUrgency),
			Reliability: h.get(row, colReliability),
		})
	}
	return records, nil
}

// WriteReports writes cleaned report records.
func WriteReports(path string, reports []model.Report) error {
	rows := [][]string{{colReportID, colBody, colSector, colUrgency, colReliability, colDate}}
	for _, rep := range reports {
		date := ""
		if !rep.ReportedAt.IsZero() {
			date = rep.ReportedAt.Format(time.RFC3339)
		}
		rows = append(rows, []string{rep.ID, rep.Body, rep.Sector, rep.Urgency, rep.Reliability, date})
	}
	return writeCSV(path, rows)
}

// WriteErrors exports misclassified records with their direction in
// the first column for manual inspection.
func WriteErrors(path string, errType []string, records []model.LabeledRecord) error {
	if len(errType) != len(records) {
		return fmt.Errorf("error type and record counts differ")
	}
	rows := [][]string{{
		"Error_Type", colReportID, colBody, colExtracted, colModelYN,
		colTagYN, colTaggedCoor, colIsEdge, colSector, colUrgency, colReliability,
	}}
	for i, rec := range records {
		isEdge := "No"
		if rec.IsEdgeCase {
			isEdge = "Yes"
		}
		rows = append(rows, []string{
			errType[i], rec.ReportID, rec.Body, rec.Extracted,
			rec.ModelSays, rec.TaggerSays, rec.TaggedCoord, isEdge,
			rec.Sector, rec.Urgency, rec.Reliability,
		})
	}
	return writeCSV(path, rows)
}

// writeCSV writes rows with a UTF-8 BOM so spreadsheet tools pick up
// Hebrew text correctly.
func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	w.Flush()
	return w.Error()
}
