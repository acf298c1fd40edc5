package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/mgxs/internal/sample"
)

type ExportData struct {
	Run  RunMetadata `json:"run"`
	Rows []ExportRow `json:"rows"`
}

type ExportRow struct {
	Material   string  `json:"material"`
	Group      int     `json:"group"`
	Samples    int     `json:"samples"`
	Total      float64 `json:"total"`
	Absorption float64 `json:"absorption"`
	NuFission  float64 `json:"nu_fission"`
}

// ExportJSON writes a stored run as one indented JSON document.
func ExportJSON(w io.Writer, s Store, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	rows, err := s.LoadRows(runID)
	if err != nil {
		return err
	}

	data := ExportData{Run: *meta, Rows: make([]ExportRow, len(rows))}
	for i, r := range rows {
		data.Rows[i] = exportRow(r)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportJSONFile is ExportJSON to a file at path.
func ExportJSONFile(path string, s Store, runID string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return ExportJSON(file, s, runID)
}

func exportRow(r sample.Row) ExportRow {
	return ExportRow{
		Material:   r.Material,
		Group:      r.Group,
		Samples:    r.Samples,
		Total:      r.Total,
		Absorption: r.Absorption,
		NuFission:  r.NuFission,
	}
}
