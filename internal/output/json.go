// Package output renders a scrape result as either the structured JSON
// artifact or a condensed display table.
package output

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/sells-group/modelscan/internal/model"
)

// marshalRecords produces the structured document: a 2-space indented JSON
// array with the fixed field set from model.ModelRecord. A nil record set
// serializes as an empty array, never null.
func marshalRecords(records []model.ModelRecord) ([]byte, error) {
	if records == nil {
		records = []model.ModelRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "output: marshal records")
	}
	return append(data, '\n'), nil
}

// EncodeJSON writes the structured document to w.
func EncodeJSON(w io.Writer, records []model.ModelRecord) error {
	data, err := marshalRecords(records)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return eris.Wrap(err, "output: write records")
	}
	return nil
}

// WriteJSON writes the structured document to path atomically: the document
// is written to a temp file in the same directory and renamed into place, so
// a crash or a full disk never corrupts a previously published artifact.
func WriteJSON(path string, records []model.ModelRecord) error {
	data, err := marshalRecords(records)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return eris.Wrapf(err, "output: create temp file in %s", dir)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return eris.Wrap(err, "output: write temp file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return eris.Wrap(err, "output: close temp file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return eris.Wrapf(err, "output: replace %s", path)
	}
	return nil
}
