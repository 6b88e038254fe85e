package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/ericlevine/zxpipe"
)

// fileResult is the printed outcome for one image.
type fileResult struct {
	File    string       `json:"file,omitempty" yaml:"file,omitempty"`
	Found   bool         `json:"found" yaml:"found"`
	Error   string       `json:"error,omitempty" yaml:"error,omitempty"`
	Results []resultView `json:"results" yaml:"results"`
}

type resultView struct {
	Text        string      `json:"text" yaml:"text"`
	Format      string      `json:"format" yaml:"format"`
	Orientation int         `json:"orientation" yaml:"orientation"`
	Symbology   string      `json:"symbology,omitempty" yaml:"symbology,omitempty"`
	ECLevel     string      `json:"ec_level,omitempty" yaml:"ec_level,omitempty"`
	Points      []pointView `json:"points,omitempty" yaml:"points,omitempty"`
}

type pointView struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func newFileResult(file string, results []*zxpipe.Result) fileResult {
	fr := fileResult{File: file, Found: len(results) > 0, Results: make([]resultView, 0, len(results))}
	for _, r := range results {
		fr.Results = append(fr.Results, newResultView(r))
	}
	return fr
}

func newResultView(r *zxpipe.Result) resultView {
	v := resultView{Text: r.Text, Format: r.Format.String()}
	v.Orientation, _ = r.Orientation()
	if s, ok := r.Metadata[zxpipe.MetadataSymbologyIdentifier]; ok {
		v.Symbology = fmt.Sprint(s)
	}
	if l, ok := r.Metadata[zxpipe.MetadataErrorCorrectionLevel]; ok {
		v.ECLevel = fmt.Sprint(l)
	}
	for _, p := range r.Points {
		v.Points = append(v.Points, pointView{X: p.X, Y: p.Y})
	}
	return v
}

// render writes files to w as text, json or yaml.
func render(w io.Writer, format string, files []fileResult) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(files)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(files); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		return renderText(w, files)
	}
	return fmt.Errorf("unknown output format %q: %w", format, zxpipe.ErrConfiguration)
}

func renderText(w io.Writer, files []fileResult) error {
	for _, f := range files {
		var err error
		switch {
		case f.Error != "":
			_, err = fmt.Fprintf(w, "%s: error: %s\n", f.File, f.Error)
		case !f.Found:
			_, err = fmt.Fprintf(w, "%s: no barcode found\n", f.File)
		}
		if err != nil {
			return err
		}
		for _, r := range f.Results {
			prefix := ""
			if len(files) > 1 {
				prefix = f.File + ": "
			}
			if _, err := fmt.Fprintf(w, "%s[%s] %s (%d°)\n", prefix, r.Format, r.Text, r.Orientation); err != nil {
				return err
			}
		}
	}
	return nil
}
