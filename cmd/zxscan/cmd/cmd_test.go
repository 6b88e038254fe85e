package cmd

import (
	"bytes"
	"encoding/json"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	goqrcode "github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ericlevine/zxpipe/internal/testimage"
)

// isolate runs the test in an empty directory with no reachable config.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	return dir
}

func savePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, imaging.Save(img, path))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), err
}

func TestDecodeJSON(t *testing.T) {
	dir := isolate(t)
	path := savePNG(t, dir, "qr.png", testimage.QR(t, "hello zxscan", goqrcode.Medium, 256))

	out, err := run(t, "decode", "--format", "json", path)
	require.NoError(t, err)

	var files []fileResult
	require.NoError(t, json.Unmarshal([]byte(out), &files))
	require.Len(t, files, 1)
	f := files[0]
	assert.Equal(t, path, f.File)
	assert.True(t, f.Found)
	require.Len(t, f.Results, 1)
	r := f.Results[0]
	assert.Equal(t, "hello zxscan", r.Text)
	assert.Equal(t, "QR_CODE", r.Format)
	assert.Equal(t, 0, r.Orientation)
	assert.Equal(t, "M", r.ECLevel)
	assert.Equal(t, "]Q1", r.Symbology)
	assert.NotEmpty(t, r.Points)
}

func TestDecodeRotatedCode128Text(t *testing.T) {
	dir := isolate(t)
	// Turned clockwise, so the pipeline finds it after one
	// counter-clockwise turn.
	img := testimage.RotateCCW(testimage.Code128(t, "TURNED", 300, 60, 30), 270)
	path := savePNG(t, dir, "turned.png", img)

	out, err := run(t, "decode", path)
	require.NoError(t, err)
	assert.Equal(t, "[CODE_128] TURNED (90°)\n", out)
}

func TestDecodeAutoRotateOffMissesTurnedSymbol(t *testing.T) {
	dir := isolate(t)
	img := testimage.RotateCCW(testimage.Code128(t, "TURNED", 300, 60, 30), 270)
	path := savePNG(t, dir, "turned.png", img)

	out, err := run(t, "decode", "--auto-rotate=false", path)
	require.Error(t, err)
	assert.Equal(t, path+": no barcode found\n", out)
}

func TestDecodeCode39Flags(t *testing.T) {
	dir := isolate(t)
	checked := savePNG(t, dir, "checked.png", testimage.Code39(t, "HELLO-39", true, 600, 80, 40))
	escaped := savePNG(t, dir, "escaped.png", testimage.Code39(t, "+Z+X", false, 600, 80, 40))

	out, err := run(t, "decode", "--code39-check-digit", checked)
	require.NoError(t, err)
	assert.Equal(t, "[CODE_39] HELLO-39 (0°)\n", out)

	out, err = run(t, "decode", "--code39-full-ascii", escaped)
	require.NoError(t, err)
	assert.Equal(t, "[CODE_39] zx (0°)\n", out)
}

func TestDecodeReportsEveryFile(t *testing.T) {
	dir := isolate(t)
	blank := savePNG(t, dir, "blank.png", testimage.Canvas(200, 200))
	good := savePNG(t, dir, "ean.png", testimage.EAN(t, "5901234123457", 380, 100, 40))
	missing := filepath.Join(dir, "missing.png")

	out, err := run(t, "decode", blank, good, missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 3 images")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, blank+": no barcode found", lines[0])
	assert.Equal(t, good+": [EAN_13] 5901234123457 (0°)", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], missing+": error: "), lines[2])
}

func TestDecodeMultiYAML(t *testing.T) {
	dir := isolate(t)
	canvas := testimage.Canvas(700, 300)
	canvas = testimage.Place(canvas, testimage.QR(t, "left", goqrcode.Medium, 250), 20, 25)
	canvas = testimage.Place(canvas, testimage.QR(t, "right", goqrcode.Medium, 250), 420, 25)
	path := savePNG(t, dir, "two.png", canvas)

	out, err := run(t, "decode", "--multi", "--possible-formats", "QR_CODE", "-f", "yaml", path)
	require.NoError(t, err)

	var files []fileResult
	require.NoError(t, yaml.Unmarshal([]byte(out), &files))
	require.Len(t, files, 1)
	var texts []string
	for _, r := range files[0].Results {
		texts = append(texts, r.Text)
	}
	assert.ElementsMatch(t, []string{"left", "right"}, texts)
}

func TestConfigFileSelectsOutput(t *testing.T) {
	dir := isolate(t)
	path := savePNG(t, dir, "qr.png", testimage.QR(t, "from config", goqrcode.Low, 200))
	require.NoError(t, writeConfig(dir, "output:\n  format: json\n"))

	out, err := run(t, "decode", path)
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)), out)
	assert.Contains(t, out, `"text": "from config"`)
}

func TestInvalidConfigurationFails(t *testing.T) {
	dir := isolate(t)
	path := savePNG(t, dir, "blank.png", testimage.Canvas(50, 50))

	_, err := run(t, "--log-level", "loud", "decode", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_level")

	_, err = run(t, "decode", "--binarizer", "otsu", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "binarizer")
}

func TestRenderFormatsAgree(t *testing.T) {
	files := []fileResult{
		{File: "a.png", Found: true, Results: []resultView{
			{Text: "one", Format: "QR_CODE", Orientation: 90, Symbology: "]Q1", ECLevel: "H",
				Points: []pointView{{X: 1.5, Y: 2}, {X: 30, Y: 40.25}}},
			{Text: "two", Format: "CODE_128", Orientation: 180},
		}},
		{File: "b.png", Results: []resultView{}},
		{File: "c.png", Error: "boom", Results: []resultView{}},
	}

	var js, ym, txt bytes.Buffer
	require.NoError(t, render(&js, "json", files))
	require.NoError(t, render(&ym, "yaml", files))
	require.NoError(t, render(&txt, "text", files))

	var fromJSON, fromYAML []fileResult
	require.NoError(t, json.Unmarshal(js.Bytes(), &fromJSON))
	require.NoError(t, yaml.Unmarshal(ym.Bytes(), &fromYAML))
	assert.Equal(t, files, fromJSON)
	assert.Equal(t, files, fromYAML)

	assert.Equal(t, "a.png: [QR_CODE] one (90°)\n"+
		"a.png: [CODE_128] two (180°)\n"+
		"b.png: no barcode found\n"+
		"c.png: error: boom\n", txt.String())

	assert.Error(t, render(&txt, "xml", files))
}

func writeConfig(dir, body string) error {
	return os.WriteFile(filepath.Join(dir, "zxscan.yaml"), []byte(body), 0o600)
}
