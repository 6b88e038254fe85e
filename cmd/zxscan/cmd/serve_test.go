package cmd

import (
	"bytes"
	"encoding/json"
	"image"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/prometheus/client_golang/prometheus"
	goqrcode "github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericlevine/zxpipe/internal/config"
	"github.com/ericlevine/zxpipe/internal/testimage"
	"github.com/ericlevine/zxpipe/pipeline"
)

func newTestServer(t *testing.T, maxUpload int64) *httptest.Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	s := &server{
		decode:    config.DefaultConfig().Decode,
		maxUpload: maxUpload,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics:   pipeline.NewMetrics(reg),
	}
	mux := http.NewServeMux()
	s.routes(mux, reg)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

func post(t *testing.T, url string, body []byte) (int, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "image/png", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestServeDecode(t *testing.T) {
	ts := newTestServer(t, 1<<20)
	body := encodePNG(t, testimage.QR(t, "served", goqrcode.Medium, 256))

	status, out := post(t, ts.URL+"/decode", body)
	require.Equal(t, http.StatusOK, status, out)
	assert.Equal(t, true, out["found"])
	results := out["results"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, "served", results[0].(map[string]any)["text"])
	assert.Equal(t, "QR_CODE", results[0].(map[string]any)["format"])

	status, out = post(t, ts.URL+"/decode", encodePNG(t, testimage.Canvas(120, 120)))
	require.Equal(t, http.StatusOK, status, out)
	assert.Equal(t, false, out["found"])
	assert.Empty(t, out["results"])

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	metrics, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `zxpipe_decode_calls_total{mode="single",outcome="found"} 1`)
	assert.Contains(t, string(metrics), `zxpipe_decode_calls_total{mode="single",outcome="not_found"} 1`)
}

func TestServeMulti(t *testing.T) {
	ts := newTestServer(t, 1<<20)
	canvas := testimage.Canvas(700, 300)
	canvas = testimage.Place(canvas, testimage.QR(t, "one", goqrcode.Medium, 250), 20, 25)
	canvas = testimage.Place(canvas, testimage.QR(t, "two", goqrcode.Medium, 250), 420, 25)

	status, out := post(t, ts.URL+"/decode?multi=true", encodePNG(t, canvas))
	require.Equal(t, http.StatusOK, status, out)
	assert.Len(t, out["results"], 2)

	status, out = post(t, ts.URL+"/decode?multi=maybe", encodePNG(t, canvas))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, out["error"], "multi")
}

func TestServeRejectsBadUploads(t *testing.T) {
	ts := newTestServer(t, 1024)

	status, out := post(t, ts.URL+"/decode", []byte("not an image"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, out["error"], "cannot decode image")

	status, out = post(t, ts.URL+"/decode", bytes.Repeat([]byte{0x89}, 4096))
	assert.Equal(t, http.StatusRequestEntityTooLarge, status)
	assert.Contains(t, out["error"], "1024 bytes")

	resp, err := http.Get(ts.URL + "/decode")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServeHealth(t *testing.T) {
	ts := newTestServer(t, 1024)
	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json"))
}
