package fetcher

import (
	"bytes"
	"image/color"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "imgdataset/pkg/errors"
	"imgdataset/pkg/logger"
)

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 40, B: 40, A: 255})
	require.NoError(t, imaging.Encode(&buf, img, imaging.JPEG))
	return buf.Bytes()
}

func newImageServer(t *testing.T) *httptest.Server {
	t.Helper()
	photo := jpegBytes(t, 64, 48)

	mux := http.NewServeMux()
	mux.HandleFunc("/photo.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(photo)
	})
	mux.HandleFunc("/garbage.jpg", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("this is not an image"))
	})
	mux.HandleFunc("/agent", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.Header.Get("User-Agent")))
	})
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=ISO-8859-1")
		_, _ = w.Write([]byte(`<html><body>
<img src="/photo.jpg">
<img src="data:image/png;base64,AAAA">
<img data-src="https://cdn.example.com/a.jpg?ixid=A1&w=400" srcset="https://cdn.example.com/a.jpg?ixid=A1&w=400 400w, https://cdn.example.com/a.jpg?ixid=A1&w=800 800w">
<picture><source srcset="https://cdn.example.com/b.webp?ixid=B2 1x"></picture>
<img src="/photo.jpg">
</body></html>`))
	})
	// Anything else is a 404
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestFetch(t *testing.T) {
	server := newImageServer(t)
	client := NewClient(5*time.Second, "", logger.NewNopLogger())

	t.Run("decodes a jpeg body", func(t *testing.T) {
		img, err := client.Fetch(server.URL + "/photo.jpg")
		require.NoError(t, err)
		assert.Equal(t, 64, img.Bounds().Dx())
		assert.Equal(t, 48, img.Bounds().Dy())
	})

	t.Run("non-200 is a network failure", func(t *testing.T) {
		img, err := client.Fetch(server.URL + "/missing.jpg")
		assert.Nil(t, img)
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.ErrorTypeNetwork))

		var tagged *errs.Error
		require.ErrorAs(t, err, &tagged)
		assert.Equal(t, http.StatusNotFound, tagged.Code)
	})

	t.Run("undecodable body is a decode failure", func(t *testing.T) {
		img, err := client.Fetch(server.URL + "/garbage.jpg")
		assert.Nil(t, img)
		assert.True(t, errs.Is(err, errs.ErrorTypeDecode))
	})

	t.Run("unreachable host is a network failure", func(t *testing.T) {
		dead := httptest.NewServer(http.NotFoundHandler())
		deadURL := dead.URL
		dead.Close()

		img, err := client.Fetch(deadURL + "/photo.jpg")
		assert.Nil(t, img)
		assert.True(t, errs.Is(err, errs.ErrorTypeNetwork))
	})
}

func TestFetchLogsFailure(t *testing.T) {
	server := newImageServer(t)
	log := logger.NewTestLogger()
	client := NewClient(5*time.Second, "", log)

	_, err := client.Fetch(server.URL + "/missing.jpg")
	require.Error(t, err)
	assert.True(t, log.HasMessage("failed to fetch "+server.URL+"/missing.jpg"))
}

func TestClientHeaders(t *testing.T) {
	server := newImageServer(t)
	client := NewClient(5*time.Second, "dataset-bot/1.0", logger.NewNopLogger())

	data, err := client.Download(server.URL + "/agent")
	require.NoError(t, err)
	assert.Equal(t, "dataset-bot/1.0", string(data))

	client.SetHeader("User-Agent", "other")
	data, err = client.Download(server.URL + "/agent")
	require.NoError(t, err)
	assert.Equal(t, "other", string(data))
}

func TestProbe(t *testing.T) {
	server := newImageServer(t)
	client := NewClient(5*time.Second, "", logger.NewNopLogger())

	probe, err := client.Probe(server.URL + "/page")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, probe.StatusCode)
	assert.Equal(t, "text/html", probe.ContentType)
	assert.Equal(t, "ISO-8859-1", probe.Encoding)
	assert.NotEmpty(t, probe.Header.Get("Content-Type"))

	probe, err = client.Probe(server.URL + "/missing")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, probe.StatusCode)
}

func TestScanPage(t *testing.T) {
	server := newImageServer(t)
	client := NewClient(5*time.Second, "", logger.NewNopLogger())

	urls, err := client.ScanPage(server.URL + "/page")
	require.NoError(t, err)

	assert.Equal(t, []string{
		server.URL + "/photo.jpg",
		"https://cdn.example.com/a.jpg?ixid=A1&w=400",
		"https://cdn.example.com/a.jpg?ixid=A1&w=800",
		"https://cdn.example.com/b.webp?ixid=B2",
	}, urls)

	_, err = client.ScanPage(server.URL + "/missing")
	assert.True(t, errs.Is(err, errs.ErrorTypeNetwork))
}

func TestParseImageURLs(t *testing.T) {
	base, err := url.Parse("https://example.com/gallery/")
	require.NoError(t, err)

	urls, err := ParseImageURLs([]byte(`<img src="one.jpg"><img src="../two.jpg"><p>text</p>`), base)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.com/gallery/one.jpg",
		"https://example.com/two.jpg",
	}, urls)
}

func TestSplitSrcset(t *testing.T) {
	got := splitSrcset("https://x/a.jpg?w=1,2 1x, https://x/b.jpg 2x")
	assert.Equal(t, []string{"https://x/a.jpg?w=1,2", "https://x/b.jpg"}, got)
}
