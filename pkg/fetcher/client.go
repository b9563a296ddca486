package fetcher

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // register the WebP decoder

	errs "imgdataset/pkg/errors"
	"imgdataset/pkg/logger"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

// Client performs single blocking GET requests for images and pages
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	logger     logger.Logger
}

// Probe describes the response to a GET, without its body
type Probe struct {
	URL         string
	StatusCode  int
	Header      http.Header
	ContentType string
	Encoding    string
}

// NewClient creates a new fetch client
func NewClient(timeout time.Duration, userAgent string, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"User-Agent":      userAgent,
			"Accept":          "image/avif,image/webp,image/apng,image/*,text/html;q=0.9,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
		},
		logger: log,
	}
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// get performs a GET with the configured headers
func (c *Client) get(url string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.Network(url, 0, fmt.Errorf("failed to create request: %w", err))
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"url":      url,
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errs.Network(url, 0, err)
	}

	logger.LogRequest(c.logger, req.Method, url, resp.StatusCode, float64(duration.Milliseconds()))
	return resp, nil
}

// Download returns the body of a 200 response
func (c *Client) Download(url string) ([]byte, error) {
	resp, err := c.get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errs.Network(url, resp.StatusCode, nil)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Network(url, resp.StatusCode, fmt.Errorf("failed to read body: %w", err))
	}

	return data, nil
}

// Fetch downloads url and decodes the body into an image
func (c *Client) Fetch(url string) (image.Image, error) {
	data, err := c.Download(url)
	if err != nil {
		c.logger.WithError(err).Warn(fmt.Sprintf("failed to fetch %s", url))
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		decodeErr := errs.Decode(url, err)
		c.logger.WithError(decodeErr).Warn(fmt.Sprintf("failed to fetch %s", url))
		return nil, decodeErr
	}

	c.logger.DebugWithFields("fetched image", map[string]interface{}{
		"url":    url,
		"size":   len(data),
		"width":  img.Bounds().Dx(),
		"height": img.Bounds().Dy(),
	})

	return img, nil
}

// Probe reports status, headers and text encoding of url
func (c *Client) Probe(url string) (*Probe, error) {
	resp, err := c.get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	probe := &Probe{
		URL:         url,
		StatusCode:  resp.StatusCode,
		Header:      resp.Header,
		ContentType: resp.Header.Get("Content-Type"),
	}
	if mediaType, params, err := mime.ParseMediaType(probe.ContentType); err == nil {
		probe.ContentType = mediaType
		probe.Encoding = params["charset"]
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.WarnWithFields("non-200 status", map[string]interface{}{
			"url":    url,
			"status": resp.StatusCode,
		})
	}

	return probe, nil
}
