// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	// DefaultEndpoint is the OCR.space parse endpoint.
	DefaultEndpoint = "https://api.ocr.space/parse/image"

	// DefaultTimeout bounds a single call to the provider.
	DefaultTimeout = 30 * time.Second
)

// Options control recognition.
type Options struct {
	// Language is the OCR.space language code, e.g. eng.
	Language string

	// DetectOrientation rotates the image before recognition.
	DetectOrientation bool

	// Engine is the OCR engine variant, 2 is the more accurate one.
	Engine int
}

// DefaultOptions are the options used for recipe photos.
var DefaultOptions = Options{
	Language:          "eng",
	DetectOrientation: true,
	Engine:            2,
}

// Result is the outcome of recognizing an image.
type Result struct {
	Text string

	// OK is false when the provider reported an error or returned no results.
	OK bool

	ErrorMessage string
}

// Recognizer extracts text from images.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, opts Options) (*Result, error)
}

// Client is a Recognizer calling the OCR.space API.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
	timeout  time.Duration
	backOff  func() backoff.BackOff
	maxTries uint
}

// Option configures a Client.
type Option func(c *Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.http = client
	}
}

// WithTimeout sets the deadline of each attempt, zero disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithBackOff sets the retry policy for transport errors and server errors.
func WithBackOff(b func() backoff.BackOff, maxTries uint) Option {
	return func(c *Client) {
		c.backOff = b
		c.maxTries = maxTries
	}
}

func NewClient(endpoint string, apiKey string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     http.DefaultClient,
		timeout:  DefaultTimeout,
		backOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
		maxTries: 3,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type parseResponse struct {
	ParsedResults []struct {
		ParsedText   string          `json:"ParsedText"`
		ErrorMessage json.RawMessage `json:"ErrorMessage"`
	} `json:"ParsedResults"`
	IsErroredOnProcessing bool            `json:"IsErroredOnProcessing"`
	ErrorMessage          json.RawMessage `json:"ErrorMessage"`
}

// Recognize uploads the image, which must be a JPEG, and returns its text. Errors
// reported by the provider are returned in the result, the error is only set when
// the provider could not be reached.
func (c *Client) Recognize(ctx context.Context, image []byte, opts Options) (*Result, error) {
	body, contentType, err := multipartBody(image, opts)
	if err != nil {
		return nil, err
	}

	res, err := backoff.Retry(ctx, func() (*parseResponse, error) {
		return c.post(ctx, body, contentType)
	}, backoff.WithBackOff(c.backOff()), backoff.WithMaxTries(c.maxTries))
	if err != nil {
		return nil, err
	}

	if res.IsErroredOnProcessing {
		return &Result{ErrorMessage: errorText(res.ErrorMessage)}, nil
	}
	if len(res.ParsedResults) == 0 {
		return &Result{ErrorMessage: "no results"}, nil
	}
	return &Result{
		Text: res.ParsedResults[0].ParsedText,
		OK:   true,
	}, nil
}

func (c *Client) post(ctx context.Context, body []byte, contentType string) (*parseResponse, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("ocr: creating request: %w", err))
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ocr: calling provider: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ocr: reading response: %w", err)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("ocr: provider returned HTTP %d", resp.StatusCode)
	}

	var res parseResponse
	if err := json.Unmarshal(b, &res); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("ocr: provider returned HTTP %d: unmarshalling response: %w", resp.StatusCode, err))
	}
	return &res, nil
}

func multipartBody(image []byte, opts Options) ([]byte, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="recipe.jpg"`)
	h.Set("Content-Type", "image/jpeg")
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("ocr: creating file part: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, "", fmt.Errorf("ocr: writing file part: %w", err)
	}

	fields := [][2]string{
		{"language", opts.Language},
		{"isOverlayRequired", "false"},
		{"detectOrientation", strconv.FormatBool(opts.DetectOrientation)},
		{"scale", "true"},
		{"OCREngine", strconv.Itoa(opts.Engine)},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("ocr: writing field %s: %w", f[0], err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("ocr: closing multipart body: %w", err)
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}

// errorText reads OCR.space's ErrorMessage, which is either a string or a list of strings.
func errorText(raw json.RawMessage) string {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, " ")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return "OCR processing failed"
}
