// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package ocr

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(srv.URL, "secret", WithBackOff(func() backoff.BackOff {
		return &backoff.ZeroBackOff{}
	}, 3))
}

func TestRecognize(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("apikey"))
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "eng", r.FormValue("language"))
		assert.Equal(t, "true", r.FormValue("detectOrientation"))
		assert.Equal(t, "true", r.FormValue("scale"))
		assert.Equal(t, "2", r.FormValue("OCREngine"))

		f, hdr, err := r.FormFile("file")
		if assert.NoError(t, err) {
			assert.Equal(t, "recipe.jpg", hdr.Filename)
			b, _ := io.ReadAll(f)
			assert.Equal(t, "jpegbytes", string(b))
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ParsedResults": [{"ParsedText": "2 cups flour\n1 egg", "ErrorMessage": ""}], "IsErroredOnProcessing": false}`))
	})

	res, err := c.Recognize(t.Context(), []byte("jpegbytes"), DefaultOptions)
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, "2 cups flour\n1 egg", res.Text)
}

func TestRecognizeProviderError(t *testing.T) {
	tests := []struct {
		name string
		body string
		msg  string
	}{
		{
			name: "errored list",
			body: `{"IsErroredOnProcessing": true, "ErrorMessage": ["File failed validation.", "Too large."]}`,
			msg:  "File failed validation. Too large.",
		},
		{
			name: "errored string",
			body: `{"IsErroredOnProcessing": true, "ErrorMessage": "Timed out"}`,
			msg:  "Timed out",
		},
		{
			name: "no results",
			body: `{"ParsedResults": [], "IsErroredOnProcessing": false}`,
			msg:  "no results",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tc.body))
			})
			res, err := c.Recognize(t.Context(), []byte("jpegbytes"), DefaultOptions)
			require.NoError(t, err)
			assert.False(t, res.OK)
			assert.Equal(t, tc.msg, res.ErrorMessage)
		})
	}
}

func TestRecognizeRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"ParsedResults": [{"ParsedText": "soup"}]}`))
	})

	res, err := c.Recognize(t.Context(), []byte("jpegbytes"), DefaultOptions)
	require.NoError(t, err)
	assert.Equal(t, "soup", res.Text)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRecognizeGivesUp(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.Recognize(t.Context(), []byte("jpegbytes"), DefaultOptions)
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRecognizeDoesNotRetryBadPayload(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("The API key is invalid"))
	})

	_, err := c.Recognize(t.Context(), []byte("jpegbytes"), DefaultOptions)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRecognizeTimesOut(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "secret", WithTimeout(50*time.Millisecond), WithBackOff(func() backoff.BackOff {
		return &backoff.ZeroBackOff{}
	}, 2))

	_, err := c.Recognize(t.Context(), []byte("jpegbytes"), DefaultOptions)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(2), calls.Load())
}

func TestNewClientDefaultTimeout(t *testing.T) {
	c := NewClient("", "secret")
	assert.Equal(t, DefaultTimeout, c.timeout)
	assert.Equal(t, DefaultEndpoint, c.endpoint)
}
