// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreferredLanguage(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{header: "", want: ""},
		{header: "ja", want: "ja"},
		{header: "en-US,en;q=0.9", want: "en-US"},
		{header: "en;q=0.5, ja;q=0.8", want: "ja"},
		{header: "*, fr;q=0.3", want: "fr"},
		{header: "de;q=abc, es;q=0.1", want: "es"},
		{header: "it;q=0", want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.header, func(t *testing.T) {
			assert.Equal(t, tc.want, PreferredLanguage(tc.header))
		})
	}
}

func TestMiddleware(t *testing.T) {
	var got string
	h := Middleware()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = UserLanguage(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Accept-Language", "fr-CA;q=0.7, ja")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "ja", got)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Empty(t, got)
}
