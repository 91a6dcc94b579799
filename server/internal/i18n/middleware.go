// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package i18n

import (
	"context"
	"net/http"
	"strconv"
	"strings"
)

type userLanguageContextKey struct{}

var userLanguageContextKeyInstance = userLanguageContextKey{}

// Middleware stores the preferred language of the Accept-Language header in the
// request context.
func Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if lng := PreferredLanguage(r.Header.Get("Accept-Language")); lng != "" {
				r = r.WithContext(WithUserLanguage(r.Context(), lng))
			}

			next.ServeHTTP(w, r)
		})
	}
}

// PreferredLanguage returns the tag with the highest quality in an Accept-Language
// header, the earliest one on ties. The wildcard is ignored.
func PreferredLanguage(header string) string {
	best := ""
	bestQ := 0.0
	for _, part := range strings.Split(header, ",") {
		tag, params, _ := strings.Cut(part, ";")
		tag = strings.TrimSpace(tag)
		if tag == "" || tag == "*" {
			continue
		}

		q := 1.0
		if v, ok := strings.CutPrefix(strings.TrimSpace(params), "q="); ok {
			parsed, err := strconv.ParseFloat(v, 64)
			if err != nil {
				continue
			}
			q = parsed
		}

		if q > bestQ {
			best = tag
			bestQ = q
		}
	}
	return best
}

func WithUserLanguage(ctx context.Context, lng string) context.Context {
	return context.WithValue(ctx, userLanguageContextKeyInstance, lng)
}

func UserLanguage(ctx context.Context) string {
	if lng, ok := ctx.Value(userLanguageContextKeyInstance).(string); ok {
		return lng
	}
	return ""
}
