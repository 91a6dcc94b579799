// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package auth

import (
	"context"
	"net/http"

	"github.com/curioswitch/go-usegcp/middleware/firebaseauth"
)

type ownerContextKey struct{}

var ownerContextKeyInstance = ownerContextKey{}

// WithOwner returns a context authenticated as the user with the given ID.
func WithOwner(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, ownerContextKeyInstance, uid)
}

// DevMiddleware authenticates every request as uid, replacing Firebase token
// verification when running locally.
func DevMiddleware(uid string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), uid)))
		})
	}
}

// OwnerID returns the ID of the authenticated user. The request must have passed
// either the Firebase auth middleware or DevMiddleware.
func OwnerID(ctx context.Context) string {
	if uid, ok := ctx.Value(ownerContextKeyInstance).(string); ok {
		return uid
	}
	return firebaseauth.TokenFromContext(ctx).UID
}
