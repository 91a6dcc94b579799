// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

// Package connectjson serves unary Connect procedures whose messages are plain Go
// structs encoded as JSON.
package connectjson

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"connectrpc.com/connect"

	"github.com/curioswitch/recipegenie/common/recipedb"
	"github.com/curioswitch/recipegenie/common/router"
)

// Codec replaces the protobuf JSON codec of Connect with encoding/json.
type Codec struct{}

func (Codec) Name() string {
	return "json"
}

func (Codec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

// Mux is the part of a router procedures are mounted on.
type Mux interface {
	Handle(pattern string, h http.Handler)
}

// Handle mounts a unary procedure on the mux.
func Handle[Req, Res any](mux Mux, procedure string, fn func(context.Context, *Req) (*Res, error)) {
	mux.Handle(procedure, NewHandler(procedure, fn))
}

// NewHandler returns an HTTP handler serving a unary procedure.
func NewHandler[Req, Res any](procedure string, fn func(context.Context, *Req) (*Res, error)) http.Handler {
	return connect.NewUnaryHandlerSimple(procedure, fn, connect.WithCodec(Codec{}))
}

// Error converts errors of the common packages to Connect errors, returning other
// errors unchanged to be reported as internal.
func Error(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, router.ErrInvalidInput), errors.Is(err, recipedb.ErrInvalidUpdate):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, recipedb.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, recipedb.ErrForbidden):
		return connect.NewError(connect.CodePermissionDenied, err)
	default:
		return err
	}
}
