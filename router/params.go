// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package router

import (
	"context"
	"net/http"
)

type paramsKey struct{}

// requestWithParams attaches a matched route's captured path parameters to
// req's context, retrievable by handlers via Params.
func requestWithParams(req *http.Request, params map[string]string) *http.Request {
	if len(params) == 0 {
		return req
	}
	ctx := context.WithValue(req.Context(), paramsKey{}, params)
	return req.WithContext(ctx)
}

// Params returns the path parameters captured for req by the route that
// matched it, or nil if the route declared none.
func Params(req *http.Request) map[string]string {
	params, _ := req.Context().Value(paramsKey{}).(map[string]string)
	return params
}

// Param returns a single captured path parameter, or "" if absent.
func Param(req *http.Request, name string) string {
	return Params(req)[name]
}
