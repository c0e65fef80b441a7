// Copyright 2026 The OpenTrusty Authors
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

package http

import (
	"context"

	"github.com/opentrusty/tenantnotes/internal/session"
)

type contextKey string

const identityKey contextKey = "identity"

func withIdentity(ctx context.Context, ident session.Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}

// IdentityFrom retrieves the authenticated caller from context.
func IdentityFrom(ctx context.Context) (session.Identity, bool) {
	ident, ok := ctx.Value(identityKey).(session.Identity)
	return ident, ok
}
