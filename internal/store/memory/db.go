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

// Package memory holds in-process implementations of the repositories. It
// backs DB_DRIVER=memory and the tests.
package memory

import (
	"sync"

	"github.com/opentrusty/tenantnotes/internal/identity"
	"github.com/opentrusty/tenantnotes/internal/note"
	"github.com/opentrusty/tenantnotes/internal/tenant"
)

// DB is a mutex-guarded in-memory database shared by the repositories.
type DB struct {
	mu      sync.RWMutex
	tenants map[string]*tenant.Tenant
	users   map[string]*identity.User
	notes   map[string]*note.Note
}

// New creates an empty database
func New() *DB {
	return &DB{
		tenants: make(map[string]*tenant.Tenant),
		users:   make(map[string]*identity.User),
		notes:   make(map[string]*note.Note),
	}
}

func copyTenant(t *tenant.Tenant) *tenant.Tenant {
	cp := *t
	return &cp
}

func copyNote(n *note.Note) *note.Note {
	cp := *n
	if n.Content != nil {
		c := *n.Content
		cp.Content = &c
	}
	return &cp
}
