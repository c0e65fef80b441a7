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

package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instruments holds the application counters.
type Instruments struct {
	NotesCreated   metric.Int64Counter
	QuotaRejected  metric.Int64Counter
	LoginFailed    metric.Int64Counter
	TenantUpgraded metric.Int64Counter
}

// NewInstruments registers the application counters on m.
func NewInstruments(m *Meter) (*Instruments, error) {
	var (
		in  Instruments
		err error
	)
	if in.NotesCreated, err = m.CreateCounter("tenantnotes.notes.created", "Notes created"); err != nil {
		return nil, err
	}
	if in.QuotaRejected, err = m.CreateCounter("tenantnotes.quota.rejected", "Note creations rejected by plan quota"); err != nil {
		return nil, err
	}
	if in.LoginFailed, err = m.CreateCounter("tenantnotes.login.failed", "Failed login attempts"); err != nil {
		return nil, err
	}
	if in.TenantUpgraded, err = m.CreateCounter("tenantnotes.tenant.upgraded", "Tenant plan upgrades"); err != nil {
		return nil, err
	}
	return &in, nil
}

// Nop returns instruments that record nothing.
func Nop() *Instruments {
	m, _ := New(context.Background(), Config{ServiceName: "noop"})
	in, _ := NewInstruments(m)
	return in
}

// TenantAttr scopes a measurement to a tenant.
func TenantAttr(tenantID string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("tenant_id", tenantID))
}

// Add increments c by one if c is set.
func Add(ctx context.Context, c metric.Int64Counter, opts ...metric.AddOption) {
	if c == nil {
		return
	}
	c.Add(ctx, 1, opts...)
}
