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

package session

import (
	"crypto/sha256"
	"encoding/hex"
)

type signingKey struct {
	id     string
	secret []byte
}

// Keyring holds the current signing secret and the retired secrets that are
// still accepted for verification while tokens signed with them expire.
type Keyring struct {
	keys []signingKey // keys[0] signs
}

// NewKeyring creates a keyring that signs with current and also verifies
// with each of previous. Empty previous entries are ignored.
func NewKeyring(current string, previous ...string) (*Keyring, error) {
	if current == "" {
		return nil, ErrNoSecret
	}

	k := &Keyring{keys: []signingKey{newSigningKey(current)}}
	for _, p := range previous {
		if p == "" || p == current {
			continue
		}
		k.keys = append(k.keys, newSigningKey(p))
	}
	return k, nil
}

func newSigningKey(secret string) signingKey {
	sum := sha256.Sum256([]byte(secret))
	return signingKey{
		id:     hex.EncodeToString(sum[:])[:8],
		secret: []byte(secret),
	}
}

func (k *Keyring) current() signingKey {
	return k.keys[0]
}

// candidates returns every key, with the one matching kid first.
func (k *Keyring) candidates(kid string) []signingKey {
	out := make([]signingKey, 0, len(k.keys))
	for _, key := range k.keys {
		if key.id == kid {
			out = append(out, key)
		}
	}
	for _, key := range k.keys {
		if key.id != kid {
			out = append(out, key)
		}
	}
	return out
}

// Len returns the number of secrets accepted for verification.
func (k *Keyring) Len() int {
	return len(k.keys)
}
