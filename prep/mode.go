//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package prep

import (
	"fmt"
)

// Mode defines the trust mode of the preprocessing. The mode is
// either PersonalMode or SecretMode.
type Mode interface {
	fmt.Stringer
	mode()
}

// PersonalMode generates triples owned by the input player Owner. The
// owner knows the triple values in clear.
type PersonalMode struct {
	Owner int
}

func (m PersonalMode) mode() {}

func (m PersonalMode) String() string {
	return fmt.Sprintf("personal(P%d)", m.Owner)
}

// SecretMode generates triples no single party knows.
type SecretMode struct{}

func (m SecretMode) mode() {}

func (m SecretMode) String() string {
	return "secret"
}
