// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package quad

import "errors"

// Fatal build/traversal conditions. Either one means the arena was
// undersized or the input is pathological; the iteration cannot be
// partially committed, so callers abort the run.
var (
	ErrArenaOverflow = errors.New("arena chunk overflow")
	ErrStackOverflow = errors.New("work stack overflow")
)
