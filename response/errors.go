// SPDX-License-Identifier: MIT

package response

import "errors"

var (
	// ErrInvalidBroadening indicates a broadening that is not finite and > 0.
	ErrInvalidBroadening = errors.New("response: broadening must be finite and positive")

	// ErrInvalidConstant indicates a physical constant outside its domain.
	ErrInvalidConstant = errors.New("response: invalid constant")

	// ErrInvalidPositions indicates coincident or non-finite site positions.
	ErrInvalidPositions = errors.New("response: invalid positions")
)
