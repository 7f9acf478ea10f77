// SPDX-License-Identifier: EPL-2.0

package flac

import "errors"

// ErrNotFlacStream is returned by Decoder.Decode when the input does not
// begin with a valid FLAC stream marker.
var ErrNotFlacStream = errors.New("not a FLAC stream")
