// Package media implements the upload pipeline: request validation, image
// transcoding, storage-key derivation, and object persistence.
package media

import "errors"

// Pipeline error taxonomy. Handlers map these onto HTTP statuses; everything
// unrecognized becomes a 500.
var (
	ErrUnauthorized           = errors.New("you need to be logged in")
	ErrFileRequired           = errors.New("a file is required")
	ErrPayloadTooLarge        = errors.New("file exceeds the maximum allowed size")
	ErrTooManyFiles           = errors.New("a maximum of 10 files is allowed")
	ErrInvalidImageDimensions = errors.New("image must be smaller than 4096x4096")
	ErrInvalidOwner           = errors.New("invalid user")
	ErrForbidden              = errors.New("only room creators can change the room pic")
	ErrRoomNotFound           = errors.New("room doesn't exist")
	ErrDMRoom                 = errors.New("can't update DM pic")
	ErrNotFound               = errors.New("not found")
	ErrUploadFailed           = errors.New("upload failed")
)

// Transcoder failure modes.
var (
	// ErrDecode means the buffer is corrupt or in an unsupported format.
	ErrDecode = errors.New("image decode failed")
	// ErrInvalidState means ToWebP was called before a successful Validate.
	ErrInvalidState = errors.New("image has not been validated")
	// ErrEncode means re-encoding the validated image failed.
	ErrEncode = errors.New("image encode failed")
)
