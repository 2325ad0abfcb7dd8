package media

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// Storage-key policy. Every key is a pure function of the upload category and
// the owning identity, so repeated picture uploads land on the same key and
// overwrite the previous object. Generic uploads get a millisecond timestamp
// prefix instead, keeping distinct uploads on distinct keys.
//
// "~" is the store's key-escaping character; it is stripped here so the
// logical path and the stored path never diverge.

// ProfilePicKey returns the fixed storage key for a user's profile picture.
func ProfilePicKey(userID string) string {
	return stripTilde("profilePics/" + userID + "/profilePic.webp")
}

// RoomPicKey returns the fixed storage key for a room's picture.
func RoomPicKey(roomID string) string {
	return stripTilde("roomPics/" + roomID + "/roomPic.webp")
}

// UploadKey returns the storage key for a generic upload. Two uploads by the
// same user in the same millisecond with the same name collide; that window is
// accepted as negligible.
func UploadKey(userID, fileName string, at time.Time) string {
	return stripTilde(fmt.Sprintf("uploads/%s/%d_%s", userID, at.UnixMilli(), sanitizeFileName(fileName)))
}

// sanitizeFileName reduces a client-supplied file name to its base name and
// drops characters that would alter the key's path structure.
func sanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	if name == "/" || name == "." || name == "" {
		return "file"
	}
	return name
}

func stripTilde(key string) string {
	return strings.ReplaceAll(key, "~", "")
}
