package media

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestProfilePicKeyDeterministicAndInjective(t *testing.T) {
	a := ProfilePicKey("11111111-1111-1111-1111-111111111111")
	b := ProfilePicKey("22222222-2222-2222-2222-222222222222")

	require.Equal(t, "profilePics/11111111-1111-1111-1111-111111111111/profilePic.webp", a)
	require.NotEqual(t, a, b)
	// Re-invoking with the same owner yields the same key: overwrite semantics.
	require.Equal(t, a, ProfilePicKey("11111111-1111-1111-1111-111111111111"))
}

func TestRoomPicKey(t *testing.T) {
	key := RoomPicKey("33333333-3333-3333-3333-333333333333")
	require.Equal(t, "roomPics/33333333-3333-3333-3333-333333333333/roomPic.webp", key)
}

func TestUploadKeyEmbedsTimestampAndName(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	key := UploadKey("user-1", "report.pdf", at)
	require.Equal(t, "uploads/user-1/1700000000123_report.pdf", key)

	// Same name at a different instant lands on a different key.
	later := UploadKey("user-1", "report.pdf", at.Add(time.Millisecond))
	require.NotEqual(t, key, later)
}

func TestKeysStripStoreEscapeCharacter(t *testing.T) {
	require.NotContains(t, ProfilePicKey("user~1"), "~")
	require.NotContains(t, RoomPicKey("room~1"), "~")
	require.NotContains(t, UploadKey("u~1", "we~ird~.txt", time.UnixMilli(1)), "~")
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "photo.png", "photo.png"},
		{"unix path", "../../etc/passwd", "passwd"},
		{"windows path", `C:\Users\me\doc.pdf`, "doc.pdf"},
		{"empty", "", "file"},
		{"dot", ".", "file"},
		{"slash only", "///", "file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, sanitizeFileName(tt.in))
		})
	}
}
