package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pulse-messenger/media-service/internal/config"
	"github.com/pulse-messenger/media-service/internal/room"
	"github.com/pulse-messenger/media-service/internal/storage"
	"github.com/pulse-messenger/media-service/internal/user"
)

type storedObject struct {
	data        []byte
	contentType string
	metadata    map[string]string
}

// fakeStorage is an in-memory Storage for pipeline tests.
type fakeStorage struct {
	objects  map[string]storedObject
	failAll  bool
	failKeys map[string]bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string]storedObject{}, failKeys: map[string]bool{}}
}

func (s *fakeStorage) Upload(_ context.Context, key string, reader io.Reader, _ int64, contentType string, metadata map[string]string) error {
	if s.failAll || s.failKeys[key] {
		return errors.New("backend unavailable")
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.objects[key] = storedObject{data: data, contentType: contentType, metadata: metadata}
	return nil
}

func (s *fakeStorage) Get(_ context.Context, key string) (*storage.Object, error) {
	obj, ok := s.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.Object{
		Body:        io.NopCloser(bytes.NewReader(obj.data)),
		ContentType: obj.contentType,
		Size:        int64(len(obj.data)),
	}, nil
}

func (s *fakeStorage) Healthy(context.Context) error { return nil }

func (s *fakeStorage) PublicURL(key string) string { return "https://cdn.test/" + key }

type fakeUsers struct {
	users map[string]*user.User
	pics  map[string]string
}

func newFakeUsers(ids ...string) *fakeUsers {
	f := &fakeUsers{users: map[string]*user.User{}, pics: map[string]string{}}
	for _, id := range ids {
		f.users[id] = &user.User{ID: id}
	}
	return f
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) SetProfilePic(_ context.Context, id, url string) error {
	if _, ok := f.users[id]; !ok {
		return user.ErrNotFound
	}
	f.pics[id] = url
	return nil
}

type fakeRooms struct {
	rooms map[string]*room.Room
	pics  map[string]string
}

func newFakeRooms(rooms ...*room.Room) *fakeRooms {
	f := &fakeRooms{rooms: map[string]*room.Room{}, pics: map[string]string{}}
	for _, r := range rooms {
		f.rooms[r.ID] = r
	}
	return f
}

func (f *fakeRooms) GetByID(_ context.Context, id string) (*room.Room, error) {
	r, ok := f.rooms[id]
	if !ok {
		return nil, room.ErrNotFound
	}
	return r, nil
}

func (f *fakeRooms) SetRoomPic(_ context.Context, id, url string) error {
	if _, ok := f.rooms[id]; !ok {
		return room.ErrNotFound
	}
	f.pics[id] = url
	return nil
}

func testPolicy() config.UploadPolicy {
	return config.UploadPolicy{
		MaxPictureBytes: 20 << 20,
		MaxUploadBytes:  100 << 20,
		MaxBatchFiles:   10,
		MinDimension:    1,
		MaxDimension:    4096,
		ThumbnailSize:   64,
		CacheMaxAge:     30 * time.Minute,
	}
}

func pictureFile(t *testing.T, w, h int) *File {
	t.Helper()
	data := pngBytes(t, w, h)
	return &File{Name: "pic.png", ContentType: "image/png", Size: int64(len(data)), Data: data}
}

func TestUploadProfilePicStoresAndRecordsURL(t *testing.T) {
	store := newFakeStorage()
	users := newFakeUsers("u1")
	svc := NewService(store, users, newFakeRooms(), testPolicy())

	up := Uploader{UserID: "u1", SessionID: "s1", IP: "203.0.113.7"}
	require.NoError(t, svc.UploadProfilePic(context.Background(), up, pictureFile(t, 256, 256)))

	key := ProfilePicKey("u1")
	obj, ok := store.objects[key]
	require.True(t, ok, "object should be stored under the fixed key")
	require.Equal(t, "image/webp", obj.contentType)
	require.Equal(t, "203.0.113.7", obj.metadata["ip"])
	require.Equal(t, "u1", obj.metadata["user-id"])
	require.Equal(t, "s1", obj.metadata["session-id"])

	require.Equal(t, "https://cdn.test/"+key, users.pics["u1"])
}

func TestUploadProfilePicReuploadOverwrites(t *testing.T) {
	store := newFakeStorage()
	users := newFakeUsers("u1")
	svc := NewService(store, users, newFakeRooms(), testPolicy())
	up := Uploader{UserID: "u1"}

	require.NoError(t, svc.UploadProfilePic(context.Background(), up, pictureFile(t, 256, 256)))
	require.NoError(t, svc.UploadProfilePic(context.Background(), up, pictureFile(t, 128, 300)))

	require.Len(t, store.objects, 1, "re-upload must replace, not add")
	require.Contains(t, store.objects, ProfilePicKey("u1"))
}

func TestUploadProfilePicRejectsOversizedDimensions(t *testing.T) {
	store := newFakeStorage()
	svc := NewService(store, newFakeUsers("u1"), newFakeRooms(), testPolicy())

	err := svc.UploadProfilePic(context.Background(), Uploader{UserID: "u1"}, pictureFile(t, 4097, 10))
	require.ErrorIs(t, err, ErrInvalidImageDimensions)
	require.Empty(t, store.objects)
}

func TestUploadProfilePicFileRequired(t *testing.T) {
	svc := NewService(newFakeStorage(), newFakeUsers("u1"), newFakeRooms(), testPolicy())
	err := svc.UploadProfilePic(context.Background(), Uploader{UserID: "u1"}, nil)
	require.ErrorIs(t, err, ErrFileRequired)
}

func TestUploadProfilePicPayloadTooLarge(t *testing.T) {
	svc := NewService(newFakeStorage(), newFakeUsers("u1"), newFakeRooms(), testPolicy())

	f := pictureFile(t, 16, 16)
	f.Size = 21 << 20 // declared size over the 20 MiB ceiling
	err := svc.UploadProfilePic(context.Background(), Uploader{UserID: "u1"}, f)
	require.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestUploadProfilePicUnknownUser(t *testing.T) {
	svc := NewService(newFakeStorage(), newFakeUsers(), newFakeRooms(), testPolicy())
	err := svc.UploadProfilePic(context.Background(), Uploader{UserID: "ghost"}, pictureFile(t, 16, 16))
	require.ErrorIs(t, err, ErrInvalidOwner)
}

func TestUploadProfilePicStoreFailureSurfaces(t *testing.T) {
	store := newFakeStorage()
	store.failAll = true
	users := newFakeUsers("u1")
	svc := NewService(store, users, newFakeRooms(), testPolicy())

	err := svc.UploadProfilePic(context.Background(), Uploader{UserID: "u1"}, pictureFile(t, 16, 16))
	require.ErrorIs(t, err, ErrUploadFailed)
	require.Empty(t, users.pics, "a failed write must not update the owner record")
}

func TestUploadRoomPicCreatorSucceeds(t *testing.T) {
	store := newFakeStorage()
	rooms := newFakeRooms(&room.Room{ID: "r1", CreatorID: "u1"})
	svc := NewService(store, newFakeUsers("u1"), rooms, testPolicy())

	require.NoError(t, svc.UploadRoomPic(context.Background(), Uploader{UserID: "u1"}, "r1", pictureFile(t, 64, 64)))
	require.Contains(t, store.objects, RoomPicKey("r1"))
	require.Equal(t, "https://cdn.test/"+RoomPicKey("r1"), rooms.pics["r1"])
}

func TestUploadRoomPicNonCreatorForbidden(t *testing.T) {
	rooms := newFakeRooms(&room.Room{ID: "r1", CreatorID: "u1"})
	svc := NewService(newFakeStorage(), newFakeUsers("u2"), rooms, testPolicy())

	err := svc.UploadRoomPic(context.Background(), Uploader{UserID: "u2"}, "r1", pictureFile(t, 64, 64))
	require.ErrorIs(t, err, ErrForbidden)
}

func TestUploadRoomPicDMRoomRejected(t *testing.T) {
	a, b := "u1", "u2"
	rooms := newFakeRooms(&room.Room{ID: "dm1", CreatorID: a, FriendA: &a, FriendB: &b})
	svc := NewService(newFakeStorage(), newFakeUsers("u1"), rooms, testPolicy())

	err := svc.UploadRoomPic(context.Background(), Uploader{UserID: "u1"}, "dm1", pictureFile(t, 64, 64))
	require.ErrorIs(t, err, ErrDMRoom)
}

func TestUploadRoomPicUnknownRoom(t *testing.T) {
	svc := NewService(newFakeStorage(), newFakeUsers("u1"), newFakeRooms(), testPolicy())
	err := svc.UploadRoomPic(context.Background(), Uploader{UserID: "u1"}, "nope", pictureFile(t, 64, 64))
	require.ErrorIs(t, err, ErrRoomNotFound)
}

func textFile(name string, size int64) *File {
	data := []byte("hello")
	return &File{Name: name, ContentType: "text/plain", Size: size, Data: data}
}

func TestUploadFilesSkipsOversizedAndReportsRest(t *testing.T) {
	store := newFakeStorage()
	svc := NewService(store, newFakeUsers("u1"), newFakeRooms(), testPolicy())

	files := []*File{
		textFile("a.txt", 5),
		textFile("huge.bin", 101<<20),
		textFile("b.txt", 5),
	}
	urls, err := svc.UploadFiles(context.Background(), Uploader{UserID: "u1"}, files)
	require.NoError(t, err)
	require.Len(t, urls, 2)
	require.Len(t, store.objects, 2)
	for _, u := range urls {
		require.NotContains(t, u, "huge.bin")
	}
}

func TestUploadFilesStoreFaultDropsOnlyThatFile(t *testing.T) {
	store := newFakeStorage()
	svc := NewService(store, newFakeUsers("u1"), newFakeRooms(), testPolicy())
	at := time.UnixMilli(1700000000000)
	svc.now = func() time.Time { return at }

	store.failKeys[UploadKey("u1", "bad.txt", at)] = true

	urls, err := svc.UploadFiles(context.Background(), Uploader{UserID: "u1"}, []*File{
		textFile("ok1.txt", 5),
		textFile("bad.txt", 5),
		textFile("ok2.txt", 5),
	})
	require.NoError(t, err)
	require.Len(t, urls, 2)
}

func TestUploadFilesTooMany(t *testing.T) {
	svc := NewService(newFakeStorage(), newFakeUsers("u1"), newFakeRooms(), testPolicy())

	files := make([]*File, 11)
	for i := range files {
		files[i] = textFile(fmt.Sprintf("f%d.txt", i), 5)
	}
	_, err := svc.UploadFiles(context.Background(), Uploader{UserID: "u1"}, files)
	require.ErrorIs(t, err, ErrTooManyFiles)
}

func TestUploadFilesEmptyBatch(t *testing.T) {
	svc := NewService(newFakeStorage(), newFakeUsers("u1"), newFakeRooms(), testPolicy())
	_, err := svc.UploadFiles(context.Background(), Uploader{UserID: "u1"}, nil)
	require.ErrorIs(t, err, ErrFileRequired)
}

func TestUploadFilesKeysAreTimestamped(t *testing.T) {
	store := newFakeStorage()
	svc := NewService(store, newFakeUsers("u1"), newFakeRooms(), testPolicy())
	at := time.UnixMilli(1700000000123)
	svc.now = func() time.Time { return at }

	urls, err := svc.UploadFiles(context.Background(), Uploader{UserID: "u1"}, []*File{textFile("doc.pdf", 5)})
	require.NoError(t, err)
	require.Len(t, urls, 1)
	require.Equal(t, "https://cdn.test/uploads/u1/1700000000123_doc.pdf", urls[0])
}

func TestFetchObjectRoundTrip(t *testing.T) {
	store := newFakeStorage()
	svc := NewService(store, newFakeUsers("u1"), newFakeRooms(), testPolicy())
	at := time.UnixMilli(42)
	svc.now = func() time.Time { return at }

	_, err := svc.UploadFiles(context.Background(), Uploader{UserID: "u1"}, []*File{textFile("note.txt", 5)})
	require.NoError(t, err)

	obj, err := svc.FetchObject(context.Background(), UploadKey("u1", "note.txt", at))
	require.NoError(t, err)
	defer obj.Body.Close()

	data, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), data)
	require.Equal(t, "text/plain", obj.ContentType)
}

func TestFetchObjectMissingKey(t *testing.T) {
	svc := NewService(newFakeStorage(), newFakeUsers(), newFakeRooms(), testPolicy())
	_, err := svc.FetchObject(context.Background(), ProfilePicKey("never-written"))
	require.ErrorIs(t, err, ErrNotFound)
}
