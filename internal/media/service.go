package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/pulse-messenger/media-service/internal/config"
	"github.com/pulse-messenger/media-service/internal/room"
	"github.com/pulse-messenger/media-service/internal/storage"
	"github.com/pulse-messenger/media-service/internal/user"
)

// UserStore is the slice of the user repository the pipeline needs.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
	SetProfilePic(ctx context.Context, id, url string) error
}

// RoomStore is the slice of the room repository the pipeline needs.
type RoomStore interface {
	GetByID(ctx context.Context, id string) (*room.Room, error)
	SetRoomPic(ctx context.Context, id, url string) error
}

var (
	_ UserStore = (*user.Repository)(nil)
	_ RoomStore = (*room.Repository)(nil)
)

// File is one binary payload extracted from a multipart request.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// Uploader identifies the authenticated caller of an upload. IP and session id
// are attached to stored objects as audit metadata.
type Uploader struct {
	UserID    string
	SessionID string
	IP        string
}

func (u Uploader) metadata() map[string]string {
	meta := map[string]string{}
	if u.IP != "" {
		meta["ip"] = u.IP
	}
	if u.UserID != "" {
		meta["user-id"] = u.UserID
	}
	if u.SessionID != "" {
		meta["session-id"] = u.SessionID
	}
	return meta
}

// Service orchestrates uploads: authorize, validate, transcode, derive the
// storage key, store, and persist the public URL on the owning record.
type Service struct {
	store  storage.Storage
	users  UserStore
	rooms  RoomStore
	policy config.UploadPolicy
	now    func() time.Time
}

// NewService creates the upload pipeline with its collaborators injected.
func NewService(store storage.Storage, users UserStore, rooms RoomStore, policy config.UploadPolicy) *Service {
	return &Service{
		store:  store,
		users:  users,
		rooms:  rooms,
		policy: policy,
		now:    time.Now,
	}
}

// UploadProfilePic validates, transcodes, and stores a user's profile picture,
// then records its public URL on the user. The storage key is fixed per user,
// so a re-upload replaces the previous picture.
func (s *Service) UploadProfilePic(ctx context.Context, up Uploader, f *File) error {
	if err := s.checkPicture(f); err != nil {
		return err
	}

	if _, err := s.users.GetByID(ctx, up.UserID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrInvalidOwner
		}
		return fmt.Errorf("look up user: %w", err)
	}

	buf, err := s.transcodePicture(f)
	if err != nil {
		return err
	}

	key := ProfilePicKey(up.UserID)
	if err := s.store.Upload(ctx, key, bytes.NewReader(buf), int64(len(buf)), "image/webp", up.metadata()); err != nil {
		return fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	if err := s.users.SetProfilePic(ctx, up.UserID, s.store.PublicURL(key)); err != nil {
		return fmt.Errorf("save profile pic url: %w", err)
	}
	return nil
}

// UploadRoomPic validates, transcodes, and stores a room's picture. Only the
// room's creator may change it, and direct-message rooms have no settable
// picture at all.
func (s *Service) UploadRoomPic(ctx context.Context, up Uploader, roomID string, f *File) error {
	if err := s.checkPicture(f); err != nil {
		return err
	}

	if _, err := s.users.GetByID(ctx, up.UserID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrInvalidOwner
		}
		return fmt.Errorf("look up user: %w", err)
	}

	rm, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, room.ErrNotFound) {
			return ErrRoomNotFound
		}
		return fmt.Errorf("look up room: %w", err)
	}
	if rm.IsDM() {
		return ErrDMRoom
	}
	if rm.CreatorID != up.UserID {
		return ErrForbidden
	}

	buf, err := s.transcodePicture(f)
	if err != nil {
		return err
	}

	key := RoomPicKey(rm.ID)
	if err := s.store.Upload(ctx, key, bytes.NewReader(buf), int64(len(buf)), "image/webp", up.metadata()); err != nil {
		return fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	if err := s.rooms.SetRoomPic(ctx, rm.ID, s.store.PublicURL(key)); err != nil {
		return fmt.Errorf("save room pic url: %w", err)
	}
	return nil
}

// UploadFiles stores a batch of generic attachments and returns the public
// URLs of the files that were actually stored. Oversized files are skipped
// silently; a store fault likewise drops only the affected file — the rest of
// the batch still goes through.
func (s *Service) UploadFiles(ctx context.Context, up Uploader, files []*File) ([]string, error) {
	if len(files) == 0 {
		return nil, ErrFileRequired
	}
	if len(files) > s.policy.MaxBatchFiles {
		return nil, ErrTooManyFiles
	}

	urls := make([]string, 0, len(files))
	for _, f := range files {
		if f.Size > s.policy.MaxUploadBytes {
			continue
		}

		key := UploadKey(up.UserID, f.Name, s.now())
		if err := s.store.Upload(ctx, key, bytes.NewReader(f.Data), f.Size, f.ContentType, up.metadata()); err != nil {
			log.Printf("media: store %q failed: %v", key, err)
			continue
		}
		urls = append(urls, s.store.PublicURL(key))
	}
	return urls, nil
}

// FetchObject retrieves a previously stored object by key. A key that was
// never written maps to ErrNotFound.
func (s *Service) FetchObject(ctx context.Context, key string) (*storage.Object, error) {
	obj, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetch object %q: %w", key, err)
	}
	return obj, nil
}

// Healthy reports readiness of the backing store.
func (s *Service) Healthy(ctx context.Context) error {
	return s.store.Healthy(ctx)
}

func (s *Service) checkPicture(f *File) error {
	if f == nil {
		return ErrFileRequired
	}
	if f.Size > s.policy.MaxPictureBytes {
		return ErrPayloadTooLarge
	}
	return nil
}

func (s *Service) transcodePicture(f *File) ([]byte, error) {
	tr := NewTranscoder(f.Data)
	if !tr.Validate(s.policy.MinDimension, s.policy.MaxDimension) {
		return nil, ErrInvalidImageDimensions
	}
	buf, err := tr.ToWebP(s.policy.ThumbnailSize, s.policy.ThumbnailSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	return buf, nil
}
