package media

import (
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pulse-messenger/media-service/internal/middleware"
	"github.com/pulse-messenger/media-service/internal/response"
)

// maxFormMemory caps the in-memory portion of multipart parsing; bigger
// payloads spill to temp files.
const maxFormMemory = 32 << 20

// Handler holds HTTP handlers for the media endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new media Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// UploadProfilePic godoc
//
//	@Summary		Upload profile picture
//	@Description	Validates and transcodes the image to 256x256 WebP, stores it under the caller's fixed profile-picture key, and saves the public URL on the user record.
//	@Tags			media
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			file	formData	file	true	"Image file (max 20MB, dimensions within 1..4096)"
//	@Success		200
//	@Failure		400	{object}	response.ErrorBody
//	@Failure		401	{object}	response.ErrorBody
//	@Failure		500	{object}	response.ErrorBody
//	@Router			/media/profilePics [post]
func (h *Handler) UploadProfilePic(w http.ResponseWriter, r *http.Request) {
	up, ok := uploaderFrom(r)
	if !ok {
		response.Unauthorized(w, "You need to be logged in.")
		return
	}

	f, err := formFile(r, "file")
	if err != nil {
		response.BadRequest(w, "A file is required")
		return
	}

	if err := h.svc.UploadProfilePic(r.Context(), up, f); err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w)
}

// UploadRoomPic godoc
//
//	@Summary		Upload room picture
//	@Description	Validates and transcodes the image to 256x256 WebP and stores it under the room's fixed key. Only the room creator may change it; DM rooms have no settable picture.
//	@Tags			media
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			roomID	path		string	true	"Room ID"
//	@Param			file	formData	file	true	"Image file (max 20MB, dimensions within 1..4096)"
//	@Success		200
//	@Failure		400	{object}	response.ErrorBody
//	@Failure		401	{object}	response.ErrorBody
//	@Failure		403	{object}	response.ErrorBody
//	@Failure		404	{object}	response.ErrorBody
//	@Failure		500	{object}	response.ErrorBody
//	@Router			/media/roomPic/{roomID} [post]
func (h *Handler) UploadRoomPic(w http.ResponseWriter, r *http.Request) {
	up, ok := uploaderFrom(r)
	if !ok {
		response.Unauthorized(w, "You need to be logged in.")
		return
	}

	roomID := chi.URLParam(r, "roomID")
	if uuid.Validate(roomID) != nil {
		response.NotFound(w, "Room doesn't exist")
		return
	}

	f, err := formFile(r, "file")
	if err != nil {
		response.BadRequest(w, "A file is required")
		return
	}

	if err := h.svc.UploadRoomPic(r.Context(), up, roomID, f); err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w)
}

// UploadFiles godoc
//
//	@Summary		Upload attachments
//	@Description	Stores up to 10 files under timestamped keys and returns the public URLs of the files that were stored. Files over the size ceiling are skipped, not errors.
//	@Tags			media
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			files	formData	file	true	"Up to 10 files (max 100MB each)"
//	@Success		200	{object}	response.FilesBody
//	@Failure		400	{object}	response.ErrorBody
//	@Failure		401	{object}	response.ErrorBody
//	@Failure		500	{object}	response.ErrorBody
//	@Router			/media/uploads [post]
func (h *Handler) UploadFiles(w http.ResponseWriter, r *http.Request) {
	up, ok := uploaderFrom(r)
	if !ok {
		response.Unauthorized(w, "You need to be logged in.")
		return
	}

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		response.BadRequest(w, "No files were provided")
		return
	}
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		response.BadRequest(w, "No files were provided")
		return
	}

	files := make([]*File, 0, len(headers))
	for _, hdr := range headers {
		f, err := readFile(hdr)
		if err != nil {
			log.Printf("media: read multipart file %q: %v", hdr.Filename, err)
			response.InternalError(w)
			return
		}
		files = append(files, f)
	}

	urls, err := h.svc.UploadFiles(r.Context(), up, files)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Files(w, urls)
}

// GetProfilePic godoc
//
//	@Summary	Fetch profile picture
//	@Tags		media
//	@Produce	image/webp
//	@Param		userID	path	string	true	"User ID"
//	@Success	200
//	@Failure	404	{object}	response.ErrorBody
//	@Failure	500	{object}	response.ErrorBody
//	@Router		/media/profilePics/{userID} [get]
func (h *Handler) GetProfilePic(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if uuid.Validate(userID) != nil {
		response.NotFound(w, "Not found")
		return
	}
	h.serveObject(w, r, ProfilePicKey(userID))
}

// GetUpload godoc
//
//	@Summary	Fetch attachment
//	@Tags		media
//	@Produce	octet-stream
//	@Param		userID		path	string	true	"User ID"
//	@Param		fileName	path	string	true	"Stored file name (timestamp-prefixed)"
//	@Success	200
//	@Failure	404	{object}	response.ErrorBody
//	@Failure	500	{object}	response.ErrorBody
//	@Router		/media/uploads/{userID}/{fileName} [get]
func (h *Handler) GetUpload(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	fileName := chi.URLParam(r, "fileName")
	if uuid.Validate(userID) != nil || fileName == "" {
		response.NotFound(w, "Not found")
		return
	}
	h.serveObject(w, r, "uploads/"+userID+"/"+fileName)
}

func (h *Handler) serveObject(w http.ResponseWriter, r *http.Request, key string) {
	obj, err := h.svc.FetchObject(r.Context(), key)
	if err != nil {
		h.writeError(w, err)
		return
	}
	defer obj.Body.Close()

	if obj.ContentType != "" {
		w.Header().Set("Content-Type", obj.ContentType)
	}
	if obj.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	if _, err := io.Copy(w, obj.Body); err != nil {
		log.Printf("media: stream %q: %v", key, err)
	}
}

// writeError maps pipeline errors onto the HTTP error taxonomy.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnauthorized):
		response.Unauthorized(w, "You need to be logged in.")
	case errors.Is(err, ErrFileRequired):
		response.BadRequest(w, "A file is required")
	case errors.Is(err, ErrPayloadTooLarge):
		response.BadRequest(w, "Max size for files is 20MB")
	case errors.Is(err, ErrTooManyFiles):
		response.BadRequest(w, "A maximum of 10 files is allowed")
	case errors.Is(err, ErrInvalidImageDimensions):
		response.BadRequest(w, "Image must be smaller than 4096x4096")
	case errors.Is(err, ErrInvalidOwner):
		response.BadRequest(w, "Invalid user")
	case errors.Is(err, ErrForbidden):
		response.Forbidden(w, "Only room creators can change the room Pic")
	case errors.Is(err, ErrRoomNotFound):
		response.NotFound(w, "Room doesn't exist")
	case errors.Is(err, ErrDMRoom):
		response.NotFound(w, "Can't update DM pic")
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "Not found")
	default:
		log.Printf("media: %v", err)
		response.InternalError(w)
	}
}

func uploaderFrom(r *http.Request) (Uploader, bool) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(string)
	if !ok || userID == "" {
		return Uploader{}, false
	}
	sessionID, _ := r.Context().Value(middleware.SessionIDKey).(string)
	return Uploader{UserID: userID, SessionID: sessionID, IP: r.RemoteAddr}, true
}

func formFile(r *http.Request, field string) (*File, error) {
	file, hdr, err := r.FormFile(field)
	if err != nil {
		return nil, err
	}
	file.Close()
	return readFile(hdr)
}

func readFile(hdr *multipart.FileHeader) (*File, error) {
	file, err := hdr.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	return &File{
		Name:        hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Size:        hdr.Size,
		Data:        data,
	}, nil
}
