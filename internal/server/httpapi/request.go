package httpapi

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/filex"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
)

// multipartMemory is how much of a multipart body is buffered in memory
// before the rest spills to disk.
const multipartMemory = 8 << 20

// pathID returns the named path value, which must be a UUID.
func pathID(r *http.Request, name, label string) (string, error) {
	raw := strings.TrimSpace(r.PathValue(name))
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", common.BadRequest("Invalid " + label)
	}
	return id.String(), nil
}

// queryID is pathID for an optional query parameter.
func queryID(r *http.Request, name, label string) (string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return "", nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", common.BadRequest("Invalid " + label)
	}
	return id.String(), nil
}

// pageFrom reads page and limit. Bad or missing values fall back to the
// defaults.
func pageFrom(r *http.Request) models.Page {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return models.Page{Page: page, Limit: limit}.Normalize()
}

// sortFrom reads sortBy and sortType. Descending is the default.
func sortFrom(r *http.Request) (models.VideoSort, error) {
	q := r.URL.Query()
	s := models.VideoSort{Field: strings.TrimSpace(q.Get("sortBy")), Desc: true}
	switch strings.ToLower(strings.TrimSpace(q.Get("sortType"))) {
	case "", "desc":
	case "asc":
		s.Desc = false
	default:
		return s, common.BadRequest("sortType must be asc or desc")
	}
	return s, nil
}

// parseMultipart parses a multipart form. The caller removes the spooled parts
// with form.RemoveAll.
func parseMultipart(r *http.Request) (*multipart.Form, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, common.BadRequest("Upload is too large")
		}
		return nil, common.BadRequest("Invalid multipart form")
	}
	return r.MultipartForm, nil
}

func formValue(form *multipart.Form, name string) string {
	if vs := form.Value[name]; len(vs) > 0 {
		return strings.TrimSpace(vs[0])
	}
	return ""
}

// stageFiles copies the first file of each named field into the upload
// directory. Missing fields map to "". If any copy fails, everything already
// staged is removed.
func (h *Handler) stageFiles(form *multipart.Form, fields ...string) (map[string]string, error) {
	staged := make(map[string]string, len(fields))
	for _, field := range fields {
		fhs := form.File[field]
		if len(fhs) == 0 {
			staged[field] = ""
			continue
		}
		path, err := h.stageFile(fhs[0])
		if err != nil {
			for _, p := range staged {
				_ = filex.RemoveQuietly(p)
			}
			return nil, common.Internal("Failed to store upload", err)
		}
		staged[field] = path
	}
	return staged, nil
}

func (h *Handler) stageFile(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return filex.SaveTemp(h.cfg.UploadDir, f, fh.Filename)
}

// currentUserOf returns the principal placed on the context by requireAuth.
func currentUserOf(r *http.Request) (*models.User, error) {
	u, ok := userFromContext(r.Context())
	if !ok {
		return nil, common.Unauthorized("Unauthorized request")
	}
	return u, nil
}
