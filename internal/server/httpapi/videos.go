package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/services"
)

func (h *Handler) listVideos(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUserOf(r)
	if err != nil {
		return err
	}
	ownerID, err := queryID(r, "userId", "user id")
	if err != nil {
		return err
	}
	sort, err := sortFrom(r)
	if err != nil {
		return err
	}

	filter := models.VideoFilter{
		Query:   strings.TrimSpace(r.URL.Query().Get("query")),
		OwnerID: ownerID,
		Sort:    sort,
	}
	page, err := h.svc.Videos.List(r.Context(), u.ID, filter, pageFrom(r))
	if err != nil {
		return err
	}
	respond(w, http.StatusOK, page, "Videos fetched successfully")
	return nil
}

func (h *Handler) publishVideo(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUserOf(r)
	if err != nil {
		return err
	}
	form, err := parseMultipart(r)
	if err != nil {
		return err
	}
	defer form.RemoveAll()

	var duration float64
	if raw := formValue(form, "duration"); raw != "" {
		duration, err = strconv.ParseFloat(raw, 64)
		if err != nil || duration < 0 {
			return common.BadRequest("Invalid duration")
		}
	}

	files, err := h.stageFiles(form, "videoFile", "thumbnail")
	if err != nil {
		return err
	}

	video, err := h.svc.Videos.Publish(r.Context(), u.ID, services.PublishInput{
		Title:         formValue(form, "title"),
		Description:   formValue(form, "description"),
		Duration:      duration,
		VideoPath:     files["videoFile"],
		ThumbnailPath: files["thumbnail"],
	})
	if err != nil {
		return err
	}
	respond(w, http.StatusCreated, video, "Video published successfully")
	return nil
}

func (h *Handler) getVideo(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUserOf(r)
	if err != nil {
		return err
	}
	videoID, err := pathID(r, "videoId", "video id")
	if err != nil {
		return err
	}
	video, err := h.svc.Videos.Watch(r.Context(), videoID, u.ID)
	if err != nil {
		return err
	}
	respond(w, http.StatusOK, video, "Video fetched successfully")
	return nil
}

func (h *Handler) updateVideo(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUserOf(r)
	if err != nil {
		return err
	}
	videoID, err := pathID(r, "videoId", "video id")
	if err != nil {
		return err
	}
	form, err := parseMultipart(r)
	if err != nil {
		return err
	}
	defer form.RemoveAll()

	files, err := h.stageFiles(form, "thumbnail")
	if err != nil {
		return err
	}

	video, err := h.svc.Videos.Update(r.Context(), videoID, u.ID, services.VideoUpdate{
		Title:         formValue(form, "title"),
		Description:   formValue(form, "description"),
		ThumbnailPath: files["thumbnail"],
	})
	if err != nil {
		return err
	}
	respond(w, http.StatusOK, video, "Video updated successfully")
	return nil
}

func (h *Handler) deleteVideo(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUserOf(r)
	if err != nil {
		return err
	}
	videoID, err := pathID(r, "videoId", "video id")
	if err != nil {
		return err
	}
	if err := h.svc.Videos.Delete(r.Context(), videoID, u.ID); err != nil {
		return err
	}
	respond(w, http.StatusOK, nil, "Video deleted successfully")
	return nil
}

func (h *Handler) togglePublish(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUserOf(r)
	if err != nil {
		return err
	}
	videoID, err := pathID(r, "videoId", "video id")
	if err != nil {
		return err
	}
	video, err := h.svc.Videos.TogglePublish(r.Context(), videoID, u.ID)
	if err != nil {
		return err
	}
	respond(w, http.StatusOK, video, "Video publish status toggled")
	return nil
}
