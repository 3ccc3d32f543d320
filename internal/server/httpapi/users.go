package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/services"
)

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) error {
	form, err := parseMultipart(r)
	if err != nil {
		return err
	}
	defer form.RemoveAll()

	files, err := h.stageFiles(form, "avatar", "coverImage")
	if err != nil {
		return err
	}

	u, err := h.svc.Users.Register(r.Context(), services.RegisterInput{
		Username:   formValue(form, "username"),
		Email:      formValue(form, "email"),
		FullName:   formValue(form, "fullName"),
		Password:   formValue(form, "password"),
		AvatarPath: files["avatar"],
		CoverPath:  files["coverImage"],
	})
	if err != nil {
		return err
	}
	respond(w, http.StatusCreated, u, "User registered successfully")
	return nil
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) error {
	var req loginRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		return err
	}

	u, pair, err := h.svc.Users.Login(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.metrics.AuthEvent("login", "failure")
		return err
	}
	h.metrics.AuthEvent("login", "success")

	h.setSessionCookies(w, r, pair)
	respond(w, http.StatusOK, loginResponse{User: u, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, "User logged in successfully")
	return nil
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUserOf(r)
	if err != nil {
		return err
	}
	if err := h.svc.Users.Logout(r.Context(), u.ID); err != nil {
		return err
	}
	h.metrics.AuthEvent("logout", "success")

	h.clearSessionCookies(w, r)
	respond(w, http.StatusOK, nil, "User logged out successfully")
	return nil
}

func (h *Handler) refreshToken(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	// The body is optional when the cookie is present.
	if _, err := r.Cookie(common.RefreshTokenCookieName); err != nil {
		if err := h.decodeJSON(w, r, &req); err != nil {
			return err
		}
	}

	pair, err := h.svc.Sessions.Refresh(r.Context(), refreshTokenFrom(r, req.RefreshToken))
	if err != nil {
		h.metrics.AuthEvent("refresh", "failure")
		return err
	}
	h.metrics.AuthEvent("refresh", "success")

	h.setSessionCookies(w, r, pair)
	respond(w, http.StatusOK, pair, "Access token refreshed")
	return nil
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUserOf(r)
	if err != nil {
		return err
	}
	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := h.decodeJSON(w, r, &req); err != nil {
		return err
	}
	if err := h.svc.Users.ChangePassword(r.Context(), u.ID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	respond(w, http.StatusOK, nil, "Password changed successfully")
	return nil
}

func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUserOf(r)
	if err != nil {
		return err
	}
	respond(w, http.StatusOK, u, "Current user fetched successfully")
	return nil
}

func (h *Handler) updateAccount(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUserOf(r)
	if err != nil {
		return err
	}
	var req struct {
		FullName string `json:"fullName"`
		Email    string `json:"email"`
	}
	if err := h.decodeJSON(w, r, &req); err != nil {
		return err
	}
	updated, err := h.svc.Users.UpdateAccount(r.Context(), u.ID, req.FullName, req.Email)
	if err != nil {
		return err
	}
	respond(w, http.StatusOK, updated, "Account details updated successfully")
	return nil
}

// replaceImage handles the single-file avatar and cover uploads.
func (h *Handler) replaceImage(w http.ResponseWriter, r *http.Request, field, missing string,
	update func(*models.User, string) (*models.User, error), message string) error {
	u, err := currentUserOf(r)
	if err != nil {
		return err
	}
	form, err := parseMultipart(r)
	if err != nil {
		return err
	}
	defer form.RemoveAll()

	files, err := h.stageFiles(form, field)
	if err != nil {
		return err
	}
	if files[field] == "" {
		return common.BadRequest(missing)
	}
	updated, err := update(u, files[field])
	if err != nil {
		return err
	}
	respond(w, http.StatusOK, updated, message)
	return nil
}

func (h *Handler) updateAvatar(w http.ResponseWriter, r *http.Request) error {
	return h.replaceImage(w, r, "avatar", "Avatar file is missing", func(u *models.User, path string) (*models.User, error) {
		return h.svc.Users.UpdateAvatar(r.Context(), u, path)
	}, "Avatar image updated successfully")
}

func (h *Handler) updateCoverImage(w http.ResponseWriter, r *http.Request) error {
	return h.replaceImage(w, r, "coverImage", "Cover image file is missing", func(u *models.User, path string) (*models.User, error) {
		return h.svc.Users.UpdateCoverImage(r.Context(), u, path)
	}, "Cover image updated successfully")
}

func (h *Handler) channelProfile(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUserOf(r)
	if err != nil {
		return err
	}
	profile, err := h.svc.Users.ChannelProfile(r.Context(), r.PathValue("username"), u.ID)
	if err != nil {
		return err
	}
	respond(w, http.StatusOK, profile, "User channel fetched successfully")
	return nil
}

func (h *Handler) watchHistory(w http.ResponseWriter, r *http.Request) error {
	u, err := currentUserOf(r)
	if err != nil {
		return err
	}
	history, err := h.svc.Users.WatchHistory(r.Context(), u.ID)
	if err != nil {
		return err
	}
	respond(w, http.StatusOK, orEmpty(history), "Watch history fetched successfully")
	return nil
}
