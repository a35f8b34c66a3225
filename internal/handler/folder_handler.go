package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"paperboard/internal/app/folder"
	"paperboard/internal/pkg/auth/jwt"
	"paperboard/internal/pkg/errs"
	"paperboard/internal/pkg/logx"
	"paperboard/internal/pkg/req"
	"paperboard/internal/pkg/resp"
)

// HandleCurrentUser answers with the identity the request's token resolved to.
func HandleCurrentUser(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.PayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}
		resp.RespondSuccess(w, r, map[string]string{
			"userId":   identity.UserID,
			"userName": identity.UserName,
		})
	}
}

// HandleCreateFolder creates a folder owned by the current user.
func HandleCreateFolder(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.PayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var body struct {
			Name string `json:"name"`
		}
		if bindErr := req.BindJSON(w, r, &body); bindErr != nil {
			resp.RespondError(w, r, bindErr)
			return
		}

		name := strings.TrimSpace(body.Name)
		if name == "" || len(name) > folder.MaxNameLength {
			resp.RespondError(w, r, errs.NewError(errs.ErrFolderNameInvalid, folder.MaxNameLength))
			return
		}

		created, err := deps.Folders.CreateFolder(r.Context(), name, identity.UserID)
		if err != nil {
			logx.Error(err, "failed to create folder", "owner_id", identity.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, created)
	}
}

// HandleListFolders lists the current user's folders.
func HandleListFolders(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.PayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		folders, err := deps.Folders.ListFolders(r.Context(), identity.UserID)
		if err != nil {
			logx.Error(err, "failed to list folders", "owner_id", identity.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, folders)
	}
}

// HandleGetFolder returns one folder together with its questions.
func HandleGetFolder(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		folderID := chi.URLParam(r, "id")

		f, err := deps.Folders.GetFolder(r.Context(), folderID)
		if err != nil {
			respondFolderError(w, r, err, folderID)
			return
		}

		questions, err := deps.Folders.ListQuestions(r.Context(), folderID)
		if err != nil {
			logx.Error(err, "failed to list questions", "folder_id", folderID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"folder":    f,
			"questions": questions,
		})
	}
}

// HandleRenameFolder renames a folder.
func HandleRenameFolder(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if jwt.PayloadFromContext(r) == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		folderID := chi.URLParam(r, "id")

		var body struct {
			Name string `json:"name"`
		}
		if bindErr := req.BindJSON(w, r, &body); bindErr != nil {
			resp.RespondError(w, r, bindErr)
			return
		}

		name := strings.TrimSpace(body.Name)
		if name == "" || len(name) > folder.MaxNameLength {
			resp.RespondError(w, r, errs.NewError(errs.ErrFolderNameInvalid, folder.MaxNameLength))
			return
		}

		if err := deps.Folders.RenameFolder(r.Context(), folderID, name); err != nil {
			respondFolderError(w, r, err, folderID)
			return
		}

		resp.RespondSuccess(w, r, nil)
	}
}

// HandleAddQuestion appends a question to a folder.
func HandleAddQuestion(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if jwt.PayloadFromContext(r) == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		folderID := chi.URLParam(r, "id")

		var body struct {
			Body     string `json:"body"`
			Marks    int    `json:"marks"`
			Position int    `json:"position"`
		}
		if bindErr := req.BindJSON(w, r, &body); bindErr != nil {
			resp.RespondError(w, r, bindErr)
			return
		}

		if strings.TrimSpace(body.Body) == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrQuestionBodyInvalid))
			return
		}
		if body.Marks <= 0 {
			body.Marks = 1
		}

		question, err := deps.Folders.AddQuestion(r.Context(), folderID, body.Body, body.Marks, body.Position)
		if err != nil {
			respondFolderError(w, r, err, folderID)
			return
		}

		resp.RespondSuccess(w, r, question)
	}
}

// HandleRemoveQuestion deletes a question from a folder.
func HandleRemoveQuestion(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if jwt.PayloadFromContext(r) == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		folderID := chi.URLParam(r, "id")
		questionID := chi.URLParam(r, "questionId")

		if err := deps.Folders.RemoveQuestion(r.Context(), folderID, questionID); err != nil {
			if errors.Is(err, folder.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrQuestionNotFound))
				return
			}
			logx.Error(err, "failed to remove question", "folder_id", folderID, "question_id", questionID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, nil)
	}
}

// HandleFolderMembers reports the display names currently connected to a
// folder's room. Diagnostics only; an inactive folder yields an empty list.
func HandleFolderMembers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		folderID := chi.URLParam(r, "id")

		members := deps.Registry.MembersOf(folderID)
		if members == nil {
			members = []string{}
		}

		resp.RespondSuccess(w, r, map[string]any{
			"folderId": folderID,
			"members":  members,
		})
	}
}

// respondFolderError maps store errors onto the API error table.
func respondFolderError(w http.ResponseWriter, r *http.Request, err error, folderID string) {
	if errors.Is(err, folder.ErrNotFound) {
		resp.RespondError(w, r, errs.NewError(errs.ErrFolderNotFound))
		return
	}
	logx.Error(err, "folder store failure", "folder_id", folderID)
	resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
}
