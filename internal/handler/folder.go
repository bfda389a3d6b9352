package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"mosaic/internal/domain"
	"mosaic/internal/domain/models"
	"mosaic/internal/domain/services"
	"mosaic/internal/httputil"
	"mosaic/internal/storage"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	folderService services.FolderService
	pathResolver  services.PathResolver
	filenames     services.FilenameResolver
	tempFolders   services.TempFolderService
	volumes       storage.VolumeRegistry
	logger        *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(
	folderService services.FolderService,
	pathResolver services.PathResolver,
	filenames services.FilenameResolver,
	tempFolders services.TempFolderService,
	volumes storage.VolumeRegistry,
	logger *slog.Logger,
) *FolderHandler {
	return &FolderHandler{
		folderService: folderService,
		pathResolver:  pathResolver,
		filenames:     filenames,
		tempFolders:   tempFolders,
		volumes:       volumes,
		logger:        logger,
	}
}

// CreateFolder creates a new folder
// POST /api/folders
// Returns 201 if created, 409 with the existing folder on duplicate
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req services.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	folder, err := h.folderService.CreateFolder(r.Context(), &req)
	if err != nil {
		HandleCreateConflict(w, err, func() (*models.Folder, error) {
			var conflictErr *domain.ConflictError
			if errors.As(err, &conflictErr) && conflictErr.ResourceID != 0 {
				return h.folderService.GetFolder(r.Context(), conflictErr.ResourceID)
			}
			return nil, err
		})
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// GetFolder retrieves a folder by ID
// GET /api/folders/{id}
func (h *FolderHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	folder, err := h.folderService.GetFolder(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// RenameFolder renames a folder and rewrites descendant paths
// POST /api/folders/{id}/rename
func (h *FolderHandler) RenameFolder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	name, err := h.folderService.RenameFolder(r.Context(), id, req.Name)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{"name": name})
}

// DeleteFolder deletes a folder subtree
// DELETE /api/folders/{id}?deleteFiles=true
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	deleteFiles := r.URL.Query().Get("deleteFiles") == "true"

	if err := h.folderService.DeleteFolders(r.Context(), []int64{id}, deleteFiles); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// EnsurePath resolves a slash-separated path to a folder, creating missing
// segments
// POST /api/folders/ensure-path
func (h *FolderHandler) EnsurePath(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path           string `json:"path"`
		VolumeUID      string `json:"volume_uid"`
		CreatePhysical bool   `json:"create_physical"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	volume, err := h.volumes.VolumeByUID(req.VolumeUID)
	if err != nil {
		handleError(w, err)
		return
	}

	folder, err := h.pathResolver.EnsureFolderPath(r.Context(), req.Path, volume, req.CreatePhysical)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// AvailableName resolves a conflict-free filename within a folder
// POST /api/folders/{id}/available-name
func (h *FolderHandler) AvailableName(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var req struct {
		Filename string `json:"filename"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Filename == "" {
		httputil.RespondError(w, http.StatusBadRequest, "filename is required")
		return
	}

	filename, err := h.filenames.Resolve(r.Context(), req.Filename, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{"filename": filename})
}

// TempFolder resolves or creates the caller's scratch folder
// POST /api/temp-folder
func (h *FolderHandler) TempFolder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID    *int64 `json:"user_id"`
		SessionID string `json:"session_id"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	folder, err := h.tempFolders.UserTempFolder(r.Context(), services.TempScope{
		UserID:    req.UserID,
		SessionID: req.SessionID,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// HealthCheck reports liveness
// GET /health
func (h *FolderHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
