package handler

import (
	"log/slog"
	"net/http"

	"mosaic/internal/domain/services"
	"mosaic/internal/httputil"
	"mosaic/internal/storage"
)

// TreeHandler handles volume and tree HTTP requests
type TreeHandler struct {
	treeService services.TreeService
	volumes     storage.VolumeRegistry
	logger      *slog.Logger
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(treeService services.TreeService, volumes storage.VolumeRegistry, logger *slog.Logger) *TreeHandler {
	return &TreeHandler{
		treeService: treeService,
		volumes:     volumes,
		logger:      logger,
	}
}

// ListVolumes returns every configured volume
// GET /api/volumes
func (h *TreeHandler) ListVolumes(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.volumes.All())
}

// GetVolumeTree returns the folder forest of a volume
// GET /api/volumes/{id}/tree
func (h *TreeHandler) GetVolumeTree(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	if _, err := h.volumes.Volume(id); err != nil {
		handleError(w, err)
		return
	}

	tree, err := h.treeService.VolumeTree(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tree)
}
