package inventory

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/HerbHall/sentinel/internal/plugin"
	"github.com/HerbHall/sentinel/internal/server"
	"github.com/HerbHall/sentinel/pkg/models"
)

// assetTypeInfo describes one asset type for pickers and legends.
type assetTypeInfo struct {
	Type models.AssetType `json:"type"`
	Icon string           `json:"icon"`
}

// statusInfo pairs a status with its presentation style.
type statusInfo struct {
	Status models.Status `json:"status"`
	models.StatusStyle
}

// selectionRequest is the JSON body for PUT /inventory/selection.
type selectionRequest struct {
	StoreID string `json:"store_id"`
}

// Routes implements plugin.Plugin.
func (m *Module) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "GET", Path: "/stores", Handler: m.handleListStores},
		{Method: "POST", Path: "/stores", Handler: m.handleCreateStore},
		{Method: "GET", Path: "/stores/{id}", Handler: m.handleGetStore},
		{Method: "PUT", Path: "/stores/{id}", Handler: m.handleUpdateStore},
		{Method: "DELETE", Path: "/stores/{id}", Handler: m.handleDeleteStore},
		{Method: "GET", Path: "/assets", Handler: m.handleListAssets},
		{Method: "POST", Path: "/assets", Handler: m.handleCreateAsset},
		{Method: "GET", Path: "/selection", Handler: m.handleGetSelection},
		{Method: "PUT", Path: "/selection", Handler: m.handleSelect},
		{Method: "GET", Path: "/export", Handler: m.handleExport},
		{Method: "GET", Path: "/asset-types", Handler: m.handleAssetTypes},
		{Method: "GET", Path: "/statuses", Handler: m.handleStatuses},
	}
}

// handleListStores returns all stores with their assets.
//
//	@Summary		List stores
//	@Tags			inventory
//	@Produce		json
//	@Success		200 {array} models.Store
//	@Router			/inventory/stores [get]
func (m *Module) handleListStores(w http.ResponseWriter, _ *http.Request) {
	server.WriteJSON(w, http.StatusOK, m.ListStores())
}

// handleGetStore returns one store.
//
//	@Summary		Get store
//	@Tags			inventory
//	@Produce		json
//	@Param			id path string true "Store ID"
//	@Success		200 {object} models.Store
//	@Failure		404 {object} server.Problem
//	@Router			/inventory/stores/{id} [get]
func (m *Module) handleGetStore(w http.ResponseWriter, r *http.Request) {
	st, err := m.GetStore(r.PathValue("id"))
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, st)
}

// handleCreateStore registers a store.
//
//	@Summary		Create store
//	@Tags			inventory
//	@Accept			json
//	@Produce		json
//	@Param			request body StoreInput true "Store"
//	@Success		201 {object} models.Store
//	@Failure		400 {object} server.Problem
//	@Router			/inventory/stores [post]
func (m *Module) handleCreateStore(w http.ResponseWriter, r *http.Request) {
	var in StoreInput
	if err := server.DecodeJSON(r, &in); err != nil {
		server.BadRequest(w, "invalid request body", r.URL.Path)
		return
	}
	st, err := m.CreateStore(r.Context(), in)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusCreated, st)
}

// handleUpdateStore edits a store.
//
//	@Summary		Update store
//	@Tags			inventory
//	@Accept			json
//	@Produce		json
//	@Param			id path string true "Store ID"
//	@Param			request body StoreInput true "Store"
//	@Success		200 {object} models.Store
//	@Failure		400 {object} server.Problem
//	@Failure		404 {object} server.Problem
//	@Router			/inventory/stores/{id} [put]
func (m *Module) handleUpdateStore(w http.ResponseWriter, r *http.Request) {
	var in StoreInput
	if err := server.DecodeJSON(r, &in); err != nil {
		server.BadRequest(w, "invalid request body", r.URL.Path)
		return
	}
	st, err := m.UpdateStore(r.Context(), r.PathValue("id"), in)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, st)
}

// handleDeleteStore removes a store and its assets.
//
//	@Summary		Delete store
//	@Tags			inventory
//	@Param			id path string true "Store ID"
//	@Success		204
//	@Failure		404 {object} server.Problem
//	@Router			/inventory/stores/{id} [delete]
func (m *Module) handleDeleteStore(w http.ResponseWriter, r *http.Request) {
	if err := m.DeleteStore(r.Context(), r.PathValue("id")); err != nil {
		server.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListAssets returns assets across stores.
//
//	@Summary		List assets
//	@Tags			inventory
//	@Produce		json
//	@Param			store_id query string false "Store ID"
//	@Param			status query string false "normal, warning or critical"
//	@Param			type query string false "Asset type"
//	@Success		200 {array} models.Asset
//	@Failure		400 {object} server.Problem
//	@Failure		404 {object} server.Problem
//	@Router			/inventory/assets [get]
func (m *Module) handleListAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := m.ListAssets(filterFromQuery(r))
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, assets)
}

// handleCreateAsset registers an asset in a store.
//
//	@Summary		Create asset
//	@Tags			inventory
//	@Accept			json
//	@Produce		json
//	@Param			request body AssetInput true "Asset"
//	@Success		201 {object} models.Asset
//	@Failure		400 {object} server.Problem
//	@Failure		404 {object} server.Problem
//	@Router			/inventory/assets [post]
func (m *Module) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	var in AssetInput
	if err := server.DecodeJSON(r, &in); err != nil {
		server.BadRequest(w, "invalid request body", r.URL.Path)
		return
	}
	a, err := m.CreateAsset(r.Context(), in)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusCreated, a)
}

// handleGetSelection returns the selected store pointer.
//
//	@Summary		Selected store
//	@Tags			inventory
//	@Produce		json
//	@Success		200 {object} state.Selection
//	@Router			/inventory/selection [get]
func (m *Module) handleGetSelection(w http.ResponseWriter, _ *http.Request) {
	server.WriteJSON(w, http.StatusOK, m.Selection())
}

// handleSelect changes the selected store.
//
//	@Summary		Select store
//	@Tags			inventory
//	@Accept			json
//	@Produce		json
//	@Param			request body selectionRequest true "Selection"
//	@Success		200 {object} state.Selection
//	@Failure		404 {object} server.Problem
//	@Router			/inventory/selection [put]
func (m *Module) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.BadRequest(w, "invalid request body", r.URL.Path)
		return
	}
	sel, err := m.SelectStore(r.Context(), req.StoreID)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, sel)
}

// handleExport downloads the (optionally filtered) asset list.
//
//	@Summary		Export assets
//	@Tags			inventory
//	@Produce		text/csv
//	@Produce		application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
//	@Param			format query string false "csv (default) or xlsx"
//	@Param			store_id query string false "Store ID"
//	@Success		200
//	@Failure		400 {object} server.Problem
//	@Router			/inventory/export [get]
func (m *Module) handleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatXLSX {
		server.BadRequest(w, fmt.Sprintf("unsupported export format %q", format), r.URL.Path)
		return
	}

	assets, err := m.ListAssets(filterFromQuery(r))
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	stores := m.ListStores()
	stamp := m.now().UTC().Format("20060102-150405")

	switch format {
	case FormatXLSX:
		data, err := BuildXLSX(stores, assets)
		if err != nil {
			m.logger.Error("failed to build xlsx export", zap.Error(err))
			server.InternalError(w, "failed to build export", r.URL.Path)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="inventario-%s.xlsx"`, stamp))
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	default:
		var buf bytes.Buffer
		if err := WriteCSV(&buf, stores, assets); err != nil {
			m.logger.Error("failed to build csv export", zap.Error(err))
			server.InternalError(w, "failed to build export", r.URL.Path)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="inventario-%s.csv"`, stamp))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}

func filterFromQuery(r *http.Request) AssetFilter {
	q := r.URL.Query()
	return AssetFilter{
		StoreID: q.Get("store_id"),
		Status:  models.Status(q.Get("status")),
		Type:    models.AssetType(q.Get("type")),
	}
}

// handleAssetTypes lists the known asset types in display order.
//
//	@Summary		List asset types
//	@Tags			inventory
//	@Produce		json
//	@Success		200 {array} assetTypeInfo
//	@Router			/inventory/asset-types [get]
func (m *Module) handleAssetTypes(w http.ResponseWriter, _ *http.Request) {
	out := make([]assetTypeInfo, 0, len(models.AssetTypes))
	for _, t := range models.AssetTypes {
		out = append(out, assetTypeInfo{Type: t, Icon: t.Icon()})
	}
	server.WriteJSON(w, http.StatusOK, out)
}

// handleStatuses lists the statuses ordered by severity with their styles.
//
//	@Summary		List statuses
//	@Tags			inventory
//	@Produce		json
//	@Success		200 {array} statusInfo
//	@Router			/inventory/statuses [get]
func (m *Module) handleStatuses(w http.ResponseWriter, _ *http.Request) {
	out := make([]statusInfo, 0, len(models.StatusStyles))
	for _, st := range []models.Status{models.StatusNormal, models.StatusWarning, models.StatusCritical} {
		out = append(out, statusInfo{Status: st, StatusStyle: st.Style()})
	}
	server.WriteJSON(w, http.StatusOK, out)
}
