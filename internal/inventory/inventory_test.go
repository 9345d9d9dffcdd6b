package inventory

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/HerbHall/sentinel/internal/config"
	"github.com/HerbHall/sentinel/internal/plugin"
	"github.com/HerbHall/sentinel/internal/state"
	"github.com/HerbHall/sentinel/internal/testutil"
	"github.com/HerbHall/sentinel/pkg/models"
)

type fixture struct {
	m     *Module
	state *state.Container
	bus   *testutil.MockBus
	reg   *prometheus.Registry
	mux   *http.ServeMux
}

func newFixture(t *testing.T, initial state.State) *fixture {
	t.Helper()
	c := state.NewContainer(initial)
	bus := testutil.NewMockBus()
	reg := prometheus.NewRegistry()

	m := New()
	m.now = testutil.NewClock().Now
	seq := 0
	m.newID = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	require.NoError(t, m.Init(plugin.Dependencies{
		Config:  config.New(nil),
		Logger:  zap.NewNop(),
		Bus:     bus,
		State:   c,
		Metrics: reg,
	}))

	mux := http.NewServeMux()
	for _, r := range m.Routes() {
		mux.HandleFunc(r.Method+" /api/v1/inventory"+r.Path, r.Handler)
	}
	return &fixture{m: m, state: c, bus: bus, reg: reg, mux: mux}
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	f.mux.ServeHTTP(w, req)
	return w
}

func TestStoreLifecycle(t *testing.T) {
	f := newFixture(t, state.State{})
	ctx := context.Background()

	st, err := f.m.CreateStore(ctx, StoreInput{Name: "Loja X", Region: "Sul"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusNormal, st.Status)
	assert.Empty(t, st.Assets)
	require.Len(t, f.m.ListStores(), 1)

	a, err := f.m.CreateAsset(ctx, AssetInput{StoreID: st.ID, Name: "PDV 01", IP: "10.0.0.5"})
	require.NoError(t, err)
	assert.Equal(t, models.AssetTypePDV, a.Type)
	assert.Equal(t, models.StatusNormal, a.Status)
	assert.Equal(t, 0, a.Latency)
	require.NotNil(t, a.CPUUsage)
	require.NotNil(t, a.DiskUsage)
	assert.Equal(t, 0, *a.CPUUsage)
	assert.Equal(t, 0, *a.DiskUsage)
	assert.Equal(t, f.m.now().UTC(), a.LastSeen)

	got, err := f.m.GetStore(st.ID)
	require.NoError(t, err)
	require.Len(t, got.Assets, 1)

	_, err = f.m.SelectStore(ctx, st.ID)
	require.NoError(t, err)

	require.NoError(t, f.m.DeleteStore(ctx, st.ID))
	assert.Empty(t, f.m.ListStores())
	_, found := f.state.Snapshot().Asset(a.ID)
	assert.False(t, found, "deleting a store discards its assets")
	assert.Empty(t, f.m.Selection().StoreID)

	assert.Equal(t, []string{
		state.TopicStoreCreated,
		state.TopicAssetCreated,
		state.TopicStoreSelected,
		state.TopicStoreDeleted,
	}, f.bus.Topics())
}

func TestCreateStoreValidation(t *testing.T) {
	f := newFixture(t, testutil.NewState())

	_, err := f.m.CreateStore(context.Background(), StoreInput{Name: "  ", Region: "Sul"})
	require.ErrorIs(t, err, state.ErrValidation)
	assert.Equal(t, "name and region are required", err.Error())
	assert.Len(t, f.m.ListStores(), 2, "rejected create must not change state")
	assert.Empty(t, f.bus.Events())
}

func TestUpdateStore(t *testing.T) {
	f := newFixture(t, testutil.NewState())
	ctx := context.Background()
	critical := models.StatusCritical

	st, err := f.m.UpdateStore(ctx, testutil.StoreCentro, StoreInput{
		Name: "Loja Centro Renovada", Region: "Sul", Address: " Rua A, 1 ", Status: &critical,
	})
	require.NoError(t, err)
	assert.Equal(t, testutil.StoreCentro, st.ID)
	assert.Equal(t, "Rua A, 1", st.Address)
	assert.Equal(t, models.StatusCritical, st.Status)
	assert.Len(t, st.Assets, 1, "update keeps assets")

	st, err = f.m.UpdateStore(ctx, testutil.StoreCentro, StoreInput{Name: "Loja Centro", Region: "Sul"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCritical, st.Status, "nil status leaves status unchanged")

	_, err = f.m.UpdateStore(ctx, "missing", StoreInput{Name: "x", Region: "y"})
	assert.ErrorIs(t, err, state.ErrNotFound)
}

func TestCreateAssetValidation(t *testing.T) {
	f := newFixture(t, testutil.NewState())
	ctx := context.Background()

	_, err := f.m.CreateAsset(ctx, AssetInput{StoreID: testutil.StoreCentro, Name: "PDV 02"})
	require.ErrorIs(t, err, state.ErrValidation)
	assert.Equal(t, "name, ip and store are required", err.Error())

	_, err = f.m.CreateAsset(ctx, AssetInput{StoreID: "missing", Name: "PDV 02", IP: "10.0.0.9"})
	assert.ErrorIs(t, err, state.ErrNotFound)

	_, err = f.m.CreateAsset(ctx, AssetInput{StoreID: testutil.StoreCentro, Name: "X", IP: "10.0.0.9", Type: "Toaster"})
	assert.ErrorIs(t, err, state.ErrValidation)
}

func TestListAssetsFilters(t *testing.T) {
	f := newFixture(t, testutil.NewState())

	tests := []struct {
		name   string
		filter AssetFilter
		want   []string
	}{
		{"all", AssetFilter{}, []string{testutil.AssetPDV, testutil.AssetServer, testutil.AssetSwitch}},
		{"by store", AssetFilter{StoreID: testutil.StoreShopping}, []string{testutil.AssetServer, testutil.AssetSwitch}},
		{"by status", AssetFilter{Status: models.StatusCritical}, []string{testutil.AssetServer}},
		{"by type", AssetFilter{Type: models.AssetTypeSwitch}, []string{testutil.AssetSwitch}},
		{"combined empty", AssetFilter{StoreID: testutil.StoreCentro, Type: models.AssetTypeServer}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assets, err := f.m.ListAssets(tt.filter)
			require.NoError(t, err)
			ids := make([]string, 0, len(assets))
			for _, a := range assets {
				ids = append(ids, a.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	_, err := f.m.ListAssets(AssetFilter{Status: "broken"})
	assert.ErrorIs(t, err, state.ErrValidation)
	_, err = f.m.ListAssets(AssetFilter{StoreID: "missing"})
	assert.ErrorIs(t, err, state.ErrNotFound)
}

func TestInventoryMetrics(t *testing.T) {
	f := newFixture(t, testutil.NewState())

	assert.Equal(t, 2.0, promtest.ToFloat64(f.m.metrics.stores))
	assert.Equal(t, 3, promtest.CollectAndCount(f.m.metrics.assets))

	require.NoError(t, f.m.DeleteStore(context.Background(), testutil.StoreShopping))
	assert.Equal(t, 1.0, promtest.ToFloat64(f.m.metrics.stores))
	assert.Equal(t, 1, promtest.CollectAndCount(f.m.metrics.assets))
}

func TestWriteCSV(t *testing.T) {
	s := testutil.NewState()
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, s.Stores, s.AllAssets()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, exportHeaders(), rows[0])

	server := rows[2]
	assert.Equal(t, testutil.AssetServer, server[0])
	assert.Equal(t, "Loja Shopping", server[1])
	assert.Equal(t, "Servidor", server[3])
	assert.Equal(t, "92", server[8])
	assert.Equal(t, "Dell PowerEdge R740", server[10])

	sw := rows[3]
	assert.Empty(t, sw[8], "uninstrumented asset exports empty cpu")
	assert.Empty(t, sw[9])
}

func TestBuildXLSX(t *testing.T) {
	s := testutil.NewState()
	data, err := BuildXLSX(s.Stores, s.AllAssets())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{xlsxSheet}, f.GetSheetList())
	rows, err := f.GetRows(xlsxSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, exportHeaders(), rows[0])
	assert.Equal(t, testutil.AssetPDV, rows[1][0])
	assert.Equal(t, "Loja Centro", rows[1][1])
}

func TestHandleStores(t *testing.T) {
	f := newFixture(t, testutil.NewState())

	w := f.do(http.MethodPost, "/api/v1/inventory/stores", `{"name":"Loja X","region":"Sul"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var st models.Store
	require.NoError(t, json.NewDecoder(w.Body).Decode(&st))
	assert.Equal(t, "id-1", st.ID)

	w = f.do(http.MethodPost, "/api/v1/inventory/stores", `{"name":"","region":"Sul"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var p map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&p))
	assert.Equal(t, "name and region are required", p["detail"])

	w = f.do(http.MethodGet, "/api/v1/inventory/stores", "")
	require.Equal(t, http.StatusOK, w.Code)
	var stores []models.Store
	require.NoError(t, json.NewDecoder(w.Body).Decode(&stores))
	assert.Len(t, stores, 3)

	w = f.do(http.MethodPut, "/api/v1/inventory/stores/id-1", `{"name":"Loja Y","region":"Norte"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, "/api/v1/inventory/stores/id-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&st))
	assert.Equal(t, "Loja Y", st.Name)

	w = f.do(http.MethodDelete, "/api/v1/inventory/stores/id-1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = f.do(http.MethodDelete, "/api/v1/inventory/stores/id-1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleAssets(t *testing.T) {
	f := newFixture(t, testutil.NewState())

	w := f.do(http.MethodPost, "/api/v1/inventory/assets",
		`{"store_id":"s1","name":"Balança 01","type":"Balança","ip":"10.0.1.30"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(http.MethodGet, "/api/v1/inventory/assets?store_id=s1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var assets []models.Asset
	require.NoError(t, json.NewDecoder(w.Body).Decode(&assets))
	require.Len(t, assets, 2)
	assert.Equal(t, models.AssetTypeScale, assets[1].Type)

	w = f.do(http.MethodGet, "/api/v1/inventory/assets?status=bogus", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/api/v1/inventory/assets", `{"store_id":"s1","name":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleSelection(t *testing.T) {
	f := newFixture(t, testutil.NewState())

	w := f.do(http.MethodPut, "/api/v1/inventory/selection", `{"store_id":"s2"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, "/api/v1/inventory/selection", "")
	var sel state.Selection
	require.NoError(t, json.NewDecoder(w.Body).Decode(&sel))
	assert.Equal(t, "s2", sel.StoreID)

	w = f.do(http.MethodPut, "/api/v1/inventory/selection", `{"store_id":"nope"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleExport(t *testing.T) {
	f := newFixture(t, testutil.NewState())

	w := f.do(http.MethodGet, "/api/v1/inventory/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
	rows, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 4)

	w = f.do(http.MethodGet, "/api/v1/inventory/export?format=xlsx&store_id=s2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	x, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer x.Close()
	xrows, err := x.GetRows(xlsxSheet)
	require.NoError(t, err)
	assert.Len(t, xrows, 3)

	w = f.do(http.MethodGet, "/api/v1/inventory/export?format=pdf", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleLookups(t *testing.T) {
	f := newFixture(t, state.State{})

	w := f.do(http.MethodGet, "/api/v1/inventory/asset-types", "")
	require.Equal(t, http.StatusOK, w.Code)
	var types []assetTypeInfo
	require.NoError(t, json.NewDecoder(w.Body).Decode(&types))
	require.Len(t, types, len(models.AssetTypes))
	assert.Equal(t, models.AssetTypePDV, types[0].Type)
	assert.Equal(t, "monitor", types[0].Icon)

	w = f.do(http.MethodGet, "/api/v1/inventory/statuses", "")
	require.Equal(t, http.StatusOK, w.Code)
	var statuses []map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&statuses))
	require.Len(t, statuses, 3)
	assert.Equal(t, "normal", statuses[0]["status"])
	assert.Equal(t, "Online", statuses[0]["label"])
	assert.Equal(t, "critical", statuses[2]["status"])
}
