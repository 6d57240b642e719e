package traders

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"predictcore/migration"
	_ "predictcore/migration/migrations"
	"predictcore/models"
	"predictcore/setup"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, migration.RunAll(db))
	return db
}

func postJSON(t *testing.T, h http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestRegisterFundsNewTrader(t *testing.T) {
	db := newTestDB(t)
	cfg := setup.Default()

	rec := postJSON(t, RegisterHandler(db, cfg), "/v0/traders/register", RegisterRequest{Name: "alice"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp RegisterResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.APIKey, "pm_sk_"))
	assert.True(t, strings.HasPrefix(resp.Trader.Address, "0x"))
	assert.True(t, resp.Trader.IsActive)

	want, err := cfg.InitialTraderBalanceBig()
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Trader.AccountBalance.Big().Cmp(want))

	// The stored row carries the same key; nothing else ever returns it.
	var stored models.Trader
	require.NoError(t, db.Where("address = ?", resp.Trader.Address).First(&stored).Error)
	assert.Equal(t, resp.APIKey, stored.APIKey)
}

func TestRegisterRejectsBadNames(t *testing.T) {
	db := newTestDB(t)
	cfg := setup.Default()

	for _, name := range []string{"", "ab", "  a  ", strings.Repeat("x", 51)} {
		rec := postJSON(t, RegisterHandler(db, cfg), "/v0/traders/register", RegisterRequest{Name: name})
		assert.Equal(t, http.StatusBadRequest, rec.Code, "name %q", name)
	}

	var count int64
	require.NoError(t, db.Model(&models.Trader{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestMeReturnsAccountAndPositions(t *testing.T) {
	db := newTestDB(t)
	cfg := setup.Default()

	rec := postJSON(t, RegisterHandler(db, cfg), "/v0/traders/register", RegisterRequest{Name: "alice"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var registered RegisterResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &registered))

	require.NoError(t, db.Create(&models.Position{
		MarketID:      1,
		TraderAddress: registered.Trader.Address,
	}).Error)

	req := httptest.NewRequest(http.MethodGet, "/v0/traders/me", nil)
	req.Header.Set("X-API-Key", registered.APIKey)
	rec = httptest.NewRecorder()
	MeHandler(db)(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Trader    models.TraderPublic `json:"trader"`
		Positions []models.Position   `json:"positions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, registered.Trader.Address, resp.Trader.Address)
	require.Len(t, resp.Positions, 1)
	assert.Equal(t, uint64(1), resp.Positions[0].MarketID)

	// Bad key.
	req = httptest.NewRequest(http.MethodGet, "/v0/traders/me", nil)
	req.Header.Set("X-API-Key", "pm_sk_unknown")
	rec = httptest.NewRecorder()
	MeHandler(db)(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Deactivated account.
	require.NoError(t, db.Model(&models.Trader{}).
		Where("address = ?", registered.Trader.Address).
		Update("is_active", false).Error)
	req = httptest.NewRequest(http.MethodGet, "/v0/traders/me", nil)
	req.Header.Set("X-API-Key", registered.APIKey)
	rec = httptest.NewRecorder()
	MeHandler(db)(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
