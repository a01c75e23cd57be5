package report

import (
	"testing"
	"time"

	"assettrack-backend/internal/database"
	"assettrack-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	database.DB = db
}

func TestBuildAssetRegister(t *testing.T) {
	setupTestDB(t)

	require.NoError(t, database.DB.Create(&models.Asset{
		AssetTag: "AT-0001", Name: "Laptop", Status: models.AssetStatusDeployed,
	}).Error)
	require.NoError(t, database.DB.Create(&models.Asset{
		AssetTag: "AT-0002", Name: "Monitor", Status: models.AssetStatusReady,
	}).Error)
	require.NoError(t, database.DB.Create(&models.Assignment{
		StockKind: models.StockAsset, StockID: 1,
		AssigneeKind: models.AssigneeUser, AssigneeID: 3, AssigneeName: "Morgan",
		Quantity: 1, OpenedAt: time.Now(),
	}).Error)

	f, err := BuildAssetRegister()
	require.NoError(t, err)

	header, err := f.GetCellValue("Assets", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Asset Tag", header)

	tag, err := f.GetCellValue("Assets", "A2")
	require.NoError(t, err)
	assert.Equal(t, "AT-0001", tag)

	holder, err := f.GetCellValue("Assets", "G2")
	require.NoError(t, err)
	assert.Equal(t, "Morgan (user)", holder)

	status, err := f.GetCellValue("Assets", "F3")
	require.NoError(t, err)
	assert.Equal(t, string(models.AssetStatusReady), status)

	// The ready asset has no holder column value.
	emptyHolder, err := f.GetCellValue("Assets", "G3")
	require.NoError(t, err)
	assert.Equal(t, "", emptyHolder)
}
