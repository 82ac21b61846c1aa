package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kinotiBot/PerfumesPlugApp/internal/app/model"
)

func TestAutoMigrate(t *testing.T) {
	testDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		CleanupTestDB(testDB)
	})

	require.NoError(t, AutoMigrate(testDB))

	for _, table := range []string{
		"users", "addresses", "categories", "brands",
		"perfumes", "perfume_images", "cart_items", "orders", "order_items",
	} {
		assert.True(t, testDB.Migrator().HasTable(table), "missing table %s", table)
	}

	// Running migrations again on an up-to-date schema is a no-op
	require.NoError(t, AutoMigrate(testDB))
}

func TestAutoMigrate_CartItemUniquePerUserPerfume(t *testing.T) {
	testDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		CleanupTestDB(testDB)
	})
	require.NoError(t, AutoMigrate(testDB))

	assert.True(t, testDB.Migrator().HasIndex(&model.CartItem{}, "idx_cart_user_perfume"))
}
