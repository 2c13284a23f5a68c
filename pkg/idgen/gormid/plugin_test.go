package gormid

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"katydid-common-idgen/pkg/database"
	"katydid-common-idgen/pkg/idgen/clock"
	"katydid-common-idgen/pkg/idgen/snowflake"
)

type order struct {
	ID   snowflake.ID `gorm:"primaryKey;autoIncrement:false"`
	Name string
}

type account struct {
	ID   uint64 `gorm:"primaryKey;autoIncrement:false"`
	Name string
}

type ledger struct {
	ID   *uint64 `gorm:"primaryKey;autoIncrement:false"`
	Name string
}

type named struct {
	Code string `gorm:"primaryKey"`
}

func openDB(t *testing.T, ts *clock.Manual) *gorm.DB {
	t.Helper()
	db, err := database.Open(database.DriverSQLite, filepath.Join(t.TempDir(), "gormid.db"), zap.NewNop())
	require.NoError(t, err)

	shared, err := snowflake.NewShared(snowflake.New(53), ts)
	require.NoError(t, err)
	require.NoError(t, db.Use(New(shared)))
	require.NoError(t, db.AutoMigrate(&order{}, &account{}, &ledger{}, &named{}))
	return db
}

func TestAssignsZeroPrimaryKey(t *testing.T) {
	db := openDB(t, clock.NewManual(1000))

	o := order{Name: "first"}
	require.NoError(t, db.Create(&o).Error)
	assert.Equal(t, uint64(1000), o.ID.Timestamp())
	assert.Equal(t, uint64(53), o.ID.Identifier())

	var loaded order
	require.NoError(t, db.First(&loaded, "name = ?", "first").Error)
	assert.Equal(t, o.ID, loaded.ID)
}

func TestKeepsExplicitPrimaryKey(t *testing.T) {
	db := openDB(t, clock.NewManual(1000))

	o := order{ID: 7, Name: "explicit"}
	require.NoError(t, db.Create(&o).Error)
	assert.Equal(t, snowflake.ID(7), o.ID)
}

func TestBatchCreate(t *testing.T) {
	db := openDB(t, clock.NewManual(1000))

	accounts := []account{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	require.NoError(t, db.Create(&accounts).Error)

	seen := make(map[uint64]struct{})
	for _, a := range accounts {
		require.NotZero(t, a.ID)
		seen[a.ID] = struct{}{}
	}
	assert.Len(t, seen, 3)
	assert.Less(t, accounts[0].ID, accounts[1].ID)
}

func TestIgnoresNonIntegerPrimaryKey(t *testing.T) {
	db := openDB(t, clock.NewManual(1000))
	require.NoError(t, db.Create(&named{Code: "x"}).Error)
}

func TestPointerPrimaryKey(t *testing.T) {
	db := openDB(t, clock.NewManual(1000))

	l := ledger{Name: "pointer"}
	require.NoError(t, db.Create(&l).Error)
	require.NotNil(t, l.ID)
	assert.Equal(t, uint64(1000), snowflake.ID(*l.ID).Timestamp())
	assert.Equal(t, uint64(53), snowflake.ID(*l.ID).Identifier())
}

func TestValueForMatchesBaseKind(t *testing.T) {
	id := snowflake.ID(snowflake.Pack(0, 1000, 53, 1))

	tests := []struct {
		name     string
		model    interface{}
		expected interface{}
	}{
		{"snowflake.ID", &order{}, id.Int64()},
		{"uint64", &account{}, id.Uint64()},
		{"*uint64", &ledger{}, id.Uint64()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := schema.Parse(tt.model, &sync.Map{}, schema.NamingStrategy{})
			require.NoError(t, err)
			field := s.PrioritizedPrimaryField
			require.NotNil(t, field)
			assert.True(t, supported(field))
			assert.IsType(t, tt.expected, valueFor(field, id))
			assert.Equal(t, tt.expected, valueFor(field, id))
		})
	}
}
