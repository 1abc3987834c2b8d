package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mysql2pg/internal/core"
)

func TestBuildProjection_SpatialColumnsUseHexWKB(t *testing.T) {
	tbl := &core.SourceTable{Columns: []*core.Column{{Field: "location", RawType: "point"}}}
	cols, projection := buildProjection(tbl)
	assert.True(t, cols[0].hexBinary)
	assert.Contains(t, projection, "HEX(ST_AsWKB(`location`)) AS `location`")
}

func TestBuildProjection_BinaryColumnsAreHexEncoded(t *testing.T) {
	tbl := &core.SourceTable{Columns: []*core.Column{{Field: "payload", RawType: "varbinary(255)"}}}
	cols, projection := buildProjection(tbl)
	assert.True(t, cols[0].hexBinary)
	assert.Contains(t, projection, "HEX(`payload`) AS `payload`")
}

func TestBuildProjection_TemporalColumnsGuardZeroDates(t *testing.T) {
	tbl := &core.SourceTable{Columns: []*core.Column{{Field: "created_at", RawType: "datetime"}}}
	_, projection := buildProjection(tbl)
	assert.Contains(t, projection, "0000-00-00")
	assert.Contains(t, projection, "-INFINITY")
}

func TestBuildProjection_BitColumnsUseBinFunction(t *testing.T) {
	tbl := &core.SourceTable{Columns: []*core.Column{{Field: "flags", RawType: "bit(8)"}}}
	_, projection := buildProjection(tbl)
	assert.Contains(t, projection, "BIN(`flags`) AS `flags`")
}

func TestBuildProjection_OrdinaryColumnsAreIdentityProjected(t *testing.T) {
	tbl := &core.SourceTable{Columns: []*core.Column{{Field: "name", RawType: "varchar(255)"}}}
	cols, projection := buildProjection(tbl)
	assert.False(t, cols[0].hexBinary)
	assert.Equal(t, "`name`", projection)
}
