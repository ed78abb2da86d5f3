package geom

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexInsertAndQueryBound(t *testing.T) {
	ix := NewIndex()
	require.NoError(t, ix.Insert("a", orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1, 1}}))
	require.NoError(t, ix.Insert("b", orb.Bound{Min: orb.Point{10, 10}, Max: orb.Point{11, 11}}))
	assert.Equal(t, 2, ix.Len())

	ids, err := ix.QueryBound(orb.Bound{Min: orb.Point{0.25, 0.25}, Max: orb.Point{0.75, 0.75}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a"}, ids)
}

func TestIndexDeleteAndReinsert(t *testing.T) {
	ix := NewIndex()
	require.NoError(t, ix.Insert("a", orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1, 1}}))
	assert.True(t, ix.Delete("a"))
	assert.False(t, ix.Delete("a"))
	assert.Equal(t, 0, ix.Len())

	require.NoError(t, ix.Insert("a", orb.Bound{Min: orb.Point{5, 5}, Max: orb.Point{6, 6}}))
	require.NoError(t, ix.Insert("a", orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{0.1, 0.1}}))
	assert.Equal(t, 1, ix.Len())
}

func TestIndexQueryDWithin(t *testing.T) {
	ix := NewIndex()
	require.NoError(t, ix.Insert("near", orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{0.0001, 0.0001}}))
	require.NoError(t, ix.Insert("far", orb.Bound{Min: orb.Point{10, 10}, Max: orb.Point{10.0001, 10.0001}}))

	ids, err := ix.QueryDWithin(Point{Lng: 0, Lat: 0}, 50)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"near"}, ids)
}
