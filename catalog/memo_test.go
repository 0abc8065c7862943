package catalog_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/refaktor/bindtrim/catalog"
	"github.com/refaktor/bindtrim/catalog/catalogtest"
)

func newFake() *catalogtest.Fake {
	return &catalogtest.Fake{Types: map[string]catalogtest.Type{
		"Base": {Members: []string{"id"}, Pure: []string{"id"}},
		"Leaf": {
			Parents: []string{"Base"},
			Members: []string{"Leaf", "value"},
			Related: map[string][]string{"value": {"Base"}},
		},
	}}
}

func TestMemoDeduplicatesQueries(t *testing.T) {
	require := require.New(t)

	fake := newFake()
	memo := catalog.NewMemo(fake)

	for range 3 {
		types, err := memo.AllTypes()
		require.NoError(err)
		require.Equal([]string{"Base", "Leaf"}, types)

		anc, err := memo.Ancestors("Leaf")
		require.NoError(err)
		require.Equal([]string{"Leaf", "Base"}, anc)

		desc, err := memo.Descendants("Base")
		require.NoError(err)
		require.Equal([]string{"Base", "Leaf"}, desc)

		members, err := memo.Members("Leaf")
		require.NoError(err)
		require.Equal([]string{"Leaf", "value"}, members)

		related, err := memo.RelatedTypes("Leaf", "value")
		require.NoError(err)
		require.Equal([]string{"Base"}, related)

		pure, err := memo.IsPureVirtual("Base", "id")
		require.NoError(err)
		require.True(pure)
	}

	for query, count := range fake.Queries {
		require.Equal(1, count, "query %v must be memoized", query)
	}
}

func TestMemoDistinguishesKeys(t *testing.T) {
	require := require.New(t)

	fake := newFake()
	memo := catalog.NewMemo(fake)

	pure, err := memo.IsPureVirtual("Base", "id")
	require.NoError(err)
	require.True(pure)
	pure, err = memo.IsPureVirtual("Leaf", "id")
	require.NoError(err)
	require.False(pure)
	require.Equal(2, fake.Queries["IsPureVirtual"])
}

func TestMemoCallerCannotCorruptCache(t *testing.T) {
	require := require.New(t)

	memo := catalog.NewMemo(newFake())
	anc, err := memo.Ancestors("Leaf")
	require.NoError(err)
	anc[0] = "corrupted"

	anc, err = memo.Ancestors("Leaf")
	require.NoError(err)
	require.Equal([]string{"Leaf", "Base"}, anc)
}

func TestMemoDoesNotCacheErrors(t *testing.T) {
	require := require.New(t)

	fake := newFake()
	errBackend := errors.New("backend down")
	fake.Err = errBackend
	memo := catalog.NewMemo(fake)

	_, err := memo.Members("Leaf")
	require.ErrorIs(err, errBackend)

	fake.Err = nil
	members, err := memo.Members("Leaf")
	require.NoError(err)
	require.Equal([]string{"Leaf", "value"}, members)
}

func TestMemoPrefetch(t *testing.T) {
	require := require.New(t)

	fake := newFake()
	memo := catalog.NewMemo(fake)
	require.NoError(memo.Prefetch([]string{"Base", "Leaf"}))

	// The frontier is warm; further queries stay out of the backend.
	before := fake.Queries["Members"]
	_, err := memo.Members("Base")
	require.NoError(err)
	_, err = memo.Members("Leaf")
	require.NoError(err)
	require.Equal(before, fake.Queries["Members"])
}

func TestMemoPrefetchAggregatesErrors(t *testing.T) {
	require := require.New(t)

	fake := newFake()
	errBackend := errors.New("backend down")
	fake.Err = errBackend
	memo := catalog.NewMemo(fake)

	err := memo.Prefetch([]string{"Base", "Leaf"})
	require.ErrorIs(err, errBackend)
}
