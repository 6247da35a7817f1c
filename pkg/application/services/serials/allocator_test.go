package serials

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmfg/stockcore/pkg/domain/entities"
	"github.com/openmfg/stockcore/pkg/domain/errs"
	"github.com/openmfg/stockcore/pkg/infrastructure/repositories/memory"
	storetest "github.com/openmfg/stockcore/pkg/infrastructure/testing"
	"github.com/openmfg/stockcore/pkg/tree"
)

func TestExtract(t *testing.T) {
	testCases := []struct {
		name     string
		spec     string
		quantity int
		latest   string
		want     []string
	}{
		{"single values", "100,105,110", 3, "", []string{"100", "105", "110"}},
		{"range", "5-8", 4, "", []string{"5", "6", "7", "8"}},
		{"mixed", "1,3,5-7", 5, "", []string{"1", "3", "5", "6", "7"}},
		{"alphanumeric", "A1,A2", 2, "", []string{"A1", "A2"}},
		{"whitespace tolerated", " 1 , 2 ", 2, "", []string{"1", "2"}},
		{"placeholder continues latest", "~,~", 2, "100", []string{"101", "102"}},
		{"placeholder without latest starts at one", "~,~,~", 3, "", []string{"1", "2", "3"}},
		{"placeholder keeps padding", "~", 1, "099", []string{"100"}},
		{"placeholder mixed with values", "5,~", 2, "100", []string{"5", "101"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Extract(tc.spec, tc.quantity, tc.latest)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExtract_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		spec     string
		quantity int
		latest   string
	}{
		{"count mismatch", "1,3", 5, ""},
		{"duplicate across range", "5-7,6", 4, ""},
		{"duplicate value", "9,9", 2, ""},
		{"descending range", "7-5", 3, ""},
		{"empty spec", "", 1, ""},
		{"empty token", "1,,2", 3, ""},
		{"zero quantity", "1", 0, ""},
		{"range too wide", "1-100000", 100000, ""},
		{"placeholder after non-incrementable latest", "~", 1, "ABC"},
		{"placeholder colliding with a value", "101,~", 2, "100"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Extract(tc.spec, tc.quantity, tc.latest)
			require.Error(t, err)
			assert.True(t, errs.IsValidation(err))
		})
	}
}

func TestExtract_AggregatesAllDuplicates(t *testing.T) {
	_, err := Extract("1,1,2,2", 4, "")
	require.Error(t, err)

	var verr *errs.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields["serials"], 2, "every duplicate reported, not just the first")
}

func TestNextAfter(t *testing.T) {
	testCases := []struct {
		latest string
		want   string
	}{
		{"100", "101"},
		{"099", "100"},
		{"007", "008"},
		{"ABC-009", "ABC-010"},
		{"A99", "A100"},
		{"ABC", ""},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.latest, func(t *testing.T) {
			assert.Equal(t, tc.want, NextAfter(tc.latest))
		})
	}
}

// newAllocator returns an allocator over a catalog with a trackable part
// family (template 100, variants 101/102) and serialized stock.
func newAllocator(t *testing.T) (*Allocator, *memory.Store) {
	t.Helper()
	store := memory.NewStore()

	widget := storetest.Template(100, "Widget")
	widgetA := storetest.Variant(101, "Widget A", 100)
	widgetA.Trackable = true
	widgetB := storetest.Variant(102, "Widget B", 100)
	widgetB.Trackable = true
	storetest.MustAdd(store, widget, widgetA, widgetB)

	s1 := storetest.StockItem(500, 101, "1")
	s1.Serial = "100"
	s2 := storetest.StockItem(501, 102, "1")
	s2.Serial = "101"
	storetest.MustAdd(store, s1, s2)

	return NewAllocator(store, store, store, nil), store
}

func TestAllocator_SerialInfo(t *testing.T) {
	allocator, _ := newAllocator(t)

	// Serial uniqueness spans the variant family, so the latest is taken
	// across both variants.
	info, err := allocator.SerialInfo(context.Background(), 101)
	require.NoError(t, err)
	assert.Equal(t, "101", info.Latest)
	assert.Equal(t, "102", info.Next)
}

func TestAllocator_SerialInfo_EmptyFamily(t *testing.T) {
	store := memory.NewStore()
	storetest.MustAdd(store, storetest.Part(1, "Lonely"))

	allocator := NewAllocator(store, store, store, nil)
	info, err := allocator.SerialInfo(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, info.Latest)
	assert.Empty(t, info.Next)
}

func TestAllocator_ValidateEach(t *testing.T) {
	allocator, _ := newAllocator(t)

	checks, err := allocator.ValidateEach(context.Background(), []string{"100", "200", "101"}, 101)
	require.Error(t, err, "conflicts aggregate into one error")
	assert.True(t, errs.IsValidation(err))

	require.Len(t, checks, 3)
	assert.False(t, checks[0].OK)
	assert.Equal(t, "already in use", checks[0].Reason)
	assert.True(t, checks[1].OK)
	assert.False(t, checks[2].OK)
}

func TestAllocator_Serialize(t *testing.T) {
	allocator, store := newAllocator(t)
	ctx := context.Background()

	bulk := storetest.StockItem(510, 101, "10")
	bulk.Batch = "B42"
	storetest.MustAdd(store, bulk)

	created, err := allocator.Serialize(ctx, 510, "200-202", 3, nil, "tester")
	require.NoError(t, err)
	require.Len(t, created, 3)

	for i, want := range []string{"200", "201", "202"} {
		assert.Equal(t, want, created[i].Serial)
		assert.True(t, created[i].Quantity.Equal(storetest.Dec("1")))
		assert.Equal(t, tree.ID(101), created[i].PartID)
		assert.Equal(t, "B42", created[i].Batch, "batch carries over")
	}

	// Source item reduced by the serialized amount.
	remaining, err := store.StockItem(ctx, 510)
	require.NoError(t, err)
	assert.True(t, remaining.Quantity.Equal(storetest.Dec("7")))

	trail := store.AuditTrail()
	require.Len(t, trail, 1)
	assert.Equal(t, "stock.serialize", trail[0].Action)
}

func TestAllocator_Serialize_Rejections(t *testing.T) {
	allocator, store := newAllocator(t)
	ctx := context.Background()

	bulk := storetest.StockItem(510, 101, "10")
	untracked := storetest.StockItem(511, 100, "5")
	storetest.MustAdd(store, bulk, untracked)

	// Already-serialized source.
	_, err := allocator.Serialize(ctx, 500, "300", 1, nil, "tester")
	assert.True(t, errs.IsValidation(err))

	// Non-trackable part.
	_, err = allocator.Serialize(ctx, 511, "300", 1, nil, "tester")
	assert.True(t, errs.IsValidation(err))

	// More units than in stock.
	_, err = allocator.Serialize(ctx, 510, "1-11", 11, nil, "tester")
	assert.True(t, errs.IsValidation(err))

	// Conflict with a serial already used by a sibling variant; nothing
	// must change on the source item.
	_, err = allocator.Serialize(ctx, 510, "101,300", 2, nil, "tester")
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))

	item, err := store.StockItem(ctx, 510)
	require.NoError(t, err)
	assert.True(t, item.Quantity.Equal(storetest.Dec("10")), "failed serialization leaves the source intact")
}

// Serialization may only consume the unallocated balance: existing build and
// sales allocations stay covered by what remains on the source item.
func TestAllocator_Serialize_RespectsAllocations(t *testing.T) {
	allocator, store := newAllocator(t)
	ctx := context.Background()

	bulk := storetest.StockItem(510, 101, "10")
	storetest.MustAdd(store, bulk)

	alloc, err := entities.NewBuildItem(900, 600, 550, 510, storetest.Dec("6"))
	require.NoError(t, err)
	require.NoError(t, store.AddBuildItem(alloc))

	// Only 4 of the 10 units are unallocated.
	_, err = allocator.Serialize(ctx, 510, "1-10", 10, nil, "tester")
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))

	item, err := store.StockItem(ctx, 510)
	require.NoError(t, err)
	assert.True(t, item.Quantity.Equal(storetest.Dec("10")), "rejected serialization leaves the source intact")

	_, err = allocator.Serialize(ctx, 510, "1-5", 5, nil, "tester")
	require.Error(t, err, "one unit over the unallocated balance")

	created, err := allocator.Serialize(ctx, 510, "1-4", 4, nil, "tester")
	require.NoError(t, err)
	require.Len(t, created, 4)

	item, err = store.StockItem(ctx, 510)
	require.NoError(t, err)
	assert.True(t, item.Quantity.Equal(storetest.Dec("6")), "remaining quantity still covers the allocation")
}
