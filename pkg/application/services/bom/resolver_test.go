package bom

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmfg/stockcore/pkg/domain/errs"
	"github.com/openmfg/stockcore/pkg/infrastructure/repositories/memory"
	storetest "github.com/openmfg/stockcore/pkg/infrastructure/testing"
	"github.com/openmfg/stockcore/pkg/tree"
)

func newResolver(t *testing.T) (*Resolver, *memory.Store) {
	t.Helper()
	store := storetest.BuildWidgetCatalog()
	return NewResolver(store, store, store, nil), store
}

func TestResolver_EffectiveBom_InheritedRows(t *testing.T) {
	resolver, _ := newResolver(t)
	ctx := context.Background()

	// Widget A: its direct Bracket row first, then the Fastener row
	// inherited from the Widget template.
	lines, err := resolver.EffectiveBom(ctx, 101)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, tree.ID(300), lines[0].Item.SubPartID)
	assert.Nil(t, lines[0].InheritedFrom)

	assert.Equal(t, tree.ID(201), lines[1].Item.SubPartID)
	require.NotNil(t, lines[1].InheritedFrom)
	assert.Equal(t, tree.ID(100), *lines[1].InheritedFrom)
	assert.Equal(t, []tree.ID{202}, lines[1].Substitutes)

	// On the template itself the same row is direct.
	lines, err = resolver.EffectiveBom(ctx, 100)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Nil(t, lines[0].InheritedFrom)
}

func TestResolver_EffectiveBom_VariantExpansion(t *testing.T) {
	resolver, store := newResolver(t)
	ctx := context.Background()

	// Widget B requires one Fastener of any variant.
	row := storetest.BomItem(1002, 102, 200, "1")
	row.AllowVariants = true
	storetest.MustAdd(store, row)

	lines, err := resolver.EffectiveBom(ctx, 102)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, tree.ID(200), lines[0].Item.SubPartID)
	assert.Equal(t, []tree.ID{201, 202}, lines[0].Variants)
	assert.Nil(t, lines[1].Variants, "no expansion without AllowVariants")
}

func TestResolver_UsedIn(t *testing.T) {
	resolver, store := newResolver(t)
	ctx := context.Background()

	variantRow := storetest.BomItem(1002, 102, 200, "1")
	variantRow.AllowVariants = true
	storetest.MustAdd(store, variantRow)

	testCases := []struct {
		name    string
		target  tree.ID
		wantIDs []tree.ID
	}{
		// Named directly by the inherited row, and a Fastener variant for
		// the variant-accepting row.
		{"direct and variant", 201, []tree.ID{1000, 1002}},
		// Substitute on the inherited row, variant for the other.
		{"substitute and variant", 202, []tree.ID{1000, 1002}},
		// A variant assembly inherits its template's rows.
		{"variant assembly inherits", 101, []tree.ID{1000}},
		{"plain part", 300, []tree.ID{1001}},
		// The template itself: named by the variant-accepting row only.
		{"template", 200, []tree.ID{1002}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			items, err := resolver.UsedIn(ctx, tc.target)
			require.NoError(t, err)
			got := make([]tree.ID, 0, len(items))
			for _, item := range items {
				got = append(got, item.ID)
			}
			assert.Equal(t, tc.wantIDs, got)
		})
	}
}

func TestResolver_AssembliesFor(t *testing.T) {
	resolver, store := newResolver(t)
	ctx := context.Background()

	inherited, err := store.BomItem(ctx, 1000)
	require.NoError(t, err)
	direct, err := store.BomItem(ctx, 1001)
	require.NoError(t, err)

	// An inherited row applies to the template's whole variant subtree.
	assemblies, err := resolver.AssembliesFor(ctx, inherited)
	require.NoError(t, err)
	assert.Equal(t, []tree.ID{100, 101, 102}, assemblies)

	assemblies, err = resolver.AssembliesFor(ctx, direct)
	require.NoError(t, err)
	assert.Equal(t, []tree.ID{101}, assemblies)
}

func TestResolver_AcceptsPart(t *testing.T) {
	resolver, store := newResolver(t)
	ctx := context.Background()

	inherited, err := store.BomItem(ctx, 1000)
	require.NoError(t, err)

	ok, err := resolver.AcceptsPart(ctx, inherited, 201)
	require.NoError(t, err)
	assert.True(t, ok, "declared sub part")

	ok, err = resolver.AcceptsPart(ctx, inherited, 202)
	require.NoError(t, err)
	assert.True(t, ok, "substitute")

	ok, err = resolver.AcceptsPart(ctx, inherited, 300)
	require.NoError(t, err)
	assert.False(t, ok)

	variantRow := storetest.BomItem(1002, 102, 200, "1")
	variantRow.AllowVariants = true

	ok, err = resolver.AcceptsPart(ctx, variantRow, 201)
	require.NoError(t, err)
	assert.True(t, ok, "variant descendant")
}

func TestResolver_ChecksumStability(t *testing.T) {
	resolver, store := newResolver(t)
	ctx := context.Background()

	first, err := resolver.Checksum(ctx, 101)
	require.NoError(t, err)
	again, err := resolver.Checksum(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	// A new row changes the checksum.
	storetest.MustAdd(store, storetest.BomItem(1003, 101, 202, "4"))
	changed, err := resolver.Checksum(ctx, 101)
	require.NoError(t, err)
	assert.NotEqual(t, first, changed)
}

// A reference containing row separators must not make two distinct row sets
// hash identically.
func TestResolver_ChecksumDistinguishesReferenceSeparators(t *testing.T) {
	store := memory.NewStore()
	storetest.MustAdd(store,
		storetest.Assembly(1, "Tangle"),
		storetest.Assembly(4, "Split"),
		storetest.Part(2, "Left"),
		storetest.Part(3, "Right"),
	)

	tangled := storetest.BomItem(10, 1, 2, "1")
	tangled.Reference = "a\n3:1:b"
	left := storetest.BomItem(11, 4, 2, "1")
	left.Reference = "a"
	right := storetest.BomItem(12, 4, 3, "1")
	right.Reference = "b"
	storetest.MustAdd(store, tangled, left, right)

	resolver := NewResolver(store, store, store, nil)
	ctx := context.Background()

	one, err := resolver.Checksum(ctx, 1)
	require.NoError(t, err)
	other, err := resolver.Checksum(ctx, 4)
	require.NoError(t, err)
	assert.NotEqual(t, one, other)
}

func TestResolver_ValidateLifecycle(t *testing.T) {
	resolver, store := newResolver(t)
	ctx := context.Background()

	valid, err := resolver.IsValid(ctx, 101)
	require.NoError(t, err)
	assert.False(t, valid, "unvalidated rows")

	require.NoError(t, resolver.Validate(ctx, 101, "tester"))

	state, err := resolver.ValidationState(ctx, 101)
	require.NoError(t, err)
	assert.True(t, state.Valid)
	assert.NotEmpty(t, state.Checksum)

	// Idempotent.
	require.NoError(t, resolver.Validate(ctx, 101, "tester"))
	valid, err = resolver.IsValid(ctx, 101)
	require.NoError(t, err)
	assert.True(t, valid)

	// A BOM change invalidates the stored checksum.
	storetest.MustAdd(store, storetest.BomItem(1003, 101, 202, "4"))
	valid, err = resolver.IsValid(ctx, 101)
	require.NoError(t, err)
	assert.False(t, valid)

	trail := store.AuditTrail()
	require.NotEmpty(t, trail)
	assert.Equal(t, "bom.validate", trail[0].Action)
	assert.Equal(t, "tester", trail[0].Actor)
}

func TestResolver_EmptyBomIsVacuouslyValid(t *testing.T) {
	resolver, _ := newResolver(t)

	valid, err := resolver.IsValid(context.Background(), 102)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestResolver_CycleDetection(t *testing.T) {
	store := memory.NewStore()
	storetest.MustAdd(store,
		storetest.Assembly(1, "Left"),
		storetest.Assembly(2, "Right"),
		storetest.BomItem(10, 1, 2, "1"),
		storetest.BomItem(11, 2, 1, "1"),
	)
	resolver := NewResolver(store, store, store, nil)
	ctx := context.Background()

	err := resolver.CheckAcyclic(ctx, 1)
	require.Error(t, err)
	assert.True(t, errs.IsIntegrity(err))

	_, err = resolver.EffectiveBom(ctx, 1)
	assert.True(t, errs.IsIntegrity(err))

	_, err = resolver.Checksum(ctx, 2)
	assert.True(t, errs.IsIntegrity(err))
}

func TestResolver_UnknownPart(t *testing.T) {
	resolver, _ := newResolver(t)

	_, err := resolver.ItemsFor(context.Background(), 999)
	assert.True(t, errs.IsNotFound(err))

	_, err = resolver.UsedIn(context.Background(), 999)
	assert.True(t, errs.IsNotFound(err))
}
