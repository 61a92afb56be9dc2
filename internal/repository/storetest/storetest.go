// Package storetest is the behavioral suite every domain.RecordStore
// implementation must pass. Backend packages call Run from their own tests.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/msomdec/storefront/internal/domain"
)

// Opener returns a fresh, migrated, empty store. Implementations register
// cleanup on t.
type Opener func(t *testing.T) domain.RecordStore

// Run executes the full suite against stores produced by open.
func Run(t *testing.T, open Opener) {
	t.Run("Ping", func(t *testing.T) { require.NoError(t, open(t).Ping(context.Background())) })
	t.Run("Accounts", func(t *testing.T) { testAccounts(t, open(t)) })
	t.Run("ItemsCRUD", func(t *testing.T) { testItemsCRUD(t, open(t)) })
	t.Run("ItemsOrdering", func(t *testing.T) { testItemsOrdering(t, open(t)) })
	t.Run("IDsNeverReused", func(t *testing.T) { testIDsNeverReused(t, open(t)) })
	t.Run("Photos", func(t *testing.T) { testPhotos(t, open(t)) })
	t.Run("PhotoCascade", func(t *testing.T) { testPhotoCascade(t, open(t)) })
	t.Run("PhotoMissingOwner", func(t *testing.T) { testPhotoMissingOwner(t, open(t)) })
	t.Run("Orders", func(t *testing.T) { testOrders(t, open(t)) })
}

func price(p float64) *float64 { return &p }

func testAccounts(t *testing.T, s domain.RecordStore) {
	ctx := context.Background()
	repo := s.Accounts()

	a := &domain.Account{Email: "ana@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, a))
	require.NotZero(t, a.ID)
	require.False(t, a.CreatedAt.IsZero())

	got, err := repo.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	require.Equal(t, a.ID, got.ID)
	require.Equal(t, "hash", got.PasswordHash)

	got, err = repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, "ana@example.com", got.Email)

	err = repo.Create(ctx, &domain.Account{Email: "ana@example.com", PasswordHash: "other"})
	require.ErrorIs(t, err, domain.ErrDuplicateKey)

	// Emails are compared exactly; case variants are distinct accounts.
	upper := &domain.Account{Email: "Ana@Example.com", PasswordHash: "upper"}
	require.NoError(t, repo.Create(ctx, upper))
	require.NotEqual(t, a.ID, upper.ID)
	got, err = repo.GetByEmail(ctx, "Ana@Example.com")
	require.NoError(t, err)
	require.Equal(t, upper.ID, got.ID)
	got, err = repo.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	require.Equal(t, a.ID, got.ID)
	_, err = repo.GetByEmail(ctx, "ANA@EXAMPLE.COM")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.GetByID(ctx, a.ID+100)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func testItemsCRUD(t *testing.T, s domain.RecordStore) {
	ctx := context.Background()
	repo := s.Items()

	hoodie := &domain.CatalogItem{
		Kind: domain.ItemKindHoodie, Name: "Classic", Description: "warm",
		Price: price(20), ImageKey: "hoodies/a.png",
	}
	require.NoError(t, repo.Create(ctx, hoodie))
	require.NotZero(t, hoodie.ID)

	product := &domain.CatalogItem{Kind: domain.ItemKindProduct, Name: "Mug"}
	require.NoError(t, repo.Create(ctx, product))

	got, err := repo.GetByID(ctx, hoodie.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ItemKindHoodie, got.Kind)
	require.Equal(t, "Classic", got.Name)
	require.Equal(t, "warm", got.Description)
	require.NotNil(t, got.Price)
	require.InDelta(t, 20.0, *got.Price, 1e-9)
	require.Equal(t, "hoodies/a.png", got.ImageKey)

	got, err = repo.GetByID(ctx, product.ID)
	require.NoError(t, err)
	require.Nil(t, got.Price, "missing price must round-trip as nil")

	name := "Classic Zip"
	n, err := repo.Update(ctx, hoodie.ID, domain.ItemChanges{Name: &name, Price: price(25.5)})
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	got, err = repo.GetByID(ctx, hoodie.ID)
	require.NoError(t, err)
	require.Equal(t, "Classic Zip", got.Name)
	require.Equal(t, "warm", got.Description, "untouched fields keep their value")
	require.InDelta(t, 25.5, *got.Price, 1e-9)

	n, err = repo.Update(ctx, hoodie.ID+product.ID+100, domain.ItemChanges{Name: &name})
	require.NoError(t, err)
	require.Zero(t, n)

	n, err = repo.Delete(ctx, hoodie.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	n, err = repo.Delete(ctx, hoodie.ID)
	require.NoError(t, err)
	require.Zero(t, n)

	_, err = repo.GetByID(ctx, hoodie.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func testItemsOrdering(t *testing.T, s domain.RecordStore) {
	ctx := context.Background()
	repo := s.Items()

	var ids []int64
	for _, name := range []string{"first", "second", "third"} {
		item := &domain.CatalogItem{Kind: domain.ItemKindHoodie, Name: name, Price: price(10), ImageKey: name}
		require.NoError(t, repo.Create(ctx, item))
		ids = append(ids, item.ID)
	}
	require.NoError(t, repo.Create(ctx, &domain.CatalogItem{Kind: domain.ItemKindProduct, Name: "other"}))

	items, err := repo.List(ctx, domain.ItemFilter{Kind: domain.ItemKindHoodie})
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, []string{"third", "second", "first"}, names(items))

	items, err = repo.List(ctx, domain.ItemFilter{Kind: domain.ItemKindHoodie, Ascending: true})
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second", "third"}, names(items))

	all, err := repo.List(ctx, domain.ItemFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
}

func testIDsNeverReused(t *testing.T, s domain.RecordStore) {
	ctx := context.Background()
	repo := s.Items()

	a := &domain.CatalogItem{Kind: domain.ItemKindProduct, Name: "a"}
	b := &domain.CatalogItem{Kind: domain.ItemKindProduct, Name: "b"}
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))
	require.Greater(t, b.ID, a.ID)

	_, err := repo.Delete(ctx, b.ID)
	require.NoError(t, err)

	c := &domain.CatalogItem{Kind: domain.ItemKindProduct, Name: "c"}
	require.NoError(t, repo.Create(ctx, c))
	require.Greater(t, c.ID, b.ID, "deleted ids must not be handed out again")
}

func testPhotos(t *testing.T, s domain.RecordStore) {
	ctx := context.Background()
	item := &domain.CatalogItem{Kind: domain.ItemKindProduct, Name: "Poster"}
	require.NoError(t, s.Items().Create(ctx, item))
	other := &domain.CatalogItem{Kind: domain.ItemKindProduct, Name: "Card"}
	require.NoError(t, s.Items().Create(ctx, other))

	repo := s.Photos()

	_, ok, err := repo.MaxSortOrder(ctx, item.ID)
	require.NoError(t, err)
	require.False(t, ok)

	for _, order := range []int{2, 0, 1} {
		p := &domain.Photo{ItemID: item.ID, ImageKey: "k", SortOrder: order, IsPrimary: order == 0}
		require.NoError(t, repo.Create(ctx, p))
		require.NotZero(t, p.ID)
	}
	require.NoError(t, repo.Create(ctx, &domain.Photo{ItemID: other.ID, ImageKey: "o", SortOrder: 0}))

	photos, err := repo.ListByItem(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, photos, 3)
	for i, p := range photos {
		require.Equal(t, i, p.SortOrder)
	}
	require.True(t, photos[0].IsPrimary)

	max, ok, err := repo.MaxSortOrder(ctx, item.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 2, max)

	byItem, err := repo.ListByItems(ctx, []int64{item.ID, other.ID})
	require.NoError(t, err)
	require.Len(t, byItem[item.ID], 3)
	require.Len(t, byItem[other.ID], 1)

	yes := true
	n, err := repo.Update(ctx, photos[2].ID, domain.PhotoChanges{IsPrimary: &yes})
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	got, err := repo.GetByID(ctx, photos[2].ID)
	require.NoError(t, err)
	require.True(t, got.IsPrimary)

	n, err = repo.Delete(ctx, photos[1].ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	photos, err = repo.ListByItem(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, photos, 2)
	require.Equal(t, 0, photos[0].SortOrder)
	require.Equal(t, 2, photos[1].SortOrder, "remaining photos keep their sort order")

	_, err = repo.GetByID(ctx, photos[0].ID+1000)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func testPhotoCascade(t *testing.T, s domain.RecordStore) {
	ctx := context.Background()
	item := &domain.CatalogItem{Kind: domain.ItemKindProduct, Name: "Tote"}
	require.NoError(t, s.Items().Create(ctx, item))
	keep := &domain.CatalogItem{Kind: domain.ItemKindProduct, Name: "Keep"}
	require.NoError(t, s.Items().Create(ctx, keep))

	for i := range 3 {
		require.NoError(t, s.Photos().Create(ctx, &domain.Photo{ItemID: item.ID, ImageKey: "t", SortOrder: i}))
	}
	require.NoError(t, s.Photos().Create(ctx, &domain.Photo{ItemID: keep.ID, ImageKey: "k", SortOrder: 0}))

	n, err := s.Items().Delete(ctx, item.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	photos, err := s.Photos().ListByItem(ctx, item.ID)
	require.NoError(t, err)
	require.Empty(t, photos)

	photos, err = s.Photos().ListByItem(ctx, keep.ID)
	require.NoError(t, err)
	require.Len(t, photos, 1)
}

func testPhotoMissingOwner(t *testing.T, s domain.RecordStore) {
	ctx := context.Background()
	err := s.Photos().Create(ctx, &domain.Photo{ItemID: 4242, ImageKey: "x", SortOrder: 0})
	require.ErrorIs(t, err, domain.ErrConstraintViolation)
}

func testOrders(t *testing.T, s domain.RecordStore) {
	ctx := context.Background()
	repo := s.Orders()

	first := &domain.Order{
		FullName: "Ana Doe", Phone: "5551234567", Email: "ana@example.com", Address: "1 Main St",
		Items:      []domain.OrderItem{{ItemID: 1, Name: "Classic", Price: 20}, {ItemID: 2, Name: "Mug", Price: 5.5}},
		TotalPrice: 25.5,
		Status:     domain.OrderStatusActive,
	}
	require.NoError(t, repo.Create(ctx, first))
	require.NotZero(t, first.ID)

	second := &domain.Order{
		FullName: "Bo", Phone: "5557654321", Email: "bo@example.com", Address: "2 Side St",
		Notes: "ring twice", Items: []domain.OrderItem{{ItemID: 3, Name: "Cap", Price: 0}},
		Status: domain.OrderStatusActive,
	}
	require.NoError(t, repo.Create(ctx, second))

	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, first.Items, got.Items)
	require.InDelta(t, 25.5, got.TotalPrice, 1e-9)
	require.Equal(t, domain.OrderStatusActive, got.Status)

	orders, err := repo.List(ctx, domain.OrderFilter{})
	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.Equal(t, second.ID, orders[0].ID, "orders are listed newest first")

	archived := domain.OrderStatusArchived
	n, err := repo.Update(ctx, first.ID, domain.OrderChanges{Status: &archived})
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	orders, err = repo.List(ctx, domain.OrderFilter{Status: domain.OrderStatusArchived})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, first.ID, orders[0].ID)
	require.Equal(t, first.Items, orders[0].Items, "status change keeps the snapshot")

	orders, err = repo.List(ctx, domain.OrderFilter{Status: domain.OrderStatusActive})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, second.ID, orders[0].ID)

	n, err = repo.Update(ctx, first.ID+second.ID+100, domain.OrderChanges{Status: &archived})
	require.NoError(t, err)
	require.Zero(t, n)

	n, err = repo.Delete(ctx, first.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	_, err = repo.GetByID(ctx, first.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func names(items []domain.CatalogItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}
