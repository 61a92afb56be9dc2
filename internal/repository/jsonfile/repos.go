package jsonfile

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/msomdec/storefront/internal/domain"
)

type accountRepo struct{ s *Store }

func (r *accountRepo) Create(ctx context.Context, account *domain.Account) error {
	return r.s.mutate(ctx, func(doc *document) error {
		// No engine constraint here, so uniqueness is checked before insert.
		for _, a := range doc.Accounts {
			if a.Email == account.Email {
				return fmt.Errorf("%w: email %q", domain.ErrDuplicateKey, account.Email)
			}
		}
		doc.Sequences.Accounts++
		rec := accountRecord{
			ID:           doc.Sequences.Accounts,
			Email:        account.Email,
			PasswordHash: account.PasswordHash,
			CreatedAt:    r.s.now(),
		}
		doc.Accounts = append(doc.Accounts, rec)
		account.ID = rec.ID
		account.CreatedAt = rec.CreatedAt
		return nil
	})
}

func (r *accountRepo) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	return r.find(ctx, func(a accountRecord) bool { return a.ID == id })
}

func (r *accountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.find(ctx, func(a accountRecord) bool { return a.Email == email })
}

func (r *accountRepo) find(ctx context.Context, match func(accountRecord) bool) (*domain.Account, error) {
	var out *domain.Account
	err := r.s.view(ctx, func(doc *document) error {
		i := slices.IndexFunc(doc.Accounts, match)
		if i < 0 {
			return domain.ErrNotFound
		}
		out = doc.Accounts[i].toDomain()
		return nil
	})
	return out, err
}

type itemRepo struct{ s *Store }

func (r *itemRepo) Create(ctx context.Context, item *domain.CatalogItem) error {
	return r.s.mutate(ctx, func(doc *document) error {
		doc.Sequences.Items++
		now := r.s.now()
		rec := itemRecord{
			ID:          doc.Sequences.Items,
			Kind:        string(item.Kind),
			Name:        item.Name,
			Description: item.Description,
			Price:       item.Price,
			ImageKey:    item.ImageKey,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		doc.Items = append(doc.Items, rec)
		item.ID = rec.ID
		item.CreatedAt = now
		item.UpdatedAt = now
		return nil
	})
}

func (r *itemRepo) GetByID(ctx context.Context, id int64) (*domain.CatalogItem, error) {
	var out *domain.CatalogItem
	err := r.s.view(ctx, func(doc *document) error {
		i := slices.IndexFunc(doc.Items, func(it itemRecord) bool { return it.ID == id })
		if i < 0 {
			return domain.ErrNotFound
		}
		item := doc.Items[i].toDomain()
		out = &item
		return nil
	})
	return out, err
}

func (r *itemRepo) List(ctx context.Context, filter domain.ItemFilter) ([]domain.CatalogItem, error) {
	var out []domain.CatalogItem
	err := r.s.view(ctx, func(doc *document) error {
		for _, it := range doc.Items {
			if filter.Kind != "" && it.Kind != string(filter.Kind) {
				continue
			}
			out = append(out, it.toDomain())
		}
		slices.SortFunc(out, func(a, b domain.CatalogItem) int {
			if filter.Ascending {
				return cmp.Compare(a.ID, b.ID)
			}
			return cmp.Compare(b.ID, a.ID)
		})
		return nil
	})
	return out, err
}

func (r *itemRepo) Update(ctx context.Context, id int64, changes domain.ItemChanges) (int64, error) {
	var n int64
	err := r.s.mutate(ctx, func(doc *document) error {
		i := slices.IndexFunc(doc.Items, func(it itemRecord) bool { return it.ID == id })
		if i < 0 {
			return nil
		}
		it := &doc.Items[i]
		if changes.Name != nil {
			it.Name = *changes.Name
		}
		if changes.Description != nil {
			it.Description = *changes.Description
		}
		if changes.Price != nil {
			p := *changes.Price
			it.Price = &p
		}
		if changes.ImageKey != nil {
			it.ImageKey = *changes.ImageKey
		}
		it.UpdatedAt = r.s.now()
		n = 1
		return nil
	})
	return n, err
}

// Delete removes the item's photos first and then the item itself.
func (r *itemRepo) Delete(ctx context.Context, id int64) (int64, error) {
	var n int64
	err := r.s.mutate(ctx, func(doc *document) error {
		i := slices.IndexFunc(doc.Items, func(it itemRecord) bool { return it.ID == id })
		if i < 0 {
			return nil
		}
		doc.Photos = slices.DeleteFunc(doc.Photos, func(p photoRecord) bool { return p.ItemID == id })
		doc.Items = slices.Delete(doc.Items, i, i+1)
		n = 1
		return nil
	})
	return n, err
}

type photoRepo struct{ s *Store }

func (r *photoRepo) Create(ctx context.Context, photo *domain.Photo) error {
	return r.s.mutate(ctx, func(doc *document) error {
		if !slices.ContainsFunc(doc.Items, func(it itemRecord) bool { return it.ID == photo.ItemID }) {
			return fmt.Errorf("%w: item %d does not exist", domain.ErrConstraintViolation, photo.ItemID)
		}
		if slices.ContainsFunc(doc.Photos, func(p photoRecord) bool {
			return p.ItemID == photo.ItemID && p.SortOrder == photo.SortOrder
		}) {
			return fmt.Errorf("%w: sort order %d already used by item %d", domain.ErrDuplicateKey, photo.SortOrder, photo.ItemID)
		}

		doc.Sequences.Photos++
		rec := photoRecord{
			ID:        doc.Sequences.Photos,
			ItemID:    photo.ItemID,
			ImageKey:  photo.ImageKey,
			IsPrimary: photo.IsPrimary,
			SortOrder: photo.SortOrder,
			CreatedAt: r.s.now(),
		}
		doc.Photos = append(doc.Photos, rec)
		photo.ID = rec.ID
		photo.CreatedAt = rec.CreatedAt
		return nil
	})
}

func (r *photoRepo) GetByID(ctx context.Context, id int64) (*domain.Photo, error) {
	var out *domain.Photo
	err := r.s.view(ctx, func(doc *document) error {
		i := slices.IndexFunc(doc.Photos, func(p photoRecord) bool { return p.ID == id })
		if i < 0 {
			return domain.ErrNotFound
		}
		p := doc.Photos[i].toDomain()
		out = &p
		return nil
	})
	return out, err
}

func (r *photoRepo) ListByItem(ctx context.Context, itemID int64) ([]domain.Photo, error) {
	byItem, err := r.ListByItems(ctx, []int64{itemID})
	if err != nil {
		return nil, err
	}
	return byItem[itemID], nil
}

func (r *photoRepo) ListByItems(ctx context.Context, itemIDs []int64) (map[int64][]domain.Photo, error) {
	out := make(map[int64][]domain.Photo, len(itemIDs))
	err := r.s.view(ctx, func(doc *document) error {
		for _, p := range doc.Photos {
			if slices.Contains(itemIDs, p.ItemID) {
				out[p.ItemID] = append(out[p.ItemID], p.toDomain())
			}
		}
		for id := range out {
			slices.SortFunc(out[id], func(a, b domain.Photo) int { return cmp.Compare(a.SortOrder, b.SortOrder) })
		}
		return nil
	})
	return out, err
}

func (r *photoRepo) MaxSortOrder(ctx context.Context, itemID int64) (int, bool, error) {
	var (
		max   int
		found bool
	)
	err := r.s.view(ctx, func(doc *document) error {
		for _, p := range doc.Photos {
			if p.ItemID != itemID {
				continue
			}
			if !found || p.SortOrder > max {
				max = p.SortOrder
			}
			found = true
		}
		return nil
	})
	return max, found, err
}

func (r *photoRepo) Update(ctx context.Context, id int64, changes domain.PhotoChanges) (int64, error) {
	var n int64
	err := r.s.mutate(ctx, func(doc *document) error {
		i := slices.IndexFunc(doc.Photos, func(p photoRecord) bool { return p.ID == id })
		if i < 0 {
			return nil
		}
		if changes.IsPrimary != nil {
			doc.Photos[i].IsPrimary = *changes.IsPrimary
		}
		n = 1
		return nil
	})
	return n, err
}

func (r *photoRepo) Delete(ctx context.Context, id int64) (int64, error) {
	var n int64
	err := r.s.mutate(ctx, func(doc *document) error {
		before := len(doc.Photos)
		doc.Photos = slices.DeleteFunc(doc.Photos, func(p photoRecord) bool { return p.ID == id })
		n = int64(before - len(doc.Photos))
		return nil
	})
	return n, err
}

type orderRepo struct{ s *Store }

func (r *orderRepo) Create(ctx context.Context, order *domain.Order) error {
	return r.s.mutate(ctx, func(doc *document) error {
		if order.Status == "" {
			order.Status = domain.OrderStatusActive
		}
		doc.Sequences.Orders++
		now := r.s.now()
		rec := orderRecord{
			ID:         doc.Sequences.Orders,
			FullName:   order.FullName,
			Phone:      order.Phone,
			Email:      order.Email,
			Address:    order.Address,
			Notes:      order.Notes,
			Items:      slices.Clone(order.Items),
			TotalPrice: order.TotalPrice,
			Status:     string(order.Status),
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		doc.Orders = append(doc.Orders, rec)
		order.ID = rec.ID
		order.CreatedAt = now
		order.UpdatedAt = now
		return nil
	})
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var out *domain.Order
	err := r.s.view(ctx, func(doc *document) error {
		i := slices.IndexFunc(doc.Orders, func(o orderRecord) bool { return o.ID == id })
		if i < 0 {
			return domain.ErrNotFound
		}
		o := doc.Orders[i].toDomain()
		out = &o
		return nil
	})
	return out, err
}

func (r *orderRepo) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	var out []domain.Order
	err := r.s.view(ctx, func(doc *document) error {
		for _, o := range doc.Orders {
			if filter.Status != "" && o.Status != string(filter.Status) {
				continue
			}
			out = append(out, o.toDomain())
		}
		slices.SortFunc(out, func(a, b domain.Order) int { return cmp.Compare(b.ID, a.ID) })
		return nil
	})
	return out, err
}

func (r *orderRepo) Update(ctx context.Context, id int64, changes domain.OrderChanges) (int64, error) {
	var n int64
	err := r.s.mutate(ctx, func(doc *document) error {
		i := slices.IndexFunc(doc.Orders, func(o orderRecord) bool { return o.ID == id })
		if i < 0 {
			return nil
		}
		if changes.Status != nil {
			doc.Orders[i].Status = string(*changes.Status)
		}
		doc.Orders[i].UpdatedAt = r.s.now()
		n = 1
		return nil
	})
	return n, err
}

func (r *orderRepo) Delete(ctx context.Context, id int64) (int64, error) {
	var n int64
	err := r.s.mutate(ctx, func(doc *document) error {
		before := len(doc.Orders)
		doc.Orders = slices.DeleteFunc(doc.Orders, func(o orderRecord) bool { return o.ID == id })
		n = int64(before - len(doc.Orders))
		return nil
	})
	return n, err
}
