package engine

import (
	"context"
	"slices"

	"github.com/wabdoteth/sappy-care/internal/storage"
)

type PurchaseResult struct {
	UserItem  storage.UserItem
	Companion storage.Companion
	// AlreadyOwned is true when the item was owned before; no petals were spent.
	AlreadyOwned bool
}

// PurchaseItem spends petals on a shop item and adds it to the inventory.
func (s *Service) PurchaseItem(ctx context.Context, itemID string) (*PurchaseResult, error) {
	var out *PurchaseResult
	err := s.store.Atomic(ctx, func(r storage.Repos) error {
		c, err := requireCompanion(ctx, r)
		if err != nil {
			return err
		}
		item, err := r.Shop.GetItem(ctx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return NotFoundError{Entity: "item", ID: itemID}
		}

		owned, err := ownedItem(ctx, r, item.ID)
		if err != nil {
			return err
		}
		if owned != nil {
			out = &PurchaseResult{UserItem: *owned, Companion: *c, AlreadyOwned: true}
			return nil
		}

		if c.PetalsBalance < item.PricePetals {
			return FundsError{Balance: c.PetalsBalance, Price: item.PricePetals}
		}

		_, err = r.Rewards.AddLedgerEntry(ctx, storage.LedgerEntryInput{
			LocalDate:   s.Today(),
			EventType:   "purchase",
			SourceType:  "item",
			SourceID:    item.ID,
			PetalsDelta: -item.PricePetals,
		})
		if err != nil {
			return err
		}
		petals := c.PetalsBalance - item.PricePetals
		updated, err := r.Companion.UpdateCompanion(ctx, c.ID, storage.CompanionUpdate{PetalsBalance: &petals})
		if err != nil {
			return err
		}
		ui, err := r.Shop.AddUserItem(ctx, item.ID, storage.JSONMap{"source": "shop"})
		if err != nil {
			return err
		}
		s.log.Info("item purchased", "item", item.ID, "price", item.PricePetals, "petals", updated.PetalsBalance)
		out = &PurchaseResult{UserItem: *ui, Companion: *updated}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func ownedItem(ctx context.Context, r storage.Repos, itemID string) (*storage.UserItem, error) {
	inv, err := r.Shop.ListInventory(ctx)
	if err != nil {
		return nil, err
	}
	for _, ui := range inv {
		if ui.ItemID == itemID {
			return &ui, nil
		}
	}
	return nil, nil
}

type ShopEntry struct {
	Item       storage.Item
	Owned      bool
	Affordable bool
	Equipped   bool
}

// ShopListing returns every item with ownership and affordability for the companion.
func (s *Service) ShopListing(ctx context.Context) ([]ShopEntry, error) {
	r := s.store.Repos()
	c, err := requireCompanion(ctx, r)
	if err != nil {
		return nil, err
	}
	items, err := r.Shop.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	inv, err := r.Shop.ListInventory(ctx)
	if err != nil {
		return nil, err
	}
	owned := map[string]bool{}
	for _, ui := range inv {
		owned[ui.ItemID] = true
	}

	out := make([]ShopEntry, 0, len(items))
	for _, it := range items {
		out = append(out, ShopEntry{
			Item:       it,
			Owned:      owned[it.ID],
			Affordable: c.PetalsBalance >= it.PricePetals,
			Equipped:   slices.Contains(c.EquippedItemIDs, it.ID),
		})
	}
	return out, nil
}

type InventoryEntry struct {
	UserItem storage.UserItem
	Item     storage.Item
	Equipped bool
}

// Inventory lists owned items in acquisition order.
func (s *Service) Inventory(ctx context.Context) ([]InventoryEntry, error) {
	r := s.store.Repos()
	c, err := r.Companion.GetCompanion(ctx)
	if err != nil {
		return nil, err
	}
	inv, err := r.Shop.ListInventory(ctx)
	if err != nil {
		return nil, err
	}
	items, err := r.Shop.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	byID := map[string]storage.Item{}
	for _, it := range items {
		byID[it.ID] = it
	}

	out := make([]InventoryEntry, 0, len(inv))
	for _, ui := range inv {
		e := InventoryEntry{UserItem: ui, Item: byID[ui.ItemID]}
		if c != nil {
			e.Equipped = slices.Contains(c.EquippedItemIDs, ui.ItemID)
		}
		out = append(out, e)
	}
	return out, nil
}

// Equip adds an owned item to the companion's equipped list.
func (s *Service) Equip(ctx context.Context, itemID string) (*storage.Companion, error) {
	return s.setEquipped(ctx, itemID, true)
}

// Unequip removes an item from the equipped list. Unequipping an item that is
// not equipped is a no-op.
func (s *Service) Unequip(ctx context.Context, itemID string) (*storage.Companion, error) {
	return s.setEquipped(ctx, itemID, false)
}

// ToggleEquip flips whether an owned item is equipped.
func (s *Service) ToggleEquip(ctx context.Context, itemID string) (*storage.Companion, error) {
	c, err := s.Companion(ctx)
	if err != nil {
		return nil, err
	}
	return s.setEquipped(ctx, itemID, !slices.Contains(c.EquippedItemIDs, itemID))
}

func (s *Service) setEquipped(ctx context.Context, itemID string, equip bool) (*storage.Companion, error) {
	var out *storage.Companion
	err := s.store.Atomic(ctx, func(r storage.Repos) error {
		c, err := requireCompanion(ctx, r)
		if err != nil {
			return err
		}
		has := slices.Contains(c.EquippedItemIDs, itemID)
		if equip == has {
			out = c
			return nil
		}

		var ids []string
		if equip {
			owned, err := ownedItem(ctx, r, itemID)
			if err != nil {
				return err
			}
			if owned == nil {
				return NotFoundError{Entity: "owned item", ID: itemID}
			}
			ids = append(slices.Clone(c.EquippedItemIDs), itemID)
		} else {
			ids = slices.DeleteFunc(slices.Clone(c.EquippedItemIDs), func(id string) bool { return id == itemID })
		}
		if ids == nil {
			ids = []string{}
		}
		out, err = r.Companion.UpdateCompanion(ctx, c.ID, storage.CompanionUpdate{EquippedItemIDs: ids})
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
