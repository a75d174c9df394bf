package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitroom/internal/models"
)

// AddItem inserts a new item with its initial selections.
func (s *SQLiteStore) AddItem(ctx context.Context, item *models.BillItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.CreatedAt == 0 {
		item.CreatedAt = time.Now().Unix()
	}
	if item.Quantity == 0 {
		item.Quantity = 1
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM rooms WHERE id = ?", item.RoomID).Scan(&exists)
		if err != nil {
			return notFound(err, "room "+item.RoomID)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO items (id, room_id, name, price, quantity, added_by, tax_profile_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID, item.RoomID, item.Name, item.Price, item.Quantity, item.AddedBy,
			nullString(item.TaxProfileID), item.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}

		for _, userID := range item.SelectedBy {
			if _, err := tx.ExecContext(ctx,
				"INSERT OR IGNORE INTO item_selections (item_id, user_id) VALUES (?, ?)",
				item.ID, userID); err != nil {
				return fmt.Errorf("failed to insert selection: %w", err)
			}
		}
		return nil
	})
}

// GetItem retrieves one item of a room with its selections.
func (s *SQLiteStore) GetItem(ctx context.Context, roomID, itemID string) (*models.BillItem, error) {
	item := &models.BillItem{}
	var profileID sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, room_id, name, price, quantity, added_by, tax_profile_id, created_at
		FROM items WHERE id = ? AND room_id = ?`,
		itemID, roomID,
	).Scan(&item.ID, &item.RoomID, &item.Name, &item.Price, &item.Quantity, &item.AddedBy, &profileID, &item.CreatedAt)
	if err != nil {
		return nil, notFound(err, "item "+itemID)
	}
	item.TaxProfileID = stringPtr(profileID)

	selections, err := s.loadSelections(ctx, "SELECT item_id, user_id FROM item_selections WHERE item_id = ?", itemID)
	if err != nil {
		return nil, err
	}
	item.SelectedBy = selections[itemID]
	if item.SelectedBy == nil {
		item.SelectedBy = []string{}
	}
	return item, nil
}

// ListItems returns a room's items in creation order.
func (s *SQLiteStore) ListItems(ctx context.Context, roomID string) ([]models.BillItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, room_id, name, price, quantity, added_by, tax_profile_id, created_at
		FROM items WHERE room_id = ?
		ORDER BY created_at, rowid`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	items := []models.BillItem{}
	for rows.Next() {
		var item models.BillItem
		var profileID sql.NullString
		if err := rows.Scan(&item.ID, &item.RoomID, &item.Name, &item.Price, &item.Quantity,
			&item.AddedBy, &profileID, &item.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		item.TaxProfileID = stringPtr(profileID)
		items = append(items, item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	selections, err := s.loadSelections(ctx, `
		SELECT s.item_id, s.user_id FROM item_selections s
		JOIN items i ON i.id = s.item_id
		WHERE i.room_id = ?
		ORDER BY s.rowid`,
		roomID,
	)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].SelectedBy = selections[items[i].ID]
		if items[i].SelectedBy == nil {
			items[i].SelectedBy = []string{}
		}
	}
	return items, nil
}

func (s *SQLiteStore) loadSelections(ctx context.Context, query string, arg string) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to get selections: %w", err)
	}
	defer rows.Close()

	selections := make(map[string][]string)
	for rows.Next() {
		var itemID, userID string
		if err := rows.Scan(&itemID, &userID); err != nil {
			return nil, fmt.Errorf("failed to scan selection: %w", err)
		}
		selections[itemID] = append(selections[itemID], userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate selections: %w", err)
	}
	return selections, nil
}

// DeleteItem removes an item; its selections cascade.
func (s *SQLiteStore) DeleteItem(ctx context.Context, roomID, itemID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM items WHERE id = ? AND room_id = ?", itemID, roomID)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return requireAffected(res, "item "+itemID)
}

// ToggleSelection flips userID's membership in the item's selectors.
func (s *SQLiteStore) ToggleSelection(ctx context.Context, roomID, itemID, userID string) (bool, error) {
	var selected bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx,
			"SELECT 1 FROM items WHERE id = ? AND room_id = ?", itemID, roomID).Scan(&exists)
		if err != nil {
			return notFound(err, "item "+itemID)
		}

		res, err := tx.ExecContext(ctx,
			"DELETE FROM item_selections WHERE item_id = ? AND user_id = ?", itemID, userID)
		if err != nil {
			return fmt.Errorf("failed to remove selection: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if n > 0 {
			selected = false
			return nil
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO item_selections (item_id, user_id) VALUES (?, ?)", itemID, userID); err != nil {
			return fmt.Errorf("failed to add selection: %w", err)
		}
		selected = true
		return nil
	})
	return selected, err
}

// SetItemTaxProfile sets or clears the item's explicit tax profile.
func (s *SQLiteStore) SetItemTaxProfile(ctx context.Context, roomID, itemID string, profileID *string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE items SET tax_profile_id = ? WHERE id = ? AND room_id = ?",
		nullString(profileID), itemID, roomID,
	)
	if err != nil {
		return fmt.Errorf("failed to set item tax profile: %w", err)
	}
	return requireAffected(res, "item "+itemID)
}
