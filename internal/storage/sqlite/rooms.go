package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitroom/internal/models"
	"github.com/mmynk/splitroom/internal/storage"
)

const roomColumns = "id, code, name, created_at, created_by, status, currency, service_tax_rate, expires_at"

// CreateRoom persists a new room with its tax profiles and participants.
func (s *SQLiteStore) CreateRoom(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.New().String()
	}
	if room.CreatedAt == 0 {
		room.CreatedAt = time.Now().Unix()
	}
	if room.Status == "" {
		room.Status = models.RoomStatusActive
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO rooms ("+roomColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
			room.ID, room.Code, room.Name, room.CreatedAt, room.CreatedBy, string(room.Status),
			room.Currency, room.ServiceTaxRate, nullInt64(room.ExpiresAt),
		)
		if isUniqueViolation(err) {
			return fmt.Errorf("room code %s: %w", room.Code, storage.ErrConflict)
		}
		if err != nil {
			return fmt.Errorf("failed to insert room: %w", err)
		}

		if err := insertTaxProfiles(ctx, tx, room.ID, room.TaxProfiles); err != nil {
			return err
		}

		for _, p := range room.Participants {
			if err := upsertParticipant(ctx, tx, room.ID, p); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetRoom retrieves a room snapshot by ID, including profiles and participants.
func (s *SQLiteStore) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+roomColumns+" FROM rooms WHERE id = ?", roomID)
	return s.loadRoom(ctx, row, "room "+roomID)
}

// GetRoomByCode retrieves a room snapshot by its join code.
func (s *SQLiteStore) GetRoomByCode(ctx context.Context, code string) (*models.Room, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+roomColumns+" FROM rooms WHERE code = ?", code)
	return s.loadRoom(ctx, row, "room code "+code)
}

// ListRoomsForUser returns rooms the user is in or has left, most recent first.
func (s *SQLiteStore) ListRoomsForUser(ctx context.Context, userID string) ([]*models.Room, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id FROM rooms r
		JOIN room_participants p ON p.room_id = r.id
		WHERE p.user_id = ?
		ORDER BY r.created_at DESC, r.rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan room id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rooms: %w", err)
	}

	rooms := make([]*models.Room, 0, len(ids))
	for _, id := range ids {
		room, err := s.GetRoom(ctx, id)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

// DeleteRoom removes a room; items, selections, profiles and participants cascade.
func (s *SQLiteStore) DeleteRoom(ctx context.Context, roomID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM rooms WHERE id = ?", roomID)
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	return requireAffected(res, "room "+roomID)
}

// DeleteExpiredRooms removes rooms whose expiry has passed.
func (s *SQLiteStore) DeleteExpiredRooms(ctx context.Context, now int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM rooms WHERE expires_at IS NOT NULL AND expires_at <= ?", now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired rooms: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}

// SetRoomState changes status and expiry together.
func (s *SQLiteStore) SetRoomState(ctx context.Context, roomID string, status models.RoomStatus, expiresAt *int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE rooms SET status = ?, expires_at = ? WHERE id = ?",
		string(status), nullInt64(expiresAt), roomID,
	)
	if err != nil {
		return fmt.Errorf("failed to update room state: %w", err)
	}
	return requireAffected(res, "room "+roomID)
}

// SetServiceTaxRate changes the room-wide service charge percentage.
func (s *SQLiteStore) SetServiceTaxRate(ctx context.Context, roomID string, rate float64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE rooms SET service_tax_rate = ? WHERE id = ?", rate, roomID)
	if err != nil {
		return fmt.Errorf("failed to update service tax rate: %w", err)
	}
	return requireAffected(res, "room "+roomID)
}

// ReplaceTaxProfiles atomically replaces the room's ordered profile set.
// Items referencing a removed profile keep the dangling id.
func (s *SQLiteStore) ReplaceTaxProfiles(ctx context.Context, roomID string, profiles []models.TaxProfile) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM rooms WHERE id = ?", roomID).Scan(&exists)
		if err != nil {
			return notFound(err, "room "+roomID)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM tax_profiles WHERE room_id = ?", roomID); err != nil {
			return fmt.Errorf("failed to clear tax profiles: %w", err)
		}
		return insertTaxProfiles(ctx, tx, roomID, profiles)
	})
}

func insertTaxProfiles(ctx context.Context, q querier, roomID string, profiles []models.TaxProfile) error {
	for i, p := range profiles {
		_, err := q.ExecContext(ctx, `
			INSERT INTO tax_profiles (room_id, id, position, name, rate, is_global, is_double, icon)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			roomID, p.ID, i, p.Name, p.Rate, boolInt(p.IsGlobal), boolInt(p.IsDouble), p.Icon,
		)
		if err != nil {
			return fmt.Errorf("failed to insert tax profile: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) loadRoom(ctx context.Context, row *sql.Row, what string) (*models.Room, error) {
	room := &models.Room{}
	var status string
	var expiresAt sql.NullInt64
	err := row.Scan(&room.ID, &room.Code, &room.Name, &room.CreatedAt, &room.CreatedBy,
		&status, &room.Currency, &room.ServiceTaxRate, &expiresAt)
	if err != nil {
		return nil, notFound(err, what)
	}
	room.Status = models.RoomStatus(status)
	room.ExpiresAt = int64Ptr(expiresAt)

	if room.TaxProfiles, err = s.loadTaxProfiles(ctx, room.ID); err != nil {
		return nil, err
	}
	if err := s.loadParticipants(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *SQLiteStore) loadTaxProfiles(ctx context.Context, roomID string) ([]models.TaxProfile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, rate, is_global, is_double, icon
		FROM tax_profiles WHERE room_id = ? ORDER BY position`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get tax profiles: %w", err)
	}
	defer rows.Close()

	profiles := []models.TaxProfile{}
	for rows.Next() {
		var p models.TaxProfile
		if err := rows.Scan(&p.ID, &p.Name, &p.Rate, &p.IsGlobal, &p.IsDouble, &p.Icon); err != nil {
			return nil, fmt.Errorf("failed to scan tax profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tax profiles: %w", err)
	}
	return profiles, nil
}
