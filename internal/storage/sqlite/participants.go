package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmynk/splitroom/internal/models"
)

// AddParticipant adds a participant, or brings back one who left, and clears
// the room's expiry.
func (s *SQLiteStore) AddParticipant(ctx context.Context, roomID string, p models.Participant) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "UPDATE rooms SET expires_at = NULL WHERE id = ?", roomID)
		if err != nil {
			return fmt.Errorf("failed to clear room expiry: %w", err)
		}
		if err := requireAffected(res, "room "+roomID); err != nil {
			return err
		}
		return upsertParticipant(ctx, tx, roomID, p)
	})
}

func upsertParticipant(ctx context.Context, q querier, roomID string, p models.Participant) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO room_participants (room_id, user_id, display_name, is_guest, joined_at, has_submitted, photo_url, left_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, NULL)
		ON CONFLICT (room_id, user_id) DO UPDATE SET
			display_name = excluded.display_name,
			photo_url = excluded.photo_url,
			joined_at = excluded.joined_at,
			has_submitted = 0,
			left_at = NULL`,
		roomID, p.UserID, p.DisplayName, boolInt(p.IsGuest), p.JoinedAt, boolInt(p.HasSubmitted), nullString(p.PhotoURL),
	)
	if err != nil {
		return fmt.Errorf("failed to insert participant: %w", err)
	}
	return nil
}

// RemoveParticipant marks a participant as left and sets the room's expiry.
func (s *SQLiteStore) RemoveParticipant(ctx context.Context, roomID, userID string, leftAt int64, expiresAt *int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE room_participants SET left_at = ?, has_submitted = 0
			WHERE room_id = ? AND user_id = ? AND left_at IS NULL`,
			leftAt, roomID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to remove participant: %w", err)
		}
		if err := requireAffected(res, "participant "+userID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE rooms SET expires_at = ? WHERE id = ?", nullInt64(expiresAt), roomID); err != nil {
			return fmt.Errorf("failed to set room expiry: %w", err)
		}
		return nil
	})
}

// RenameParticipant changes a current participant's display name.
func (s *SQLiteStore) RenameParticipant(ctx context.Context, roomID, userID, displayName string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE room_participants SET display_name = ?
		WHERE room_id = ? AND user_id = ? AND left_at IS NULL`,
		displayName, roomID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to rename participant: %w", err)
	}
	return requireAffected(res, "participant "+userID)
}

// SetSubmitted changes a current participant's submission flag.
func (s *SQLiteStore) SetSubmitted(ctx context.Context, roomID, userID string, submitted bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE room_participants SET has_submitted = ?
		WHERE room_id = ? AND user_id = ? AND left_at IS NULL`,
		boolInt(submitted), roomID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to set submission: %w", err)
	}
	return requireAffected(res, "participant "+userID)
}

// loadParticipants fills current and left participants in join order.
func (s *SQLiteStore) loadParticipants(ctx context.Context, room *models.Room) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, display_name, is_guest, joined_at, has_submitted, photo_url, left_at
		FROM room_participants WHERE room_id = ?
		ORDER BY joined_at, rowid`,
		room.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	room.Participants = []models.Participant{}
	for rows.Next() {
		var p models.Participant
		var photo sql.NullString
		var leftAt sql.NullInt64
		if err := rows.Scan(&p.UserID, &p.DisplayName, &p.IsGuest, &p.JoinedAt, &p.HasSubmitted, &photo, &leftAt); err != nil {
			return fmt.Errorf("failed to scan participant: %w", err)
		}
		p.PhotoURL = stringPtr(photo)
		if leftAt.Valid {
			room.LeftParticipants = append(room.LeftParticipants, p)
		} else {
			room.Participants = append(room.Participants, p)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate participants: %w", err)
	}
	return nil
}
