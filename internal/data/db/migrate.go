package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/havenapp/haven-backend/internal/domain"
)

// AutoMigrateAll creates or updates every table, then applies the DDL that
// gorm tags cannot express. Safe to run at every startup.
func AutoMigrateAll(db *gorm.DB) error {
	err := db.AutoMigrate(

		// Identity + auth
		&types.User{},
		&types.UserToken{},

		// Messaging
		&types.ChatInvitation{},
		&types.Conversation{},
		&types.ConversationDeletedBy{},
		&types.Message{},

		// Location alerts
		&types.Contact{},
		&types.LocationAlert{},
		&types.LocationSnapshot{},

		// Job postings + resource library
		&types.JobPost{},
		&types.LibraryModule{},
	)
	if err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}

	// One ACTIVE alert per ordered (sender, receiver) pair. The service layer
	// deactivates-then-inserts in a single transaction; this index is the
	// schema-level backstop.
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_location_alert_active_pair
		ON "location_alert" ("sender_id", "receiver_id")
		WHERE status = 'active'
	`).Error; err != nil {
		return fmt.Errorf("failed to create idx_location_alert_active_pair: %w", err)
	}

	fks := []struct {
		table      string
		constraint string
		ddl        string
	}{
		{"user_token", "fk_user_token_user_id",
			`FOREIGN KEY ("user_id") REFERENCES "user"("id") ON DELETE CASCADE`},
		{"chat_invitation", "fk_chat_invitation_sender_id",
			`FOREIGN KEY ("sender_id") REFERENCES "user"("id") ON DELETE CASCADE`},
		{"chat_invitation", "fk_chat_invitation_receiver_id",
			`FOREIGN KEY ("receiver_id") REFERENCES "user"("id") ON DELETE CASCADE`},
		{"conversation", "fk_conversation_user1_id",
			`FOREIGN KEY ("user1_id") REFERENCES "user"("id") ON DELETE CASCADE`},
		{"conversation", "fk_conversation_user2_id",
			`FOREIGN KEY ("user2_id") REFERENCES "user"("id") ON DELETE CASCADE`},
		{"conversation_deleted_by", "fk_conversation_deleted_by_conversation_id",
			`FOREIGN KEY ("conversation_id") REFERENCES "conversation"("id") ON DELETE CASCADE`},
		{"message", "fk_message_conversation_id",
			`FOREIGN KEY ("conversation_id") REFERENCES "conversation"("id") ON DELETE CASCADE`},
		{"contact", "fk_contact_user_id",
			`FOREIGN KEY ("user_id") REFERENCES "user"("id") ON DELETE CASCADE`},
		{"contact", "fk_contact_contact_user_id",
			`FOREIGN KEY ("contact_user_id") REFERENCES "user"("id") ON DELETE CASCADE`},
		{"location_alert", "fk_location_alert_sender_id",
			`FOREIGN KEY ("sender_id") REFERENCES "user"("id") ON DELETE CASCADE`},
		{"location_alert", "fk_location_alert_receiver_id",
			`FOREIGN KEY ("receiver_id") REFERENCES "user"("id") ON DELETE CASCADE`},
		{"location_snapshot", "fk_location_snapshot_user_id",
			`FOREIGN KEY ("user_id") REFERENCES "user"("id") ON DELETE CASCADE`},
	}
	for _, fk := range fks {
		if err := addConstraint(db, fk.table, fk.constraint, fk.ddl); err != nil {
			return err
		}
	}
	return nil
}

// addConstraint is an idempotent ADD CONSTRAINT: Postgres has no
// IF NOT EXISTS form for table constraints, so duplicates are swallowed.
func addConstraint(db *gorm.DB, table, constraint, ddl string) error {
	stmt := fmt.Sprintf(`
		DO $$ BEGIN
			ALTER TABLE %q ADD CONSTRAINT %q %s;
		EXCEPTION WHEN duplicate_object THEN NULL;
		END $$;
	`, table, constraint, ddl)
	if err := db.Exec(stmt).Error; err != nil {
		return fmt.Errorf("failed to add %s: %w", constraint, err)
	}
	return nil
}
