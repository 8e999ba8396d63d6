package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
//
// Claims carry no foreign keys to items or users: claim history must stay
// readable when the referenced rows are gone.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    display_name  TEXT,
    email         TEXT,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'moderator', 'user')),
    claims_count  INTEGER NOT NULL DEFAULT 0 CHECK (claims_count >= 0),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS items (
    id          INTEGER PRIMARY KEY,
    name        TEXT NOT NULL,
    category    TEXT,
    description TEXT,
    location    TEXT,
    image_url   TEXT,
    status      TEXT NOT NULL DEFAULT 'found' CHECK (status IN ('lost', 'found', 'claimed', 'returned')),
    reported_by INTEGER NOT NULL REFERENCES users(id),
    reported_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    claim_count INTEGER NOT NULL DEFAULT 0 CHECK (claim_count >= 0),
    returned_to INTEGER,
    returned_at DATETIME,
    updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at  DATETIME
);

CREATE INDEX IF NOT EXISTS idx_items_reported_by ON items(reported_by);

CREATE TABLE IF NOT EXISTS claims (
    id                        INTEGER PRIMARY KEY,
    item_id                   INTEGER NOT NULL,
    claimant_id               INTEGER NOT NULL,
    description               TEXT NOT NULL DEFAULT '',
    identifying_features      TEXT,
    proof_of_ownership        TEXT,
    date_last_seen            TEXT,
    location_last_seen        TEXT,
    additional_info           TEXT,
    status                    TEXT NOT NULL DEFAULT 'pending'
        CHECK (status IN ('pending', 'pending_more_info', 'approved', 'rejected', 'flagged')),
    verification_status       TEXT NOT NULL DEFAULT 'not_started'
        CHECK (verification_status IN ('not_started', 'questions_sent', 'answers_submitted')),
    verification_questions    TEXT NOT NULL DEFAULT '[]',
    verification_answers      TEXT NOT NULL DEFAULT '[]',
    more_info_request_message TEXT,
    more_info_requested_at    DATETIME,
    more_info_response        TEXT,
    more_info_responded_at    DATETIME,
    status_notes              TEXT,
    resolution_notes          TEXT,
    flags                     TEXT NOT NULL DEFAULT '[]',
    flagged_by                INTEGER,
    flagged_at                DATETIME,
    resolved_by               INTEGER,
    resolved_at               DATETIME,
    created_at                DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at                DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_claims_item ON claims(item_id);
CREATE INDEX IF NOT EXISTS idx_claims_claimant ON claims(claimant_id);
CREATE INDEX IF NOT EXISTS idx_claims_status ON claims(status);

CREATE TABLE IF NOT EXISTS audit_logs (
    id           INTEGER PRIMARY KEY,
    action       TEXT NOT NULL CHECK (action IN ('resolve_dispute', 'flag_claim')),
    details      TEXT NOT NULL,
    performed_by INTEGER NOT NULL,
    timestamp    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_audit_logs_timestamp ON audit_logs(timestamp);

CREATE TABLE IF NOT EXISTS notifications (
    id               INTEGER PRIMARY KEY,
    user_id          INTEGER NOT NULL,
    type             TEXT NOT NULL,
    title            TEXT NOT NULL,
    message          TEXT NOT NULL,
    related_item_id  INTEGER,
    related_claim_id INTEGER,
    response_details TEXT,
    is_read          INTEGER NOT NULL DEFAULT 0,
    created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    read_at          DATETIME
);

CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at);

CREATE TABLE IF NOT EXISTS notification_preferences (
    user_id                  INTEGER PRIMARY KEY,
    email_notifications      INTEGER NOT NULL DEFAULT 1,
    push_notifications       INTEGER NOT NULL DEFAULT 0,
    notify_on_new_claims     INTEGER NOT NULL DEFAULT 1,
    notify_on_claim_updates  INTEGER NOT NULL DEFAULT 1,
    notify_on_messages       INTEGER NOT NULL DEFAULT 1,
    notify_on_system_updates INTEGER NOT NULL DEFAULT 0,
    email_frequency          TEXT NOT NULL DEFAULT 'immediate' CHECK (email_frequency IN ('immediate', 'daily', 'weekly')),
    created_at               DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at               DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
