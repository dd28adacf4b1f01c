package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateModels, downCreateModels)
}

func upCreateModels(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS users (
    %s,
    email             %s NOT NULL UNIQUE,
    name              TEXT NOT NULL,
    age               INTEGER NOT NULL,
    job               TEXT NOT NULL,
    favourite_colour  %s NOT NULL,
    created_at        DATE NOT NULL,
    last_logged_in_at %s NULL
)`, autoIncrementPK(), varchar(255), varchar(16), dateTimeType()),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS posts (
    %s,
    title        TEXT NOT NULL,
    content      TEXT NOT NULL,
    author_id    INTEGER NOT NULL,
    published_at %s NULL,
    created_at   %s NOT NULL,
    FOREIGN KEY (author_id) REFERENCES users(id) ON DELETE CASCADE
)`, autoIncrementPK(), dateTimeType(), dateTimeType()),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS accounts (
    id      %s PRIMARY KEY,
    user_id INTEGER NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
)`, varchar(36)),

		`CREATE INDEX posts_author_id_idx ON posts (author_id)`,
		`CREATE INDEX accounts_user_id_idx ON accounts (user_id)`,
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create models: %w", err)
		}
	}
	return nil
}

func downCreateModels(ctx context.Context, tx *sql.Tx) error {
	for _, table := range []string{"accounts", "posts", "users"} {
		if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS `+table); err != nil {
			return err
		}
	}
	return nil
}
