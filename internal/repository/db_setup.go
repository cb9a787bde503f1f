package repository

import (
	"database/sql"
	"log"

	"tasktracker/pkg/password"
)

func CreateTableIfNotExists(db *sql.DB) {
	query := `
CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    email VARCHAR(255) NOT NULL UNIQUE,
    password VARCHAR(255) NOT NULL,
    role VARCHAR(255) NOT NULL DEFAULT 'user',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS categories (
    id SERIAL PRIMARY KEY,
    name VARCHAR(255) NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
    id SERIAL PRIMARY KEY,
    user_id INT NOT NULL REFERENCES users (id),
    title VARCHAR(255) NOT NULL,
    description TEXT,
    category_id INT REFERENCES categories (id) ON DELETE SET NULL,
    due_date DATE NOT NULL,
    status VARCHAR(255) NOT NULL DEFAULT 'Todo',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	if _, err := db.Exec(query); err != nil {
		log.Fatalf("Error creating tables: %v", err)
	}
}

// CreateAdminUser seeds a default administrator. Intended for fresh
// deployments; the insert fails harmlessly if the email already exists.
func CreateAdminUser(db *sql.DB, email, plainPassword string) error {
	hashed, err := password.Hash(plainPassword)
	if err != nil {
		return err
	}
	_, err = db.Exec(
		"INSERT INTO users (name, email, password, role) VALUES ($1, $2, $3, 'admin')",
		"admin", email, hashed)
	return err
}

func DeleteAllTables(db *sql.DB) {
	query := `
    DROP TABLE IF EXISTS tasks;
    DROP TABLE IF EXISTS categories;
    DROP TABLE IF EXISTS users;
    `
	if _, err := db.Exec(query); err != nil {
		log.Fatalf("Error deleting tables: %v", err)
	}
}
