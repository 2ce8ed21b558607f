// Package session writes portable session artifacts consumable by common
// MTProto client libraries.
package session

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"tele-drive/credential"
)

// sessionVersion schema version of the portable artifact
const sessionVersion = 7

// defaultPort MTProto TCP port shared by all production DCs
const defaultPort = 443

// dcAddresses well-known production DC addresses
var dcAddresses = map[int]string{
	1: "149.154.175.53",
	2: "149.154.167.51",
	3: "149.154.175.100",
	4: "149.154.167.91",
	5: "91.108.56.130",
}

// ErrUnknownDC the credential names a DC outside the well-known table
var ErrUnknownDC = errors.New("unknown data center id")

// Materialize writes a portable SQLite session artifact for cred at
// targetPath. The write goes to a temp file first and is renamed into place,
// so a failure leaves any prior artifact untouched. Output is byte-stable for
// a fixed credential.
func Materialize(cred *credential.AccountCredential, targetPath string) error {
	if err := cred.Validate(); err != nil {
		return fmt.Errorf("invalid credential: %w", err)
	}
	addr, ok := dcAddresses[cred.PrimaryDCID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownDC, cred.PrimaryDCID)
	}

	if err := os.MkdirAll(filepath.Dir(targetPath), 0o700); err != nil {
		return err
	}

	tmpPath := targetPath + ".tmp"
	if err := writeArtifact(tmpPath, cred.PrimaryDCID, addr, cred.PrimaryKey()); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, targetPath); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

func writeArtifact(path string, dcID int, addr string, authKey []byte) error {
	os.Remove(path)

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer db.Close()

	schema := []string{
		`CREATE TABLE version (version INTEGER PRIMARY KEY)`,
		`CREATE TABLE sessions (
			dc_id INTEGER PRIMARY KEY,
			server_address TEXT,
			port INTEGER,
			auth_key BLOB,
			takeout_id INTEGER
		)`,
		`CREATE TABLE entities (
			id INTEGER PRIMARY KEY,
			hash INTEGER NOT NULL,
			username TEXT,
			phone INTEGER,
			name TEXT,
			date INTEGER
		)`,
		`CREATE TABLE sent_files (
			md5_digest BLOB,
			file_size INTEGER,
			type INTEGER,
			id INTEGER,
			hash INTEGER,
			PRIMARY KEY(md5_digest, file_size, type)
		)`,
		`CREATE TABLE update_state (
			id INTEGER PRIMARY KEY,
			pts INTEGER,
			qts INTEGER,
			date INTEGER,
			seq INTEGER
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	if _, err := db.Exec(`INSERT INTO version (version) VALUES (?)`, sessionVersion); err != nil {
		return err
	}
	if _, err := db.Exec(
		`INSERT INTO sessions (dc_id, server_address, port, auth_key, takeout_id) VALUES (?, ?, ?, ?, NULL)`,
		dcID, addr, defaultPort, authKey,
	); err != nil {
		return err
	}
	return nil
}
