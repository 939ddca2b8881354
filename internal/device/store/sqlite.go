package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	// Driver SQLite del dispositivo.
	_ "github.com/mattn/go-sqlite3"
)

var _ LocalStore = (*SQLiteStore)(nil)

// SQLiteStore implementación durable del LocalStore sobre una tabla
// clave-valor. WAL habilitado para que las lecturas de la UI no bloqueen
// las escrituras del flujo de sync.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite abre (o crea) la base local del dispositivo.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if !strings.Contains(path, "?") {
		path += "?_journal_mode=WAL&_busy_timeout=5000"
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("abrir sqlite: %w", err)
	}
	// Un solo escritor: el flujo de sync del dispositivo.
	db.SetMaxOpenConns(1)

	const schema = `
		CREATE TABLE IF NOT EXISTS device_kv (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("crear esquema local: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close cierra la base local.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load lee y decodifica el valor de una clave. false si no existe.
func (s *SQLiteStore) Load(key string, out any) (bool, error) {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM device_kv WHERE key = ?`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("leer clave %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("decodificar clave %s: %w", key, err)
	}
	return true, nil
}

// Save serializa y guarda el valor bajo la clave (upsert).
func (s *SQLiteStore) Save(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("serializar clave %s: %w", key, err)
	}
	_, err = s.db.Exec(`
		INSERT INTO device_kv (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`, key, string(raw))
	if err != nil {
		return fmt.Errorf("guardar clave %s: %w", key, err)
	}
	return nil
}

// Remove borra las claves en una sola transacción (todo-o-nada por negocio).
func (s *SQLiteStore) Remove(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, k := range keys {
		if _, err := tx.Exec(`DELETE FROM device_kv WHERE key = ?`, k); err != nil {
			return fmt.Errorf("borrar clave %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
