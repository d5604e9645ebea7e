package corestore

// migration.go implements the schema-version step of Open.
//
// The step runs between journal replay and the handle becoming reachable:
// validate the stored version against the requested one, invoke the
// migration callback at most once inside a write transaction, stamp the
// new version, and only then hand the store to the caller. A failure
// leaves the store at its prior version with no handle created.

// Migration gives a migration callback transactional access to the store
// mid-upgrade.
type Migration struct {
	tx *Tx

	// OldVersion is the stamped version being migrated from;
	// SchemaVersionUnset for a store that was never stamped.
	OldVersion uint64

	// NewVersion is the version being migrated to.
	NewVersion uint64
}

// Tx returns the write transaction the migration runs in. The callback
// must not commit or cancel it; the open sequence does.
func (m *Migration) Tx() *Tx {
	return m.tx
}

// runMigrationStep brings the store's stamped schema version to the
// requested one. Config.SchemaVersion zero means the caller did not
// request a version and the store stays (or remains) unstamped.
func (s *Store) runMigrationStep() error {
	requested := s.cfg.SchemaVersion
	if requested == 0 || requested == s.readGen.schemaVersion {
		return nil
	}

	tx, err := s.BeginWrite()
	if err != nil {
		return err
	}

	// Re-read under the write lock: another process may have migrated
	// between replay and here.
	stored := tx.ws.gen.schemaVersion
	switch {
	case stored == requested:
		tx.Cancel()
		return nil
	case stored != SchemaVersionUnset && stored > requested:
		tx.Cancel()
		return ErrMigrationRequired
	}

	// A never-stamped, empty store is stamped silently; anything with
	// contents or a prior version needs the callback.
	if stored != SchemaVersionUnset || !tx.ws.gen.empty() {
		if s.cfg.Migration == nil {
			tx.Cancel()
			return ErrMigrationRequired
		}
		s.shared.log.Infof("[migrate] %s: migrating schema version %d -> %d", s.shared.path, stored, requested)
		m := &Migration{tx: tx, OldVersion: stored, NewVersion: requested}
		if err := s.cfg.Migration(m, stored); err != nil {
			tx.Cancel()
			return err
		}
	}

	if err := tx.push(op{kind: opSetSchemaVersion, ver: requested}); err != nil {
		tx.Cancel()
		return err
	}
	return tx.Commit()
}
