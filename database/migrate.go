package database

import (
	"fmt"
	"log"
	"time"

	"tele-drive/model"

	"gorm.io/gorm"
)

// SchemaMigration applied migration bookkeeping row
type SchemaMigration struct {
	Version   int       `gorm:"primaryKey"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

// TableName specify table name
func (SchemaMigration) TableName() string {
	return "tb_schema_migration"
}

// migration one versioned schema step. Steps must be idempotent: legacy
// databases are brought forward by re-running the whole sequence.
type migration struct {
	version int
	name    string
	apply   func(tx *gorm.DB) error
}

var migrations = []migration{
	{
		version: 1,
		name:    "base schema",
		apply: func(tx *gorm.DB) error {
			return tx.AutoMigrate(
				&model.User{},
				&model.Folder{},
				&model.FileRecord{},
				&model.ScanSession{},
				&model.ShareLink{},
			)
		},
	},
	{
		version: 2,
		name:    "file origin lookup index",
		apply: func(tx *gorm.DB) error {
			m := tx.Migrator()
			if !m.HasIndex(&model.FileRecord{}, "idx_channel_message") {
				return m.CreateIndex(&model.FileRecord{}, "idx_channel_message")
			}
			return nil
		},
	},
	{
		version: 3,
		name:    "legacy columns: version tracking and metadata",
		apply: func(tx *gorm.DB) error {
			m := tx.Migrator()
			for _, col := range []string{"current_version", "version_count", "file_metadata"} {
				if !m.HasColumn(&model.FileRecord{}, col) {
					if err := m.AddColumn(&model.FileRecord{}, col); err != nil {
						return err
					}
				}
			}
			return nil
		},
	},
	{
		version: 4,
		name:    "scan plan columns on legacy sessions",
		apply: func(tx *gorm.DB) error {
			m := tx.Migrator()
			for _, col := range []string{"direction", "max_messages", "file_types", "min_size", "max_size", "extension_blocklist"} {
				if !m.HasColumn(&model.ScanSession{}, col) {
					if err := m.AddColumn(&model.ScanSession{}, col); err != nil {
						return err
					}
				}
			}
			return nil
		},
	},
	{
		version: 5,
		name:    "unique origin key",
		apply: func(tx *gorm.DB) error {
			// Rows with a known channel/message origin must be unique per
			// owner so concurrent scanners degrade to an update instead of
			// inserting duplicates. Rows with an unknown origin (0) stay
			// outside the constraint.
			m := tx.Migrator()
			if m.HasIndex(&model.FileRecord{}, "idx_owner_origin") {
				return nil
			}
			switch tx.Dialector.Name() {
			case "mysql":
				// No partial indexes in MySQL: a generated key that is NULL
				// for unknown origins keeps those rows out of the check.
				if !m.HasColumn(&model.FileRecord{}, "origin_key") {
					if err := tx.Exec(
						"ALTER TABLE tb_file_record ADD COLUMN origin_key VARCHAR(64) " +
							"GENERATED ALWAYS AS (IF(telegram_channel_id = 0 OR telegram_message_id = 0, NULL, " +
							"CONCAT(owner_id, ':', telegram_channel_id, ':', telegram_message_id))) STORED",
					).Error; err != nil {
						return err
					}
				}
				return tx.Exec("CREATE UNIQUE INDEX idx_owner_origin ON tb_file_record (origin_key)").Error
			default:
				return tx.Exec(
					"CREATE UNIQUE INDEX idx_owner_origin ON tb_file_record (owner_id, telegram_channel_id, telegram_message_id) " +
						"WHERE telegram_channel_id != 0 AND telegram_message_id != 0",
				).Error
			}
		},
	},
}

// migrate applies the versioned migration sequence at startup
func (g *GormDatabase) migrate() error {
	if err := g.db.AutoMigrate(&SchemaMigration{}); err != nil {
		return fmt.Errorf("failed to create migration table: %w", err)
	}

	for _, m := range migrations {
		var applied int64
		if err := g.db.Model(&SchemaMigration{}).Where("version = ?", m.version).Count(&applied).Error; err != nil {
			return err
		}
		if applied > 0 {
			continue
		}

		err := g.db.Transaction(func(tx *gorm.DB) error {
			if err := m.apply(tx); err != nil {
				return err
			}
			return tx.Create(&SchemaMigration{Version: m.version}).Error
		})
		if err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.name, err)
		}
		log.Printf("[database] applied migration %d: %s", m.version, m.name)
	}

	return nil
}
