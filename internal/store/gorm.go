package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// documentRow is one document of any collection in the shared "documents" table.
type documentRow struct {
	Collection string    `gorm:"type:varchar(64);primaryKey"`
	ID         string    `gorm:"type:varchar(64);primaryKey"`
	Data       string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"index"`
	UpdatedAt  time.Time
}

func (documentRow) TableName() string {
	return "documents"
}

// GormBackend keeps documents as JSON text in a relational table (PostgreSQL or MySQL).
type GormBackend struct {
	db *gorm.DB
}

func NewGormBackend(db *gorm.DB) (*GormBackend, error) {
	if err := db.AutoMigrate(&documentRow{}); err != nil {
		return nil, errors.Wrapf(ErrRemoteUnavailable, "migrate documents: %v", err)
	}
	return &GormBackend{db: db}, nil
}

func (b *GormBackend) Collection(name string) Collection {
	return &gormCollection{db: b.db, name: name}
}

func (b *GormBackend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type gormCollection struct {
	db   *gorm.DB
	name string
}

func (c *gormCollection) Name() string { return c.name }

func (c *gormCollection) List(ctx context.Context) ([]Record, error) {
	var rows []documentRow
	if err := c.db.WithContext(ctx).Where("collection = ?", c.name).Find(&rows).Error; err != nil {
		return nil, c.wrap("list", err)
	}
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		if doc, ok := decodeListed(c.name, row.ID, []byte(row.Data)); ok {
			records = append(records, Record{ID: row.ID, Fields: doc})
		}
	}
	return records, nil
}

func (c *gormCollection) Get(ctx context.Context, id string) (Record, error) {
	var row documentRow
	err := c.db.WithContext(ctx).First(&row, "collection = ? AND id = ?", c.name, id).Error
	if err != nil {
		return Record{}, c.wrap("get", err)
	}
	doc, err := decodeDocument([]byte(row.Data))
	if err != nil {
		return Record{}, c.wrap("get", err)
	}
	return Record{ID: row.ID, Fields: doc}, nil
}

func (c *gormCollection) Create(ctx context.Context, fields Document) (Record, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return Record{}, errors.Wrapf(ErrValidationRejected, "encode %s: %v", c.name, err)
	}
	row := documentRow{Collection: c.name, ID: uuid.NewString(), Data: string(raw)}
	if err := c.db.WithContext(ctx).Create(&row).Error; err != nil {
		return Record{}, c.wrap("create", err)
	}
	return Record{ID: row.ID, Fields: fields.Clone()}, nil
}

func (c *gormCollection) Set(ctx context.Context, id string, fields Document) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return errors.Wrapf(ErrValidationRejected, "encode %s/%s: %v", c.name, id, err)
	}
	row := documentRow{Collection: c.name, ID: id, Data: string(raw)}
	err = c.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "collection"}, {Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).
		Create(&row).Error
	return c.wrap("set", err)
}

func (c *gormCollection) Update(ctx context.Context, id string, fields Document) error {
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row documentRow
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&row, "collection = ? AND id = ?", c.name, id).Error; err != nil {
			return err
		}
		doc, err := decodeDocument([]byte(row.Data))
		if err != nil {
			return err
		}
		raw, err := json.Marshal(doc.Merge(fields))
		if err != nil {
			return err
		}
		return tx.Model(&documentRow{}).
			Where("collection = ? AND id = ?", c.name, id).
			Updates(map[string]interface{}{"data": string(raw), "updated_at": time.Now()}).Error
	})
	return c.wrap("update", err)
}

func (c *gormCollection) Delete(ctx context.Context, id string) error {
	res := c.db.WithContext(ctx).Delete(&documentRow{}, "collection = ? AND id = ?", c.name, id)
	if res.Error != nil {
		return c.wrap("delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *gormCollection) wrap(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrInvalidData):
		return errors.Wrapf(ErrValidationRejected, "%s %s: %v", op, c.name, err)
	default:
		return errors.Wrapf(ErrRemoteUnavailable, "%s %s: %v", op, c.name, err)
	}
}
