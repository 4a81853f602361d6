// Package bootstrap guards startup against a database that the migrate
// command has not brought up to this binary's schema.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/railzwaylabs/billinghub/internal/migration"
	"gorm.io/gorm"
)

var (
	ErrSchemaInactive         = errors.New("schema_inactive")
	ErrSchemaVersionMismatch  = errors.New("schema_version_mismatch")
	ErrSchemaChecksumMismatch = errors.New("schema_checksum_mismatch")
)

type SchemaGate interface {
	MustBeActive(ctx context.Context) error
}

type schemaGate struct {
	db   *gorm.DB
	want migration.Schema
}

// openGate is used for embedded databases, which are migrated in-process
// on every start.
type openGate struct{}

func (openGate) MustBeActive(context.Context) error { return nil }

func NewSchemaGate(db *gorm.DB) (SchemaGate, error) {
	if db == nil {
		return nil, errors.New("schema gate requires database handle")
	}
	if db.Dialector.Name() != "postgres" {
		return openGate{}, nil
	}

	want, err := migration.Embedded()
	if err != nil {
		return nil, err
	}
	return &schemaGate{db: db, want: want}, nil
}

func (g *schemaGate) MustBeActive(ctx context.Context) error {
	state, err := migration.LoadState(ctx, g.db)
	if err != nil {
		if errors.Is(err, migration.ErrStateNotFound) {
			return fmt.Errorf("%w: run billinghub migrate", err)
		}
		return err
	}

	if state.Status != migration.StatusActive {
		return fmt.Errorf("%w: status=%s", ErrSchemaInactive, state.Status)
	}
	if state.SchemaVersion != g.want.VersionString() {
		return fmt.Errorf("%w: database=%s binary=%s", ErrSchemaVersionMismatch, state.SchemaVersion, g.want.VersionString())
	}
	// Rows activated before checksums were recorded only need the version.
	if state.Checksum != nil && *state.Checksum != g.want.Checksum {
		return fmt.Errorf("%w: database=%s binary=%s", ErrSchemaChecksumMismatch, *state.Checksum, g.want.Checksum)
	}
	return nil
}
