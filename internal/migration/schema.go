package migration

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
)

// Schema identifies the migrations compiled into this binary.
type Schema struct {
	Version  uint
	Checksum string
}

func (s Schema) VersionString() string {
	return strconv.FormatUint(uint64(s.Version), 10)
}

// Embedded returns the highest embedded version and a checksum over every
// up migration, so an edited migration is detected even at the same version.
func Embedded() (Schema, error) {
	paths, err := fs.Glob(embeddedMigrations, migrationsDir+"/*.up.sql")
	if err != nil {
		return Schema{}, fmt.Errorf("list migrations: %w", err)
	}
	if len(paths) == 0 {
		return Schema{}, errors.New("no embedded migrations found")
	}
	sort.Strings(paths)

	hasher := sha256.New()
	var latest uint
	for _, p := range paths {
		name := path.Base(p)
		version, ok := parseMigrationVersion(name)
		if !ok {
			return Schema{}, fmt.Errorf("invalid migration filename: %s", name)
		}
		latest = max(latest, version)

		content, err := embeddedMigrations.ReadFile(p)
		if err != nil {
			return Schema{}, fmt.Errorf("read migration %s: %w", name, err)
		}
		_, _ = hasher.Write([]byte(name))
		_, _ = hasher.Write([]byte{0})
		_, _ = hasher.Write(content)
		_, _ = hasher.Write([]byte{0})
	}

	return Schema{Version: latest, Checksum: hex.EncodeToString(hasher.Sum(nil))}, nil
}

// parseMigrationVersion reads the numeric prefix of "000001_name.up.sql".
func parseMigrationVersion(name string) (uint, bool) {
	prefix, _, found := strings.Cut(name, "_")
	if !found {
		return 0, false
	}
	v, err := strconv.ParseUint(prefix, 10, 0)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}
