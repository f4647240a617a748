package command

import (
	"fmt"

	"github.com/gremlinsql/compiler/dialect"
)

// resolveDialect maps a config-file dialect name to a concrete dialect.Dialect.
func resolveDialect(name string) (dialect.Dialect, error) {
	switch name {
	case "", "postgres":
		return dialect.Postgres{}, nil
	case "mysql":
		return dialect.MySQL{}, nil
	case "sqlite":
		return dialect.SQLite{}, nil
	case "cockroach":
		return dialect.Cockroach{}, nil
	default:
		return nil, fmt.Errorf("gremlinsqlctl: unknown dialect %q", name)
	}
}
