//go:build purego

package sqlstore

import (
	"fmt"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

const sqliteDriver = "sqlite"

func sqliteDSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
}
