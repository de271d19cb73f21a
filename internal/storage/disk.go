package storage

import (
	"os"
)

// DiskUsageBytes returns the on-disk size of the database including its WAL and
// shared-memory files. In-memory databases report zero.
func (s *SQLiteStorage) DiskUsageBytes() (int64, error) {
	if s.path == "" || s.path == ":memory:" {
		return 0, nil
	}
	return FileSizes(s.path, s.path+"-wal", s.path+"-shm")
}

// FileSizes sums the sizes of the given files. Missing files and empty paths
// contribute zero.
func FileSizes(paths ...string) (int64, error) {
	var total int64
	for _, p := range paths {
		if p == "" {
			continue
		}
		info, err := os.Stat(p)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return 0, err
		}
		if !info.IsDir() {
			total += info.Size()
		}
	}
	return total, nil
}
