package metrics

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/dustin/go-humanize"
)

// SysHealth represents real-time process and storage metrics.
type SysHealth struct {
	AllocMB     uint64
	SysMB       uint64
	NumGC       uint32
	Goroutines  int
	DBSize      string
	ArchiveSize string
}

// GetSysHealth collects health data for the process, the database file and the plan archive.
func GetSysHealth(dbPath, archiveDir string) SysHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return SysHealth{
		AllocMB:     m.Alloc / 1024 / 1024,
		SysMB:       m.Sys / 1024 / 1024,
		NumGC:       m.NumGC,
		Goroutines:  runtime.NumGoroutine(),
		DBSize:      humanize.Bytes(uint64(pathSize(dbPath))),
		ArchiveSize: humanize.Bytes(uint64(pathSize(archiveDir))),
	}
}

// pathSize sums the size of a file or of every file under a directory. Missing paths are 0.
func pathSize(path string) int64 {
	var size int64
	_ = filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size
}
