package catalog

import "time"

// RunStatistics accumulates counters over one indexing run. It is
// process-local state: created at pipeline start, mutated through the
// walk, reported and discarded at pipeline end. There is no shared
// global state; the single run owns its statistics value.
type RunStatistics struct {
	StartedAt time.Time

	FilesVisited      int64 // regular files seen by the walk
	FilesSkipped      int64 // non-archive files, logged and passed over
	ArchivesRecorded  int64 // ZipRecords written
	ArchivesExtracted int64 // archives whose members were materialized
	WadsIndexed       int64 // WadRecords written
	LumpsIndexed      int64 // directory entries across all parsed containers
	LevelsIndexed     int64 // LevelMapping rows written
	ChecksumCalls     int64
	Duplicates        int64 // keysum conflicts on insert (already cataloged)
	Errors            int64 // recorded non-fatal failures

	ChecksumTime time.Duration // cumulative time in checksum passes
	Elapsed      time.Duration
}
