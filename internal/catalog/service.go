// Package catalog implements the indexing pipeline: it walks a file
// tree, extracts container files from archives, parses their lump
// directories, and writes content-addressed records through the Store.
package catalog

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"wadcat/internal/keysum"
	"wadcat/internal/model"
	"wadcat/internal/wad"
	"wadcat/internal/zipext"
)

const (
	archiveSuffix   = ".zip"
	containerSuffix = ".wad"
	hiddenPrefix    = "."
)

// Service coordinates the indexing pipeline across its collaborators.
// It is single-threaded: one file at a time, one archive's extraction
// directory alive at a time.
type Service struct {
	store      Store
	lookup     Lookup
	extractor  Extractor
	fsmgr      FilesystemManager
	logger     Logger
	clock      Clock
	scratchDir string
	maxFiles   int64 // 0 means unlimited
}

// NewService creates a Service with the provided dependencies.
// lookup may be nil when no reference source is configured.
func NewService(store Store, lookup Lookup, extractor Extractor, fsmgr FilesystemManager, logger Logger, clock Clock, scratchDir string, maxFiles int64) *Service {
	if lookup == nil {
		lookup = NopLookup{}
	}
	return &Service{
		store:      store,
		lookup:     lookup,
		extractor:  extractor,
		fsmgr:      fsmgr,
		logger:     logger,
		clock:      clock,
		scratchDir: scratchDir,
		maxFiles:   maxFiles,
	}
}

// Index walks the tree rooted at rawRoot and catalogs every archive it
// finds. Per-item failures are logged, counted, and skipped; only setup
// failures (unreadable root) abort the run. The returned statistics are
// valid even when an error is returned alongside them.
func (s *Service) Index(rawRoot string) (*RunStatistics, error) {
	stats := &RunStatistics{StartedAt: s.clock.Now()}
	defer func() { stats.Elapsed = s.clock.Now().Sub(stats.StartedAt) }()

	root, err := s.fsmgr.Resolve(rawRoot)
	if err != nil {
		return stats, fmt.Errorf("resolving root path: %w", err)
	}
	if !root.IsDir() {
		return stats, fmt.Errorf("root path is not a directory: %s", root.String())
	}

	files, err := s.fsmgr.FindFiles(root, true)
	if err != nil {
		return stats, fmt.Errorf("walking root path: %w", err)
	}

	for _, f := range files {
		if s.maxFiles > 0 && stats.FilesVisited >= s.maxFiles {
			s.logger.Info("file limit reached, stopping walk", "limit", s.maxFiles)
			break
		}
		stats.FilesVisited++

		if !strings.EqualFold(filepath.Ext(f.String()), archiveSuffix) {
			stats.FilesSkipped++
			s.logger.Debug("skipping non-archive file", "path", f.String())
			continue
		}

		s.processArchive(root, f, stats)
	}

	s.logger.Info("indexing run complete",
		"visited", stats.FilesVisited,
		"archives", stats.ArchivesRecorded,
		"wads", stats.WadsIndexed,
		"levels", stats.LevelsIndexed,
		"errors", stats.Errors,
	)
	return stats, nil
}

// processArchive drives one archive through the pipeline: checksum the
// archive itself, list its members, extract and index the container
// members, then write the archive's own record last. Once the archive's
// checksums are known, every later failure still leaves a ZipRecord.
func (s *Service) processArchive(root, archive *Path, stats *RunStatistics) {
	name := filepath.Base(archive.String())
	size := archive.Info().Size()

	s.annotateFromLookup(root, archive, name)

	zipKey := keysum.ForFile(name, size)
	sums, err := s.checksumArchive(archive, stats)
	if err != nil {
		// Without checksums there is nothing trustworthy to record.
		stats.Errors++
		s.logger.Error("checksumming archive failed", "archive", name, "error", err)
		return
	}

	rec := &model.ZipRecord{
		Keysum:      zipKey,
		Filename:    name,
		Size:        size,
		DateCreated: s.clock.Now(),
		MD5Checksum: sums.MD5,
		SHAChecksum: sums.SHA,
	}

	// The archive row is written after all member rows; insertZip also
	// runs on every early return below.
	defer s.insertZip(rec, stats)

	members, err := s.extractor.ListMembers(archive.String())
	if err != nil {
		stats.Errors++
		s.logger.Error("listing archive members failed", "archive", name, "keysum", zipKey, "error", err)
		return
	}

	wadMembers := filterContainerMembers(members)
	if len(wadMembers) == 0 {
		s.logger.Info("archive has no container members",
			"archive", name, "keysum", zipKey, "members", memberNames(members))
		return
	}

	ext, err := s.extractor.Extract(archive.String(), memberNames(wadMembers), s.scratchDir)
	if err != nil {
		stats.Errors++
		s.logger.Error("extracting archive failed", "archive", name, "keysum", zipKey, "error", err)
		return
	}
	defer func() {
		if err := ext.Close(); err != nil {
			s.logger.Warn("releasing extraction directory failed", "archive", name, "error", err)
		}
	}()
	stats.ArchivesExtracted++

	for _, m := range wadMembers {
		s.processMember(ext, m, name, zipKey, stats)
	}
}

// annotateFromLookup reports known metadata for an archive, best-effort.
func (s *Service) annotateFromLookup(root, archive *Path, name string) {
	dir := normalizedDir(root.String(), archive.String())
	known, err := s.lookup.FindByPath(dir, name)
	if err != nil {
		s.logger.Warn("reference lookup failed", "archive", name, "error", err)
		return
	}
	if known != nil {
		s.logger.Info("archive known to reference source",
			"archive", name, "dirname", known.Dirname, "title", known.Title)
	}
}

// checksumArchive streams the archive's full content through both hash
// algorithms before any extraction is attempted.
func (s *Service) checksumArchive(archive *Path, stats *RunStatistics) (*keysum.ChecksumResult, error) {
	r, err := s.fsmgr.Open(archive)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	sums, err := keysum.Checksums(r)
	if err != nil {
		return nil, err
	}
	stats.ChecksumCalls++
	stats.ChecksumTime += sums.Duration
	return sums, nil
}

// processMember indexes one extracted container member. Any failure is
// recorded and the caller moves on to the next member.
func (s *Service) processMember(ext Extraction, m zipext.Member, archiveName, zipKey string, stats *RunStatistics) {
	data, err := readMember(ext, m.Name)
	if err != nil {
		stats.Errors++
		s.logger.Error("reading extracted member failed",
			"archive", archiveName, "member", m.Name, "error", err)
		return
	}

	idx, err := wad.Parse(data)
	if err != nil {
		stats.Errors++
		s.logger.Error("parsing container failed",
			"archive", archiveName, "member", m.Name, "error", err)
		return
	}
	stats.LumpsIndexed += int64(idx.LumpCount)

	sums, err := keysum.Checksums(bytes.NewReader(data))
	if err != nil {
		stats.Errors++
		s.logger.Error("checksumming member failed",
			"archive", archiveName, "member", m.Name, "error", err)
		return
	}
	stats.ChecksumCalls++
	stats.ChecksumTime += sums.Duration

	// The keysum tuple uses the member's base name and its actual
	// extracted size, which is authoritative over the size the archive
	// directory claimed.
	wadKey := keysum.ForFile(path.Base(m.Name), int64(len(data)))

	rec := &model.WadRecord{
		Keysum:      wadKey,
		ZipKeysum:   zipKey,
		Filename:    m.Name,
		Size:        int64(len(data)),
		DateCreated: s.clock.Now(),
		MD5Checksum: sums.MD5,
		SHAChecksum: sums.SHA,
		LumpCount:   int64(idx.LumpCount),
	}

	switch err := s.store.InsertWad(rec); {
	case err == nil:
		stats.WadsIndexed++
		s.logger.Info("container indexed",
			"archive", archiveName, "member", m.Name, "keysum", wadKey,
			"lumps", idx.LumpCount, "levels", len(idx.LevelNames))
	case IsConflict(err):
		stats.Duplicates++
		s.logger.Info("container already cataloged",
			"archive", archiveName, "member", m.Name, "keysum", wadKey)
	default:
		stats.Errors++
		s.logger.Error("storing container record failed",
			"archive", archiveName, "member", m.Name, "keysum", wadKey, "error", err)
	}

	// Level mappings are attempted regardless of how the wad insert
	// went; every insert attempt is independent.
	for _, level := range idx.LevelNames {
		if err := s.store.InsertLevelMapping(wadKey, level); err != nil {
			stats.Errors++
			s.logger.Error("storing level mapping failed",
				"archive", archiveName, "member", m.Name, "keysum", wadKey,
				"level", level, "error", err)
			continue
		}
		stats.LevelsIndexed++
	}
}

// insertZip writes the archive's own record, tolerating conflicts.
func (s *Service) insertZip(rec *model.ZipRecord, stats *RunStatistics) {
	switch err := s.store.InsertZip(rec); {
	case err == nil:
		stats.ArchivesRecorded++
		s.logger.Info("archive recorded", "archive", rec.Filename, "keysum", rec.Keysum)
	case IsConflict(err):
		stats.Duplicates++
		s.logger.Info("archive already cataloged", "archive", rec.Filename, "keysum", rec.Keysum)
	default:
		stats.Errors++
		s.logger.Error("storing archive record failed",
			"archive", rec.Filename, "keysum", rec.Keysum, "error", err)
	}
}

// readMember reads one extracted member fully into memory; the parser
// needs the whole buffer for offset validation.
func readMember(ext Extraction, name string) ([]byte, error) {
	rc, err := ext.Open(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// filterContainerMembers selects members with the container suffix,
// case-insensitively, silently excluding hidden files.
func filterContainerMembers(members []zipext.Member) []zipext.Member {
	var out []zipext.Member
	for _, m := range members {
		base := path.Base(filepath.ToSlash(m.Name))
		if strings.HasPrefix(base, hiddenPrefix) {
			continue
		}
		if strings.EqualFold(path.Ext(base), containerSuffix) {
			out = append(out, m)
		}
	}
	return out
}

func memberNames(members []zipext.Member) []string {
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name
	}
	return names
}

// normalizedDir converts an archive's location into the lookup key form:
// its directory relative to the walk root, forward slashes, trailing
// slash, empty for the root itself.
func normalizedDir(root, archivePath string) string {
	rel, err := filepath.Rel(root, archivePath)
	if err != nil {
		return ""
	}
	dir := path.Dir(filepath.ToSlash(rel))
	if dir == "." || dir == "/" {
		return ""
	}
	return dir + "/"
}
