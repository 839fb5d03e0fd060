package attach

import (
	"bytes"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/clarigo/clarigo/errors"
)

// macOSMetadataMarker identifies resource-fork entries that macOS zip
// tools insert alongside real files.
const macOSMetadataMarker = "__MACOSX"

// GroupSet holds file groups keyed by case-folded base identifier while
// preserving the insertion order of first occurrence, so downstream
// iteration is deterministic for a given archive.
type GroupSet struct {
	order  []string              // folded keys in first-seen order
	groups map[string]*FileGroup // folded key -> group
}

// NewGroupSet returns an empty group set.
func NewGroupSet() *GroupSet {
	return &GroupSet{groups: make(map[string]*FileGroup)}
}

// add appends a member file to the group for id, creating the group on
// first sight. The stored identifier keeps the case of the first file.
func (s *GroupSet) add(id string, file MemberFile) {
	key := strings.ToLower(id)
	group, ok := s.groups[key]
	if !ok {
		group = &FileGroup{ID: id}
		s.groups[key] = group
		s.order = append(s.order, key)
	}
	group.Files = append(group.Files, file)
}

// Identifiers returns group identifiers in first-occurrence order.
func (s *GroupSet) Identifiers() []string {
	ids := make([]string, 0, len(s.order))
	for _, key := range s.order {
		ids = append(ids, s.groups[key].ID)
	}
	return ids
}

// Get looks up a group by identifier, case-insensitively.
func (s *GroupSet) Get(id string) (*FileGroup, bool) {
	group, ok := s.groups[strings.ToLower(id)]
	return group, ok
}

// Len returns the number of groups.
func (s *GroupSet) Len() int {
	return len(s.order)
}

// FileCount returns the total member files across all groups.
func (s *GroupSet) FileCount() int {
	n := 0
	for _, key := range s.order {
		n += len(s.groups[key].Files)
	}
	return n
}

// Merge folds src into s. An identifier new to s is appended in src
// order; an identifier s already has keeps its slot position but takes
// the later archive's member files.
func (s *GroupSet) Merge(src *GroupSet) {
	for _, key := range src.order {
		incoming := src.groups[key]
		if existing, ok := s.groups[key]; ok {
			existing.Files = incoming.Files
			continue
		}
		s.groups[key] = incoming
		s.order = append(s.order, key)
	}
}

// Decompose reads a zip archive and groups its member files by base
// identifier (filename without the final extension). Directory entries
// and macOS metadata entries are skipped. Entry order in the archive is
// preserved within and across groups.
func Decompose(archiveBytes []byte) (*GroupSet, error) {
	reader, err := zip.NewReader(bytes.NewReader(archiveBytes), int64(len(archiveBytes)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrArchive, err.Error())
	}

	set := NewGroupSet()
	for _, entry := range reader.File {
		name := entry.Name
		if strings.HasSuffix(name, "/") || entry.FileInfo().IsDir() {
			continue
		}
		if strings.Contains(name, macOSMetadataMarker) {
			continue
		}

		rc, err := entry.Open()
		if err != nil {
			return nil, errors.Wrapf(errors.ErrArchive, "opening %s: %v", name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, errors.Wrapf(errors.ErrArchive, "reading %s: %v", name, err)
		}

		base := path.Base(name)
		id := strings.TrimSuffix(base, path.Ext(base))
		if id == "" {
			// dotfiles like ".manifest" have no stem to strip
			id = base
		}
		set.add(id, MemberFile{Name: base, Path: name, Data: data})
	}

	return set, nil
}
