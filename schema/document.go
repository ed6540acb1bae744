package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/masiarekpl/keypin/model"
)

// SupportedDocumentVersion is the only version of the schemas and manifest documents
const SupportedDocumentVersion = 1

// nolint:gochecknoglobals
var versionNumber = regexp.MustCompile(`^\d+$`)

// Version is a record version. JSON documents may carry it as number or string.
type Version string

// UnmarshalJSON implements `json.Unmarshaler`.
func (v *Version) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*v = Version(num.String())

		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("version must be a number or string: %w", err)
	}

	*v = Version(s)

	return nil
}

// Constraints restrict field values beyond presence
type Constraints struct {
	AlgAllow []string `json:"alg_allow,omitempty"`
}

// Rules is the contract of one (type, version) pair
type Rules struct {
	Required    []string    `json:"required"`
	Optional    []string    `json:"optional"`
	Constraints Constraints `json:"constraints"`
}

// TypeSchema holds the rules of all versions of an identity type
type TypeSchema struct {
	Versions map[string]Rules `json:"versions"`
}

// Schemas is the pinned schemas document
type Schemas struct {
	Schema  string                `json:"schema"`
	Version int                   `json:"version"`
	Types   map[string]TypeSchema `json:"types"`
}

// ParseSchemas decodes a schemas document and checks its id and version
func ParseSchemas(data []byte, id string) (*Schemas, error) {
	var s Schemas

	if err := json.Unmarshal(data, &s); err != nil {
		return nil, model.WrapError(model.ErrorKindFormat, "schemas JSON parse error", err)
	}

	if s.Schema != id || s.Version != SupportedDocumentVersion {
		return nil, &model.Error{
			Kind:     model.ErrorKindFormat,
			Message:  "unsupported schemas JSON",
			Expected: fmt.Sprintf("%s v%d", id, SupportedDocumentVersion),
			Actual:   fmt.Sprintf("%s v%d", s.Schema, s.Version),
		}
	}

	return &s, nil
}

// Rules returns the rules for the type in the given version.
// Unknown versions are rejected, a missing optional list defaults to an empty one.
func (s *Schemas) Rules(typ, version string) (*Rules, error) {
	rules, ok := s.Types[typ].Versions[version]
	if !ok {
		return nil, &model.Error{
			Kind:    model.ErrorKindSchema,
			Message: fmt.Sprintf("unsupported %s schema version v=%s", typ, version),
			Actual:  version,
		}
	}

	if rules.Required == nil {
		return nil, model.NewError(model.ErrorKindFormat,
			fmt.Sprintf("invalid schemas JSON (missing required[] for %s v=%s)", typ, version))
	}

	if rules.Optional == nil {
		rules.Optional = []string{}
	}

	return &rules, nil
}

// ManifestVersion is one published version of an identity type
type ManifestVersion struct {
	Domain string `json:"domain"`
}

// ManifestType names the current version of an identity type and where each version is published
type ManifestType struct {
	Current  Version                    `json:"current"`
	Versions map[string]ManifestVersion `json:"versions"`
}

// Manifest is the pinned manifest document
type Manifest struct {
	Schema  string                  `json:"schema"`
	Version int                     `json:"version"`
	Types   map[string]ManifestType `json:"types"`
}

// ParseManifest decodes a manifest document and checks its id and version
func ParseManifest(data []byte, id string) (*Manifest, error) {
	var m Manifest

	if err := json.Unmarshal(data, &m); err != nil {
		return nil, model.WrapError(model.ErrorKindFormat, "manifest JSON parse error", err)
	}

	if m.Schema != id || m.Version != SupportedDocumentVersion {
		return nil, &model.Error{
			Kind:     model.ErrorKindFormat,
			Message:  "unsupported manifest JSON",
			Expected: fmt.Sprintf("%s v%d", id, SupportedDocumentVersion),
			Actual:   fmt.Sprintf("%s v%d", m.Schema, m.Version),
		}
	}

	return &m, nil
}

// Select returns the current version of the type and the domain its record is published at
func (m *Manifest) Select(typ string) (version, domain string, err error) {
	t, ok := m.Types[typ]
	if !ok {
		return "", "", &model.Error{
			Kind:    model.ErrorKindSchema,
			Message: fmt.Sprintf("manifest has no identity type %s", typ),
		}
	}

	version = string(t.Current)
	if !versionNumber.MatchString(version) {
		return "", "", &model.Error{
			Kind:    model.ErrorKindFormat,
			Message: fmt.Sprintf("manifest %s has no valid current version", typ),
			Actual:  version,
		}
	}

	v, ok := t.Versions[version]
	if !ok || v.Domain == "" {
		return "", "", model.NewError(model.ErrorKindFormat,
			fmt.Sprintf("manifest %s v=%s has no domain", typ, version))
	}

	return version, v.Domain, nil
}

// TypeNames returns the identity types with rules, sorted by name
func (s *Schemas) TypeNames() []string {
	names := make([]string, 0, len(s.Types))
	for name := range s.Types {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// VersionsOf returns the known versions of the type in ascending numeric order
func (s *Schemas) VersionsOf(typ string) []string {
	versions := make([]string, 0, len(s.Types[typ].Versions))
	for v := range s.Types[typ].Versions {
		versions = append(versions, v)
	}

	sort.Slice(versions, func(i, j int) bool {
		return versionOrder(versions[i]) < versionOrder(versions[j])
	})

	return versions
}

func versionOrder(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}

	return n
}
