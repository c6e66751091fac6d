package manifest

import (
	"log/slog"

	"manifesto/internal/binreader"
)

// ManifestMeta holds the identity, build, launch, and prerequisite fields of
// a manifest. BuildID exists only for DataVersion >= 1; it is empty, not an
// error, on older manifests.
type ManifestMeta struct {
	DataSize      uint32   `json:"dataSize"`
	DataVersion   uint8    `json:"dataVersion"`
	FeatureLevel  int32    `json:"featureLevel"`
	IsFileData    bool     `json:"isFileData"`
	AppID         int32    `json:"appId"`
	AppName       string   `json:"appName"`
	BuildVersion  string   `json:"buildVersion"`
	LaunchExe     string   `json:"launchExe"`
	LaunchCommand string   `json:"launchCommand"`
	PrereqIDs     []string `json:"prereqIds"`
	PrereqName    string   `json:"prereqName"`
	PrereqPath    string   `json:"prereqPath"`
	PrereqArgs    string   `json:"prereqArgs"`
	BuildID       string   `json:"buildId,omitempty"`
}

// metaField describes one serialized meta field and the schema revision that
// introduced it. The reader walks the list in order and stops at the first
// descriptor newer than the section's declared version, which keeps
// forward/backward compatibility in one place instead of scattered
// conditionals.
type metaField struct {
	minVersion uint8
	read       func(*ManifestMeta, *binreader.Reader)
}

var metaFields = []metaField{
	{0, func(m *ManifestMeta, r *binreader.Reader) { m.FeatureLevel = r.Int32() }},
	{0, func(m *ManifestMeta, r *binreader.Reader) { m.IsFileData = r.Bool() }},
	{0, func(m *ManifestMeta, r *binreader.Reader) { m.AppID = r.Int32() }},
	{0, func(m *ManifestMeta, r *binreader.Reader) { m.AppName = r.String() }},
	{0, func(m *ManifestMeta, r *binreader.Reader) { m.BuildVersion = r.String() }},
	{0, func(m *ManifestMeta, r *binreader.Reader) { m.LaunchExe = r.String() }},
	{0, func(m *ManifestMeta, r *binreader.Reader) { m.LaunchCommand = r.String() }},
	{0, func(m *ManifestMeta, r *binreader.Reader) { m.PrereqIDs = r.StringArray() }},
	{0, func(m *ManifestMeta, r *binreader.Reader) { m.PrereqName = r.String() }},
	{0, func(m *ManifestMeta, r *binreader.Reader) { m.PrereqPath = r.String() }},
	{0, func(m *ManifestMeta, r *binreader.Reader) { m.PrereqArgs = r.String() }},
	{1, func(m *ManifestMeta, r *binreader.Reader) { m.BuildID = r.String() }},
}

// decodeMeta reads the meta section at the current position. The declared
// data size counts from the section's first byte, so the reader always lands
// on the chunk list afterwards, even when newer fields were skipped or the
// input ran out mid-section. Returns nil only when the section could not be
// decoded at all.
func decodeMeta(r *binreader.Reader, logger *slog.Logger) *ManifestMeta {
	start := r.Pos()
	dataSize := r.Uint32()
	if r.Exhausted() || dataSize == 0 {
		return nil
	}
	sec := r.SectionFrom(start, dataSize)

	m := &ManifestMeta{DataSize: dataSize}
	m.DataVersion = r.Uint8()
	for _, f := range metaFields {
		if f.minVersion > m.DataVersion || !sec.Open() {
			break
		}
		f.read(m, r)
	}
	logger.Debug("meta section decoded",
		"dataSize", dataSize,
		"dataVersion", m.DataVersion,
		"consumed", sec.Consumed(),
		"appName", m.AppName)
	sec.Close()
	return m
}
