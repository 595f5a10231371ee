package models

import (
	"encoding/json"
	"fmt"

	"github.com/huanfeng/updategen/internal/errors"
)

// DownloadSource is one place a version's binary can be fetched from
type DownloadSource struct {
	SourceName   string `json:"sourceName" yaml:"sourceName"`
	URL          string `json:"url" yaml:"url"`
	IsDirectLink bool   `json:"isDirectLink" yaml:"isDirectLink"`
}

// VersionIndex is the lightweight summary written to the recent index
type VersionIndex struct {
	Version     int64 `json:"version" yaml:"version"`
	ForceUpdate bool  `json:"forceUpdate" yaml:"forceUpdate"`
}

// VersionInfo is the canonical record of one release
type VersionInfo struct {
	VersionCode    int64            `json:"versionCode" yaml:"versionCode"`
	VersionName    string           `json:"versionName" yaml:"versionName"`
	ForceUpdate    bool             `json:"forceUpdate" yaml:"forceUpdate"`
	ChangeLog      string           `json:"changeLog" yaml:"changeLog"`
	DownloadSource []DownloadSource `json:"downloadSource" yaml:"downloadSource"`
}

// LatestDownload is the download projection of the latest version.
// URL is nil when the version has no download source.
type LatestDownload struct {
	VersionCode int64   `json:"versionCode" yaml:"versionCode"`
	VersionName string  `json:"versionName" yaml:"versionName"`
	URL         *string `json:"url" yaml:"url"`
}

// EmptyDownloadSource returns the placeholder source used in templates
func EmptyDownloadSource() DownloadSource {
	return DownloadSource{IsDirectLink: true}
}

// EmptyVersionInfo returns the template record written for hand editing
func EmptyVersionInfo() *VersionInfo {
	return &VersionInfo{
		DownloadSource: []DownloadSource{EmptyDownloadSource()},
	}
}

// ToIndex projects the record onto its recent index summary
func (v *VersionInfo) ToIndex() VersionIndex {
	return VersionIndex{Version: v.VersionCode, ForceUpdate: v.ForceUpdate}
}

// RecommendedSource returns the first direct link, else the first source,
// else nil.
func (v *VersionInfo) RecommendedSource() *DownloadSource {
	for i := range v.DownloadSource {
		if v.DownloadSource[i].IsDirectLink {
			return &v.DownloadSource[i]
		}
	}
	if len(v.DownloadSource) > 0 {
		return &v.DownloadSource[0]
	}
	return nil
}

// ToDownload projects the record onto the latest download info
func (v *VersionInfo) ToDownload() LatestDownload {
	d := LatestDownload{VersionCode: v.VersionCode, VersionName: v.VersionName}
	if src := v.RecommendedSource(); src != nil {
		url := src.URL
		d.URL = &url
	}
	return d
}

// Validate checks the invariants a stored record must satisfy
func (v *VersionInfo) Validate() error {
	if v.VersionCode < 0 {
		return errors.NewInvalidInputError("NEGATIVE_VERSION_CODE",
			fmt.Sprintf("version code must not be negative: %d", v.VersionCode))
	}
	return nil
}

// Equal reports whether two records carry the same values
func (v *VersionInfo) Equal(o *VersionInfo) bool {
	if v == nil || o == nil {
		return v == o
	}
	if v.VersionCode != o.VersionCode || v.VersionName != o.VersionName ||
		v.ForceUpdate != o.ForceUpdate || v.ChangeLog != o.ChangeLog ||
		len(v.DownloadSource) != len(o.DownloadSource) {
		return false
	}
	for i := range v.DownloadSource {
		if v.DownloadSource[i] != o.DownloadSource[i] {
			return false
		}
	}
	return true
}

// Equal reports whether two download projections carry the same values
func (d *LatestDownload) Equal(o *LatestDownload) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d.VersionCode != o.VersionCode || d.VersionName != o.VersionName {
		return false
	}
	if d.URL == nil || o.URL == nil {
		return d.URL == o.URL
	}
	return *d.URL == *o.URL
}

// MarshalJSON always emits downloadSource as an array
func (v VersionInfo) MarshalJSON() ([]byte, error) {
	type plain VersionInfo
	p := plain(v)
	if p.DownloadSource == nil {
		p.DownloadSource = []DownloadSource{}
	}
	return json.Marshal(p)
}

// UnmarshalJSON decodes a record, failing on missing or mistyped keys
func (v *VersionInfo) UnmarshalJSON(data []byte) error {
	fields, err := decodeObject(data, "version info")
	if err != nil {
		return err
	}

	var out VersionInfo
	if err := requireField(fields, "versionCode", &out.VersionCode); err != nil {
		return err
	}
	if err := requireField(fields, "versionName", &out.VersionName); err != nil {
		return err
	}
	if err := requireField(fields, "forceUpdate", &out.ForceUpdate); err != nil {
		return err
	}
	if err := requireField(fields, "changeLog", &out.ChangeLog); err != nil {
		return err
	}

	var rawSources []json.RawMessage
	if err := requireField(fields, "downloadSource", &rawSources); err != nil {
		return err
	}
	out.DownloadSource = make([]DownloadSource, 0, len(rawSources))
	for i, raw := range rawSources {
		var src DownloadSource
		if err := src.UnmarshalJSON(raw); err != nil {
			return errors.WrapError(err, errors.ErrorTypeMalformedRecord, "BAD_DOWNLOAD_SOURCE",
				fmt.Sprintf("invalid downloadSource[%d]", i))
		}
		out.DownloadSource = append(out.DownloadSource, src)
	}

	*v = out
	return nil
}

// UnmarshalJSON decodes a download source, failing on missing or mistyped keys
func (s *DownloadSource) UnmarshalJSON(data []byte) error {
	fields, err := decodeObject(data, "download source")
	if err != nil {
		return err
	}

	var out DownloadSource
	if err := requireField(fields, "sourceName", &out.SourceName); err != nil {
		return err
	}
	if err := requireField(fields, "url", &out.URL); err != nil {
		return err
	}
	if err := requireField(fields, "isDirectLink", &out.IsDirectLink); err != nil {
		return err
	}

	*s = out
	return nil
}

// UnmarshalJSON decodes an index entry, failing on missing or mistyped keys
func (vi *VersionIndex) UnmarshalJSON(data []byte) error {
	fields, err := decodeObject(data, "version index")
	if err != nil {
		return err
	}

	var out VersionIndex
	if err := requireField(fields, "version", &out.Version); err != nil {
		return err
	}
	if err := requireField(fields, "forceUpdate", &out.ForceUpdate); err != nil {
		return err
	}

	*vi = out
	return nil
}

// ParseVersionInfo decodes a record from JSON bytes
func ParseVersionInfo(data []byte) (*VersionInfo, error) {
	var info VersionInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, asMalformed(err)
	}
	return &info, nil
}

// ParseVersionIndexList decodes a recent index file
func ParseVersionIndexList(data []byte) ([]VersionIndex, error) {
	var list []VersionIndex
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, asMalformed(err)
	}
	if list == nil {
		return nil, errors.NewMalformedRecordError("NOT_AN_ARRAY", "recent index must be a JSON array")
	}
	return list, nil
}

// ParseVersionCodeList decodes a version index file
func ParseVersionCodeList(data []byte) ([]int64, error) {
	var list []int64
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, asMalformed(err)
	}
	if list == nil {
		return nil, errors.NewMalformedRecordError("NOT_AN_ARRAY", "version index must be a JSON array")
	}
	return list, nil
}

// ParseLatestDownload decodes a latest download file
func ParseLatestDownload(data []byte) (*LatestDownload, error) {
	fields, err := decodeObject(data, "latest download")
	if err != nil {
		return nil, asMalformed(err)
	}

	var out LatestDownload
	if err := requireField(fields, "versionCode", &out.VersionCode); err != nil {
		return nil, err
	}
	if err := requireField(fields, "versionName", &out.VersionName); err != nil {
		return nil, err
	}
	raw, ok := fields["url"]
	if !ok {
		return nil, missingField("url")
	}
	if err := json.Unmarshal(raw, &out.URL); err != nil {
		return nil, wrongType("url", err)
	}
	return &out, nil
}

func decodeObject(data []byte, what string) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeMalformedRecord, "NOT_AN_OBJECT",
			fmt.Sprintf("%s must be a JSON object", what))
	}
	if fields == nil {
		return nil, errors.NewMalformedRecordError("NOT_AN_OBJECT", fmt.Sprintf("%s must be a JSON object", what))
	}
	return fields, nil
}

// requireField decodes fields[key] into dst. null is rejected because the
// decoder would otherwise leave dst at its zero value.
func requireField(fields map[string]json.RawMessage, key string, dst interface{}) error {
	raw, ok := fields[key]
	if !ok {
		return missingField(key)
	}
	if string(raw) == "null" {
		return wrongType(key, fmt.Errorf("unexpected null"))
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return wrongType(key, err)
	}
	return nil
}

func missingField(key string) error {
	return errors.NewMalformedRecordError("MISSING_FIELD", fmt.Sprintf("missing required key %q", key)).
		WithContext("key", key)
}

func wrongType(key string, cause error) error {
	return errors.WrapError(cause, errors.ErrorTypeMalformedRecord, "WRONG_TYPE",
		fmt.Sprintf("key %q has the wrong type", key)).
		WithContext("key", key)
}

func asMalformed(err error) error {
	if errors.IsMalformedRecord(err) {
		return err
	}
	return errors.WrapError(err, errors.ErrorTypeMalformedRecord, "INVALID_JSON", "invalid JSON")
}
