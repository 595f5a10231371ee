package models

import (
	"encoding/json"
	"testing"

	"github.com/huanfeng/updategen/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func strPtr(s string) *string { return &s }

func TestVersionInfo_ToDownload(t *testing.T) {
	tests := []struct {
		name    string
		sources []DownloadSource
		wantURL *string
	}{
		{
			name: "direct link preferred over earlier indirect",
			sources: []DownloadSource{
				{SourceName: "store", URL: "A", IsDirectLink: false},
				{SourceName: "cdn", URL: "B", IsDirectLink: true},
			},
			wantURL: strPtr("B"),
		},
		{
			name: "first direct link wins",
			sources: []DownloadSource{
				{URL: "A", IsDirectLink: true},
				{URL: "B", IsDirectLink: true},
			},
			wantURL: strPtr("A"),
		},
		{
			name:    "falls back to first source",
			sources: []DownloadSource{{SourceName: "store", URL: "A"}},
			wantURL: strPtr("A"),
		},
		{
			name:    "no sources",
			sources: []DownloadSource{},
			wantURL: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := &VersionInfo{VersionCode: 7, VersionName: "1.7", DownloadSource: tt.sources}
			got := info.ToDownload()
			assert.Equal(t, int64(7), got.VersionCode)
			assert.Equal(t, "1.7", got.VersionName)
			assert.Equal(t, tt.wantURL, got.URL)
		})
	}
}

func TestLatestDownload_NullURL(t *testing.T) {
	info := &VersionInfo{VersionCode: 1, VersionName: "1.0"}
	data, err := json.Marshal(info.ToDownload())
	require.NoError(t, err)
	assert.JSONEq(t, `{"versionCode":1,"versionName":"1.0","url":null}`, string(data))

	parsed, err := ParseLatestDownload(data)
	require.NoError(t, err)
	assert.Nil(t, parsed.URL)
}

func TestVersionInfo_ToIndex(t *testing.T) {
	info := &VersionInfo{VersionCode: 42, ForceUpdate: true}
	assert.Equal(t, VersionIndex{Version: 42, ForceUpdate: true}, info.ToIndex())

	data, err := json.Marshal(info.ToIndex())
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":42,"forceUpdate":true}`, string(data))
}

func TestVersionInfo_MarshalWireNames(t *testing.T) {
	info := &VersionInfo{
		VersionCode: 3,
		VersionName: "0.3",
		ForceUpdate: false,
		ChangeLog:   "fixes",
		DownloadSource: []DownloadSource{
			{SourceName: "GitHub", URL: "https://example.com/a.apk", IsDirectLink: true},
		},
	}
	data, err := json.Marshal(info)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"versionCode": 3,
		"versionName": "0.3",
		"forceUpdate": false,
		"changeLog": "fixes",
		"downloadSource": [{"sourceName": "GitHub", "url": "https://example.com/a.apk", "isDirectLink": true}]
	}`, string(data))

	empty, err := json.Marshal(&VersionInfo{VersionCode: 1})
	require.NoError(t, err)
	assert.Contains(t, string(empty), `"downloadSource":[]`)
}

func TestParseVersionInfo_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{"versionCode":`},
		{"not an object", `[1,2,3]`},
		{"null", `null`},
		{"missing versionCode", `{"versionName":"a","forceUpdate":false,"changeLog":"","downloadSource":[]}`},
		{"missing changeLog", `{"versionCode":1,"versionName":"a","forceUpdate":false,"downloadSource":[]}`},
		{"string versionCode", `{"versionCode":"1","versionName":"a","forceUpdate":false,"changeLog":"","downloadSource":[]}`},
		{"fractional versionCode", `{"versionCode":1.5,"versionName":"a","forceUpdate":false,"changeLog":"","downloadSource":[]}`},
		{"null versionName", `{"versionCode":1,"versionName":null,"forceUpdate":false,"changeLog":"","downloadSource":[]}`},
		{"downloadSource not a list", `{"versionCode":1,"versionName":"a","forceUpdate":false,"changeLog":"","downloadSource":{}}`},
		{"source missing url", `{"versionCode":1,"versionName":"a","forceUpdate":false,"changeLog":"","downloadSource":[{"sourceName":"x","isDirectLink":true}]}`},
		{"source bad flag", `{"versionCode":1,"versionName":"a","forceUpdate":false,"changeLog":"","downloadSource":[{"sourceName":"x","url":"u","isDirectLink":"yes"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := ParseVersionInfo([]byte(tt.data))
			assert.Nil(t, info)
			require.Error(t, err)
			assert.True(t, errors.IsMalformedRecord(err), "got %v", err)
		})
	}
}

func TestParseVersionInfo_IgnoresUnknownKeys(t *testing.T) {
	info, err := ParseVersionInfo([]byte(`{"versionCode":1,"versionName":"a","forceUpdate":true,"changeLog":"c","downloadSource":[],"extra":42}`))
	require.NoError(t, err)
	assert.Equal(t, int64(1), info.VersionCode)
	assert.True(t, info.ForceUpdate)
	assert.Empty(t, info.DownloadSource)
}

func TestParseIndexLists(t *testing.T) {
	codes, err := ParseVersionCodeList([]byte(`[3,1,2]`))
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 2}, codes)

	_, err = ParseVersionCodeList([]byte(`null`))
	assert.True(t, errors.IsMalformedRecord(err))

	list, err := ParseVersionIndexList([]byte(`[{"version":2,"forceUpdate":false},{"version":1,"forceUpdate":true}]`))
	require.NoError(t, err)
	assert.Equal(t, []VersionIndex{{Version: 2}, {Version: 1, ForceUpdate: true}}, list)

	_, err = ParseVersionIndexList([]byte(`[{"version":2}]`))
	assert.True(t, errors.IsMalformedRecord(err))
}

func TestEmptyVersionInfo(t *testing.T) {
	info := EmptyVersionInfo()
	assert.Equal(t, int64(0), info.VersionCode)
	assert.Empty(t, info.VersionName)
	assert.Empty(t, info.ChangeLog)
	assert.False(t, info.ForceUpdate)
	require.Len(t, info.DownloadSource, 1)
	assert.Equal(t, DownloadSource{IsDirectLink: true}, info.DownloadSource[0])
}

func TestVersionInfo_Validate(t *testing.T) {
	assert.NoError(t, (&VersionInfo{VersionCode: 0}).Validate())
	err := (&VersionInfo{VersionCode: -1}).Validate()
	assert.True(t, errors.IsInvalidInput(err))
}

func versionInfoGen() *rapid.Generator[*VersionInfo] {
	return rapid.Custom(func(t *rapid.T) *VersionInfo {
		sources := rapid.SliceOfN(rapid.Custom(func(t *rapid.T) DownloadSource {
			return DownloadSource{
				SourceName:   rapid.String().Draw(t, "sourceName"),
				URL:          rapid.String().Draw(t, "url"),
				IsDirectLink: rapid.Bool().Draw(t, "direct"),
			}
		}), 0, 4).Draw(t, "sources")
		return &VersionInfo{
			VersionCode:    rapid.Int64Range(0, 1<<40).Draw(t, "code"),
			VersionName:    rapid.String().Draw(t, "name"),
			ForceUpdate:    rapid.Bool().Draw(t, "force"),
			ChangeLog:      rapid.String().Draw(t, "changeLog"),
			DownloadSource: sources,
		}
	})
}

func TestVersionInfo_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		info := versionInfoGen().Draw(t, "info")

		data, err := json.Marshal(info)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		got, err := ParseVersionInfo(data)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if !got.Equal(info) {
			t.Fatalf("round trip mismatch: %+v != %+v", got, info)
		}
	})
}
