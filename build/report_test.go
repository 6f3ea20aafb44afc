package build

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReport_XML(t *testing.T) {
	t.Run("passed is tests minus failures minus errors", func(t *testing.T) {
		body := []byte(`<?xml version="1.0"?>
<testsuite tests="20" failures="2" errors="1" time="12.3">
  <testcase name="TestA"/>
</testsuite>`)

		passed, err := ParseReport("report.xml", body)
		require.NoError(t, err)
		assert.Equal(t, 17, passed)
	})

	t.Run("all passing", func(t *testing.T) {
		passed, err := ParseReport("report.xml", []byte(`<testsuite tests="20" failures="0" errors="0"/>`))
		require.NoError(t, err)
		assert.Equal(t, 20, passed)
	})

	t.Run("missing attributes is a parse error", func(t *testing.T) {
		_, err := ParseReport("report.xml", []byte(`<testsuite tests="20" failures="2"/>`))
		require.Error(t, err)
	})

	t.Run("malformed document is a parse error", func(t *testing.T) {
		_, err := ParseReport("report.xml", []byte(`<testsuite tests="20"`))
		require.Error(t, err)
	})

	t.Run("error placeholder body is a parse error", func(t *testing.T) {
		_, err := ParseReport("report.xml", []byte(`{"error": "report not generated yet"}`))
		require.Error(t, err)
	})
}

func TestParseReport_JSON(t *testing.T) {
	t.Run("reads summary.passed", func(t *testing.T) {
		passed, err := ParseReport("report.json", []byte(`{"summary":{"passed":16,"total":17}}`))
		require.NoError(t, err)
		assert.Equal(t, 16, passed)
	})

	t.Run("zero passed is valid", func(t *testing.T) {
		passed, err := ParseReport("report.json", []byte(`{"summary":{"passed":0,"total":17}}`))
		require.NoError(t, err)
		assert.Equal(t, 0, passed)
	})

	t.Run("missing summary is a parse error", func(t *testing.T) {
		_, err := ParseReport("report.json", []byte(`{"status":"pending"}`))
		require.Error(t, err)
	})

	t.Run("missing passed is a parse error", func(t *testing.T) {
		_, err := ParseReport("report.json", []byte(`{"summary":{"total":17}}`))
		require.Error(t, err)
	})

	t.Run("malformed body is a parse error", func(t *testing.T) {
		_, err := ParseReport("report.json", []byte(`not json`))
		require.Error(t, err)
	})
}

func TestParseReport_UnknownName(t *testing.T) {
	_, err := ParseReport("report.txt", []byte(`whatever`))
	require.Error(t, err)
}

func TestReportNameForPackage(t *testing.T) {
	name, ok := ReportNameForPackage(PackageGoUT)
	require.True(t, ok)
	assert.Equal(t, "report.xml", name)

	name, ok = ReportNameForPackage(PackagePyUT)
	require.True(t, ok)
	assert.Equal(t, "report.json", name)

	_, ok = ReportNameForPackage("java_ut")
	assert.False(t, ok)
}
