package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/mzml"
	"github.com/meigma/mzml/internal/testutil"
)

// workspace writes a document and a config whose vocabularies are the
// fixture subsets, so no command reaches the network.
func workspace(t *testing.T, data []byte) (doc, cfg string) {
	t.Helper()
	dir := t.TempDir()
	doc = filepath.Join(dir, "run.mzML")
	require.NoError(t, os.WriteFile(doc, data, 0o600))

	psims := filepath.Join(dir, "psi-ms.obo")
	uo := filepath.Join(dir, "uo.obo")
	require.NoError(t, os.WriteFile(psims, []byte(testutil.PSIMSOBO), 0o600))
	require.NoError(t, os.WriteFile(uo, []byte(testutil.UOOBO), 0o600))

	cfg = filepath.Join(dir, "mzml.yaml")
	yaml := fmt.Sprintf("ontology:\n  cacheDir: \"\"\n  psims: %s\n  uo: %s\n", psims, uo)
	require.NoError(t, os.WriteFile(cfg, []byte(yaml), 0o600))
	return doc, cfg
}

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestIndexCommand(t *testing.T) {
	t.Parallel()

	doc, cfg := workspace(t, testutil.MzML())
	out, _, err := run(t, "index", "-c", cfg, doc)
	require.NoError(t, err)
	assert.Contains(t, out, "11 spectra, 1 chromatograms")
	require.FileExists(t, mzml.IndexPath(doc))

	_, logs, err := run(t, "list", "-c", cfg, "--log-level", "debug", doc)
	require.NoError(t, err)
	assert.Contains(t, logs, "using persisted index")
	assert.Contains(t, logs, "strategy=supplied")

	// Rewriting the document invalidates the persisted index.
	require.NoError(t, os.WriteFile(doc, testutil.MzML(testutil.WithSpectra(4)), 0o600))
	out, logs, err = run(t, "list", "-c", cfg, doc)
	require.NoError(t, err)
	assert.Contains(t, logs, "stale")
	assert.Contains(t, out, "4 spectrum records")

	_, _, err = run(t, "list", "-c", cfg, "--index", filepath.Join(t.TempDir(), "none.mzidx"), doc)
	require.Error(t, err)
}

func TestIndexCommand_RemoteNeedsOutput(t *testing.T) {
	t.Parallel()

	_, cfg := workspace(t, testutil.MzML())
	_, _, err := run(t, "index", "-c", cfg, "https://example.invalid/run.mzML")
	require.ErrorContains(t, err, "--output")
}

func TestListCommand(t *testing.T) {
	t.Parallel()

	doc, cfg := workspace(t, testutil.MzML(testutil.Indexed()))
	out, _, err := run(t, "list", "-c", cfg, doc)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "indexedmzML, "))
	for i := range 11 {
		assert.Contains(t, out, testutil.SpectrumID(i))
	}

	out, _, err = run(t, "list", "-c", cfg, "--chromatograms", doc)
	require.NoError(t, err)
	assert.Contains(t, out, testutil.TICID)
	assert.NotContains(t, out, testutil.SpectrumID(0))
}

func TestGetCommand(t *testing.T) {
	t.Parallel()

	doc, cfg := workspace(t, testutil.MzML())
	out, _, err := run(t, "get", "-c", cfg, "--arrays", doc, testutil.SpectrumID(3))
	require.NoError(t, err)

	var s spectrumView
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, testutil.SpectrumID(3), s.ID)
	assert.Equal(t, testutil.MSLevel(3), s.MSLevel)
	require.Len(t, s.Precursors, 1)
	assert.Equal(t, testutil.SpectrumID(testutil.ParentIndex(3)), s.Precursors[0].Parent)
	require.NotNil(t, s.ScanStartTime)
	assert.InDelta(t, testutil.ScanStartTime(3), *s.ScanStartTime, 1e-9)
	assert.InDeltaSlice(t, testutil.SpectrumMZ(3), s.MZ, 1e-4)
	assert.InDeltaSlice(t, testutil.SpectrumIntensity(3), s.Intensity, 1e-2)

	out, _, err = run(t, "get", "-c", cfg, "--chromatogram", doc, testutil.TICID)
	require.NoError(t, err)
	var c chromatogramView
	require.NoError(t, json.Unmarshal([]byte(out), &c))
	assert.Equal(t, testutil.TICID, c.ID)
	assert.Nil(t, c.Time, "arrays are opt-in")

	_, _, err = run(t, "get", "-c", cfg, doc, "scan=404")
	require.ErrorIs(t, err, mzml.ErrNotFound)
}

func TestExtractCommand(t *testing.T) {
	t.Parallel()

	doc, cfg := workspace(t, testutil.MzML())
	target := filepath.Join(t.TempDir(), "subset.mzML")
	_, logs, err := run(t, "extract", "-c", cfg, "--ancestors", "--indexed",
		"--chromatogram", testutil.TICID, "-o", target, doc, testutil.SpectrumID(3))
	require.NoError(t, err)
	assert.Contains(t, logs, "wrote "+target)

	f, err := mzml.OpenFile(target)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, mzml.VariantIndexed, f.Variant())
	assert.Equal(t, []string{testutil.SpectrumID(0), testutil.SpectrumID(3)}, f.SpectrumIDs())
	assert.Equal(t, []string{testutil.TICID}, f.ChromatogramIDs())

	out, _, err := run(t, "extract", "-c", cfg, doc, testutil.SpectrumID(1))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.NotContains(t, out, "indexList")

	_, _, err = run(t, "extract", "-c", cfg, "--indexed", "--plain", doc, testutil.SpectrumID(1))
	require.ErrorContains(t, err, "mutually exclusive")
}

func TestValidateCommand(t *testing.T) {
	t.Parallel()

	doc, cfg := workspace(t, testutil.MzML())
	out, _, err := run(t, "validate", "-c", cfg, doc)
	require.NoError(t, err)
	assert.Contains(t, out, "PASS")

	broken := testutil.MzML(testutil.WithMutation(func(s string) string {
		return strings.ReplaceAll(s,
			`<cvParam cvRef="MS" accession="MS:1000127" name="centroid spectrum" value=""/>`,
			`<cvParam cvRef="MS" accession="MS:1000127" name="centroid spectrum" value=""/><cvParam cvRef="MS" accession="MS:1000128" name="profile spectrum" value=""/>`)
	}))
	require.NoError(t, os.WriteFile(doc, broken, 0o600))
	out, _, err = run(t, "validate", "-c", cfg, "--reindex", doc)
	require.ErrorIs(t, err, errReported)
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "MS:1000128")
	assert.Contains(t, out, "[at-most-one]")
}

func TestValidationErrors(t *testing.T) {
	t.Parallel()

	assert.Nil(t, validationErrors(mzml.ErrNotFound))
}
