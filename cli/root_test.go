package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/compozy/iconpipe/cli/helpers"
	"github.com/compozy/iconpipe/engine/core"
	"github.com/compozy/iconpipe/pkg/config"
	cp "github.com/otiai10/copy"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const squareSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 16 16"><path fill="#fcfcfc" d="M0 0h16v16H0z"/></svg>`

func execute(t *testing.T, fs afero.Fs, stdin string, args ...string) (string, error) {
	t.Helper()
	stdout, stderr, err := executeStreams(t, fs, stdin, args...)
	return stdout + stderr, err
}

func executeStreams(t *testing.T, fs afero.Fs, stdin string, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd(fs)
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append(args, "--env-file", "", "--log-level", "disabled"))
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func svgTree(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, body := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(body), 0o644))
	}
	return fs
}

func TestSetupGlobalConfig(t *testing.T) {
	t.Run("Should inject YAML values with CLI flags taking precedence", func(t *testing.T) {
		// Arrange
		dir := t.TempDir()
		cfgPath := filepath.Join(dir, "iconpipe.yaml")
		yamlBody := "raster:\n  png_dir: yaml/png\n  supersample: 2\nexport:\n  color: \"#00ff00\"\n"
		require.NoError(t, os.WriteFile(cfgPath, []byte(yamlBody), 0o600))
		root := newRootCmd(afero.NewMemMapFs())
		cmd, _, err := root.Find([]string{"rasterize"})
		require.NoError(t, err)
		cmd.SetContext(context.Background())
		require.NoError(t, cmd.ParseFlags([]string{
			"--config", cfgPath, "--env-file", "", "--png-dir", "cli/png",
		}))

		// Act
		err = SetupGlobalConfig(cmd)

		// Assert
		require.NoError(t, err)
		cfg := helpers.ConfigFromCommand(cmd)
		assert.Equal(t, "cli/png", cfg.Raster.PNGDir)
		assert.Equal(t, 2, cfg.Raster.Supersample)
		assert.Equal(t, "#00ff00", cfg.Export.Color)
		manager := config.ManagerFromContext(cmd.Context())
		assert.Equal(t, config.SourceCLI, manager.Service.GetSource("raster.png_dir"))
		assert.Equal(t, config.SourceYAML, manager.Service.GetSource("raster.supersample"))
	})

	t.Run("Should reject an invalid configuration", func(t *testing.T) {
		_, err := execute(t, afero.NewMemMapFs(), "", "providers", "--svg-dir", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validation failed")
	})
}

func TestRasterizeCmd(t *testing.T) {
	t.Run("Should write four PNG variants per file for the chosen provider", func(t *testing.T) {
		// Arrange
		fs := svgTree(t, map[string]string{
			"svg/mdi/home.svg":         squareSVG,
			"svg/mdi/nested/star.svg":  squareSVG,
			"svg/carbon/unrelated.svg": squareSVG,
		})

		// Act
		out, err := execute(t, fs, "", "rasterize", "--provider", "mdi")

		// Assert
		require.NoError(t, err)
		for _, base := range []string{"png/mdi/home", "png/mdi/nested/star"} {
			for _, w := range []string{"24", "48", "64", "128"} {
				exists, err := afero.Exists(fs, base+"_"+w+".png")
				require.NoError(t, err)
				assert.True(t, exists, base+"_"+w)
			}
		}
		exists, err := afero.DirExists(fs, "png/carbon")
		require.NoError(t, err)
		assert.False(t, exists)
		assert.Contains(t, out, "Progress: 1/2 (50.00%)")
		assert.Contains(t, out, "Progress: 2/2 (100.00%)")
	})

	t.Run("Should prompt until a valid number is entered", func(t *testing.T) {
		fs := svgTree(t, map[string]string{
			"svg/carbon/a.svg": squareSVG,
			"svg/mdi/b.svg":    squareSVG,
		})

		stdout, stderr, err := executeStreams(t, fs, "7\nabc\n2\n", "rasterize")

		require.NoError(t, err)
		assert.Contains(t, stderr, "1. carbon\n2. mdi\n")
		assert.Equal(t, 2, strings.Count(stderr, "Invalid selection. Please try again."))
		var res RasterResult
		require.NoError(t, json.Unmarshal([]byte(stdout), &res))
		assert.Equal(t, "mdi", res.Provider)
		exists, err := afero.Exists(fs, "png/mdi/b_128.png")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("Should fail when there are no providers", func(t *testing.T) {
		_, err := execute(t, afero.NewMemMapFs(), "", "rasterize", "--provider", "mdi")

		require.Error(t, err)
		assert.True(t, core.HasCode(err, core.CodeNoProviders))
	})

	t.Run("Should fail for an unknown provider", func(t *testing.T) {
		fs := svgTree(t, map[string]string{"svg/mdi/a.svg": squareSVG})

		_, err := execute(t, fs, "", "rasterize", "--provider", "nope")

		require.Error(t, err)
		assert.True(t, core.HasCode(err, core.CodeInvalidSelection))
	})

	t.Run("Should count a broken file as failed and keep going", func(t *testing.T) {
		fs := svgTree(t, map[string]string{
			"svg/mdi/a.svg": "not an svg at all",
			"svg/mdi/b.svg": squareSVG,
		})

		stdout, stderr, err := executeStreams(t, fs, "", "rasterize", "-p", "1")

		require.NoError(t, err)
		var res RasterResult
		require.NoError(t, json.Unmarshal([]byte(stdout), &res))
		assert.Contains(t, stderr, "Progress: 2/2 (100.00%)")
		assert.Equal(t, "mdi", res.Provider)
		assert.Equal(t, core.Snapshot{Total: 2, Processed: 2, Succeeded: 1, Failed: 1}, res.Files)
	})
}

func TestExportCmd(t *testing.T) {
	t.Run("Should export a cached package and rasterize the result", func(t *testing.T) {
		// Arrange
		dir := t.TempDir()
		cacheDir := filepath.Join(dir, "cache")
		require.NoError(t, cp.Copy(filepath.Join("testdata", "iconify"), filepath.Join(cacheDir, "package")))
		svgDir := filepath.Join(dir, "svg")
		pngDir := filepath.Join(dir, "png")
		fs := afero.NewOsFs()

		// Act
		stdout, _, err := executeStreams(t, fs, "", "run",
			"--cache-dir", cacheDir, "--svg-dir", svgDir, "--png-dir", pngDir, "--provider", "demo")

		// Assert
		require.NoError(t, err)
		var res runResult
		require.NoError(t, json.Unmarshal([]byte(stdout), &res))
		assert.Equal(t, "cached", res.Export.Package.Version)
		assert.Equal(t, 2, res.Export.Summary.Written)
		assert.Equal(t, 1, res.Export.Summary.Dropped)
		assert.Equal(t, 2, res.Raster.Files.Succeeded)

		square, err := os.ReadFile(filepath.Join(svgDir, "demo", "square.svg"))
		require.NoError(t, err)
		assert.Contains(t, string(square), "#fcfcfc")
		assert.NoFileExists(t, filepath.Join(svgDir, "demo", "empty.svg"))
		assert.FileExists(t, filepath.Join(pngDir, "demo", "dot_64.png"))
	})

	t.Run("Should filter icon sets with include globs", func(t *testing.T) {
		dir := t.TempDir()
		cacheDir := filepath.Join(dir, "cache")
		require.NoError(t, cp.Copy(filepath.Join("testdata", "iconify"), filepath.Join(cacheDir, "package")))
		svgDir := filepath.Join(dir, "svg")

		_, err := execute(t, afero.NewOsFs(), "", "export",
			"--cache-dir", cacheDir, "--svg-dir", svgDir, "--include", "mdi*")

		require.NoError(t, err)
		assert.NoDirExists(t, filepath.Join(svgDir, "demo"))
	})
}

func TestProvidersCmd(t *testing.T) {
	t.Run("Should print a numbered list", func(t *testing.T) {
		fs := svgTree(t, map[string]string{
			"svg/mdi/a.svg":    squareSVG,
			"svg/carbon/b.svg": squareSVG,
		})

		out, err := execute(t, fs, "", "providers")

		require.NoError(t, err)
		assert.Equal(t, "1. carbon\n2. mdi\n", out)
	})

	t.Run("Should print JSON on request", func(t *testing.T) {
		fs := svgTree(t, map[string]string{"svg/mdi/a.svg": squareSVG})

		out, err := execute(t, fs, "", "providers", "--json")

		require.NoError(t, err)
		assert.JSONEq(t, `{"providers":["mdi"]}`, out)
	})
}

func TestConfigShowCmd(t *testing.T) {
	t.Run("Should show flag overrides with their source", func(t *testing.T) {
		out, err := execute(t, afero.NewMemMapFs(), "", "config", "show", "--sources", "--png-dir", "out/png")

		require.NoError(t, err)
		assert.Regexp(t, `raster\.png_dir\s+out/png\s+cli`, out)
		assert.Regexp(t, `raster\.sizes\s+24,48,64,128\s+default`, out)
		assert.Regexp(t, `acquire\.timeout\s+5m0s\s+default`, out)
	})

	t.Run("Should render JSON with koanf keys", func(t *testing.T) {
		out, err := execute(t, afero.NewMemMapFs(), "", "config", "show", "--format", "json")

		require.NoError(t, err)
		var doc struct {
			Config map[string]map[string]any `json:"config"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		assert.Equal(t, "#fcfcfc", doc.Config["export"]["color"])
		assert.Equal(t, "5m0s", doc.Config["acquire"]["timeout"])
	})

	t.Run("Should reject unknown formats", func(t *testing.T) {
		_, err := execute(t, afero.NewMemMapFs(), "", "config", "show", "--format", "xml")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported format")
	})
}

func TestVersionCmd(t *testing.T) {
	t.Run("Should print build information", func(t *testing.T) {
		out, err := execute(t, afero.NewMemMapFs(), "", "version")

		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "iconpipe "))
	})
}
