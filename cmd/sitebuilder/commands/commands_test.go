package commands

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/testutil"
)

func run(t *testing.T, args ...string) error {
	t.Helper()
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("sitebuilder"),
		kong.Vars{"version": "test"},
		kong.Exit(func(code int) { t.Fatalf("unexpected exit %d", code) }),
	)
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return ctx.Run(&Global{Logger: slog.Default()}, cli)
}

func TestBuildCommand(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "site")
	out := filepath.Join(dir, "dist")
	manifestPath := filepath.Join(dir, "manifest.json")
	testutil.WriteTree(t, src, map[string]string{
		"index.md": "---\ntitle: Home\n---\n# Hello\n",
		"main.css": "body{}",
	})

	err := run(t, "--config", filepath.Join(dir, "missing.yaml"),
		"build", "--source", src, "--output", out, "--manifest", manifestPath)
	require.NoError(t, err)

	testutil.NewFileAssertions(t, out).
		AssertFiles("index.html", "main.css").
		AssertFileContains("index.html", "<title>Home | Disconnected Systems</title>")
	require.FileExists(t, manifestPath)
}

func TestBuildCommandRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	err := run(t, "--config", filepath.Join(dir, "missing.yaml"),
		"build", "--source", dir, "--output", dir)
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
}

func TestBuildCommandReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "pages")
	out := filepath.Join(dir, "public")
	testutil.WriteFile(t, src, "about.html", "<p>about</p>")
	testutil.WriteFile(t, dir, "sitebuilder.yaml", "source:\n  directory: "+src+"\noutput:\n  directory: "+out+"\n")
	cfgPath := filepath.Join(dir, "sitebuilder.yaml")

	require.NoError(t, run(t, "--config", cfgPath, "build"))
	testutil.NewFileAssertions(t, out).AssertFileContains("about/index.html", "<p>about</p>")
}

func TestBuildFlagsOverrideConfig(t *testing.T) {
	cfg := config.Default()
	cmd := &BuildCmd{Source: "src", Output: "out", Layouts: "tpl", Manifest: "m.json", FailFast: true, NoClean: true}
	cmd.apply(cfg)

	require.Equal(t, "src", cfg.Source.Directory)
	require.Equal(t, "out", cfg.Output.Directory)
	require.Equal(t, "tpl", cfg.Layouts.Directory)
	require.Equal(t, "m.json", cfg.Build.Manifest)
	require.True(t, cfg.Build.FailFast)
	require.False(t, cfg.Output.ShouldClean())
}

func TestBuildFlagsKeepConfigWhenUnset(t *testing.T) {
	cfg := config.Default()
	(&BuildCmd{}).apply(cfg)
	require.Equal(t, config.Default().Source.Directory, cfg.Source.Directory)
	require.True(t, cfg.Output.ShouldClean())
	require.False(t, cfg.Build.FailFast)
}

func TestPreviewFlagsOverrideConfig(t *testing.T) {
	cfg := config.Default()
	(&PreviewCmd{Source: "src", Output: "out", Layouts: "tpl", Port: 8080, NoMetrics: true}).apply(cfg)

	require.Equal(t, "src", cfg.Source.Directory)
	require.Equal(t, "out", cfg.Output.Directory)
	require.Equal(t, "tpl", cfg.Layouts.Directory)
	require.Equal(t, 8080, cfg.Preview.Port)
	require.False(t, cfg.Preview.MetricsEnabled())
}

func TestInitCommand(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "sitebuilder.yaml")

	require.NoError(t, run(t, "--config", cfgPath, "init"))
	require.FileExists(t, cfgPath)

	err := run(t, "--config", cfgPath, "init")
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))

	require.NoError(t, run(t, "--config", cfgPath, "init", "--force"))
}

func TestUnknownLogLevelIsRejected(t *testing.T) {
	parser, err := kong.New(&CLI{}, kong.Name("sitebuilder"), kong.Vars{"version": "test"})
	require.NoError(t, err)

	_, err = parser.Parse([]string{"--log-level", "loud", "init"})
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
	require.ErrorContains(t, err, "valid options: debug, error, info, warn, warning")

	_, err = parser.Parse([]string{"--log-level", "WARN", "init"})
	require.NoError(t, err)
}
