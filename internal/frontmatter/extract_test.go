package frontmatter

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation"
)

const testBody = "this is a file"

type titleOnly struct {
	Title string `yaml:"title" toml:"title" json:"title"`
}

type withVector struct {
	Title string  `yaml:"title" toml:"title" json:"title"`
	Vec   []int64 `yaml:"vec" toml:"vec" json:"vec"`
}

type inner struct {
	Value string `yaml:"value" toml:"value" json:"value"`
}

type nested struct {
	Inner inner `yaml:"inner" toml:"inner" json:"inner"`
}

type counter struct {
	I uint32 `yaml:"i" toml:"i" json:"i"`
}

func parseContent[T any](t *testing.T, content string) (foundation.Option[T], string, error) {
	t.Helper()
	meta, body, err := Parse[T](strings.NewReader(content))
	return meta, string(body), err
}

// serializedBlocks renders v as a YAML block, a TOML block, compact JSON and pretty JSON.
func serializedBlocks(t *testing.T, v any) map[string]string {
	t.Helper()

	y, err := yaml.Marshal(v)
	require.NoError(t, err)

	var tb bytes.Buffer
	require.NoError(t, toml.NewEncoder(&tb).Encode(v))

	compact, err := json.Marshal(v)
	require.NoError(t, err)
	pretty, err := json.MarshalIndent(v, "", "  ")
	require.NoError(t, err)

	return map[string]string{
		"yaml":        "---\n" + string(y) + "---",
		"toml":        "+++\n" + tb.String() + "+++",
		"json":        string(compact),
		"json pretty": string(pretty),
	}
}

func TestExtract_MissingFrontmatterReturnsWholeFile(t *testing.T) {
	for _, content := range []string{
		testBody,
		"# Title\n\nparagraph\n",
		"--- not a separator\nbody",
		"---",
		"---\r\ntitle: crlf\r\n---\r\nbody",
		"  {indented json is body}\n",
	} {
		meta, body, err := parseContent[map[string]any](t, content)
		require.NoError(t, err)
		require.True(t, meta.IsNone(), "content %q", content)
		require.Equal(t, content, body)
	}
}

func TestExtract_EmptyBlocksYieldNone(t *testing.T) {
	for _, block := range []string{"---\n---", "+++\n+++", "{}", "{\n}", "---\n   \n\n---", "+++\n\t\n+++"} {
		t.Run(block, func(t *testing.T) {
			meta, body, err := parseContent[map[string]any](t, block+"\n"+testBody)
			require.NoError(t, err)
			require.True(t, meta.IsNone())
			require.Equal(t, testBody, body)
		})
	}
}

func TestExtract_ParsesEveryFormat(t *testing.T) {
	want := titleOnly{Title: "test"}
	for name, block := range serializedBlocks(t, want) {
		t.Run(name, func(t *testing.T) {
			meta, body, err := parseContent[titleOnly](t, block+"\n"+testBody)
			require.NoError(t, err)
			require.Equal(t, foundation.Some(want), meta)
			require.Equal(t, testBody, body)
		})
	}
}

func TestExtract_ParsesVectors(t *testing.T) {
	want := withVector{Title: "test", Vec: []int64{4, 6, 2, -66}}
	for name, block := range serializedBlocks(t, want) {
		t.Run(name, func(t *testing.T) {
			meta, body, err := parseContent[withVector](t, block+"\n"+testBody)
			require.NoError(t, err)
			require.Equal(t, want, meta.Unwrap())
			require.Equal(t, testBody, body)
		})
	}
}

func TestExtract_ParsesNestedStructs(t *testing.T) {
	want := nested{Inner: inner{Value: "Some value"}}
	for name, block := range serializedBlocks(t, want) {
		t.Run(name, func(t *testing.T) {
			meta, body, err := parseContent[nested](t, block+"\n"+testBody)
			require.NoError(t, err)
			require.Equal(t, want, meta.Unwrap())
			require.Equal(t, testBody, body)
		})
	}
}

func TestExtract_ParsesOnlyTheFirstBlock(t *testing.T) {
	first := serializedBlocks(t, titleOnly{Title: "test"})
	extra := serializedBlocks(t, titleOnly{Title: "extra"})

	var extraTOML bytes.Buffer
	require.NoError(t, toml.NewEncoder(&extraTOML).Encode(titleOnly{Title: "extra"}))

	cases := []struct {
		name   string
		first  string
		second string
	}{
		{"yaml then yaml", first["yaml"], extra["yaml"]},
		{"toml then toml body", first["toml"], extraTOML.String() + "+++"},
		{"json then blank line json", first["json"], "\n" + extra["json"]},
		{"json then json", first["json"], extra["json"]},
		{"pretty json then json", first["json pretty"], extra["json"]},
		{"json then pretty json", first["json"], extra["json pretty"]},
		{"pretty json then pretty json", first["json pretty"], extra["json pretty"]},
		{"yaml then toml", first["yaml"], extra["toml"]},
		{"toml then json", first["toml"], extra["json"]},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wantBody := tc.second + "\n" + testBody
			meta, body, err := parseContent[titleOnly](t, tc.first+"\n"+wantBody)
			require.NoError(t, err)
			require.Equal(t, "test", meta.Unwrap().Title)
			require.Equal(t, wantBody, body)
		})
	}
}

func TestExtract_NoContentAfterFrontmatter(t *testing.T) {
	want := counter{I: 1}
	for name, block := range serializedBlocks(t, want) {
		t.Run(name, func(t *testing.T) {
			meta, body, err := parseContent[counter](t, block)
			require.NoError(t, err)
			require.Equal(t, want, meta.Unwrap())
			require.Empty(t, body)
		})
	}
}

func TestExtract_EmptyAndBlankInput(t *testing.T) {
	for _, content := range []string{"", "\n", "\n\n   \n\t"} {
		meta, body, err := parseContent[map[string]any](t, content)
		require.NoError(t, err)
		require.True(t, meta.IsNone())
		require.Empty(t, body)
	}
}

func TestExtract_SkipsLeadingBlankLines(t *testing.T) {
	meta, body, err := parseContent[titleOnly](t, "\n\n---\ntitle: late\n---\nbody")
	require.NoError(t, err)
	require.Equal(t, "late", meta.Unwrap().Title)
	require.Equal(t, "body", body)

	meta, body, err = parseContent[titleOnly](t, "\n  \n{\"title\":\"json\"}\nbody")
	require.NoError(t, err)
	require.Equal(t, "json", meta.Unwrap().Title)
	require.Equal(t, "body", body)
}

func TestExtract_UnterminatedBlockRunsToEnd(t *testing.T) {
	meta, body, err := parseContent[titleOnly](t, "---\ntitle: open\n")
	require.NoError(t, err)
	require.Equal(t, "open", meta.Unwrap().Title)
	require.Empty(t, body)
}

func TestExtract_JSONSkipsExactlyOneSeparatorByte(t *testing.T) {
	_, body, err := parseContent[titleOnly](t, "{\"title\":\"x\"}\n\nbody")
	require.NoError(t, err)
	require.Equal(t, "\nbody", body)

	_, body, err = parseContent[titleOnly](t, "{\"title\":\"x\"}\r\nbody")
	require.NoError(t, err)
	require.Equal(t, "\nbody", body)
}

func TestExtract_MalformedFrontmatter(t *testing.T) {
	cases := []struct {
		content string
		want    error
	}{
		{"{", ErrJSON},
		{`{"test":"trailing",}`, ErrJSON},
		{"{{:}}", ErrJSON},
		{"+++\ntest: value\n  asd\n+++", ErrTOML},
		{"+++\ntest = \n+++", ErrTOML},
		{"+++\nthis: is yaml \n+++", ErrTOML},
		{"+++\ntitle = \"unterminated\"", ErrTOML},
		{"---\n][\n---", ErrYAML},
		{"---\nlist: [unclosed\n---", ErrYAML},
	}

	for _, tc := range cases {
		t.Run(tc.content, func(t *testing.T) {
			_, _, err := parseContent[map[string]any](t, tc.content+"\n"+testBody)
			require.Error(t, err)
			require.ErrorIs(t, err, tc.want)
			require.NotErrorIs(t, err, ErrIO)
			require.Equal(t, Sniff(strings.SplitAfter(tc.content+"\n", "\n")[0]), ErrorFormat(err))
		})
	}
}

func TestExtract_TypeMismatchIsFormatError(t *testing.T) {
	_, _, err := parseContent[titleOnly](t, "{\"title\": 5}\nbody")
	require.ErrorIs(t, err, ErrJSON)

	_, _, err = parseContent[titleOnly](t, "---\ntitle: [a, b]\n---\nbody")
	require.ErrorIs(t, err, ErrYAML)
}

func TestExtract_LeavesStreamAtBodyStart(t *testing.T) {
	content := "---\ntitle: x\n---\nbody"
	s := NewStream(strings.NewReader(content))

	meta, err := Extract[titleOnly](s)
	require.NoError(t, err)
	require.True(t, meta.IsSome())
	require.Equal(t, int64(strings.Index(content, "body")), s.Offset())
}

var errBoom = errors.New("disk on fire")

type failingReader struct{}

func (failingReader) Read([]byte) (int, error)       { return 0, errBoom }
func (failingReader) Seek(int64, int) (int64, error) { return 0, nil }

func TestExtract_PropagatesReadErrors(t *testing.T) {
	_, err := Extract[titleOnly](NewStream(failingReader{}))
	require.ErrorIs(t, err, ErrIO)
	require.ErrorIs(t, err, errBoom)
}

type pipeOnly struct{ io.Reader }

func TestNewBufferedStream_SupportsNonSeekableSources(t *testing.T) {
	s, err := NewBufferedStream(pipeOnly{strings.NewReader("+++\ntitle = \"piped\"\n+++\nbody")})
	require.NoError(t, err)

	meta, err := Extract[titleOnly](s)
	require.NoError(t, err)
	require.Equal(t, "piped", meta.Unwrap().Title)

	rest, err := io.ReadAll(s)
	require.NoError(t, err)
	require.Equal(t, "body", string(rest))
}

func TestSniff(t *testing.T) {
	require.Equal(t, FormatYAML, Sniff("---\n"))
	require.Equal(t, FormatTOML, Sniff("+++\n"))
	require.Equal(t, FormatJSON, Sniff("{\"a\":1}\n"))
	require.Equal(t, FormatNone, Sniff("--- \n"))
	require.Equal(t, FormatNone, Sniff("---"))
	require.Equal(t, FormatNone, Sniff(""))
	require.Equal(t, "yaml", FormatYAML.String())
	require.Equal(t, "none", FormatNone.String())
}
