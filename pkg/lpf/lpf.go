// Package lpf reads Lattice preference (LPF) constraint files just far
// enough to recover LOCATE COMP placements, which the emitter uses to name
// I/O ports after their logical signals. Everything else in the file is
// ignored.
package lpf

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/sirupsen/logrus"
)

// lpfLexer tokenizes an LPF file: semicolon-terminated commands made of
// bare words and quoted strings, with shell- and C-style line comments.
var lpfLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `(?:#|//)[^\n]*`},
	{Name: "Whitespace", Pattern: `[\s]+`},
	{Name: "String", Pattern: `"[^"]*"`},
	{Name: "Semi", Pattern: `;`},
	{Name: "Word", Pattern: `[^\s;"]+`},
})

type lpfFile struct {
	Commands []*lpfCommand `parser:"( Semi | @@ )*"`
}

type lpfCommand struct {
	Words []string `parser:"( @Word | @String )+ Semi"`
}

var parser = participle.MustBuild[lpfFile](
	participle.Lexer(lpfLexer),
	participle.Elide("Comment", "Whitespace"),
	participle.Unquote("String"),
)

// Parse extracts LOCATE COMP placements from an LPF file, returning a map
// from site name to component name. A LOCATE command that does not match
// the expected LOCATE COMP <comp> SITE <site> shape is logged and skipped;
// only unreadable input is an error.
func Parse(r io.Reader, log logrus.FieldLogger) (map[string]string, error) {
	file, err := parser.Parse("", r)
	if err != nil {
		return nil, fmt.Errorf("lpf: parse error: %w", err)
	}

	sites := make(map[string]string)
	for _, cmd := range file.Commands {
		if len(cmd.Words) == 0 || !strings.EqualFold(cmd.Words[0], "LOCATE") {
			continue
		}
		if len(cmd.Words) != 5 || cmd.Words[1] != "COMP" || cmd.Words[3] != "SITE" {
			log.Warnf("ignoring malformed LOCATE in LPF: %s", strings.Join(cmd.Words, " "))
			continue
		}
		sites[cmd.Words[4]] = cmd.Words[2]
	}
	return sites, nil
}

// ParseFile reads and parses an LPF file from disk.
func ParseFile(path string, log logrus.FieldLogger) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lpf: failed to open file: %w", err)
	}
	defer f.Close()
	return Parse(f, log)
}
