// Package rule loads pattern/rewrite rules from YAML and applies them to
// source text through the dispatch engine.
package rule

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/tokrex/tokrex/dispatch"
	"github.com/tokrex/tokrex/internal/cache"
	"github.com/tokrex/tokrex/lexer"
	"github.com/tokrex/tokrex/match"
	"github.com/tokrex/tokrex/token"
)

// Rule pairs a token pattern with a rewrite template. Named captures are
// referenced in the template as :[name].
type Rule struct {
	Name     string `yaml:"name"`
	Pattern  string `yaml:"pattern"`
	Rewrite  string `yaml:"rewrite"`
	Priority int    `yaml:"priority"`
}

// Config is the on-disk shape of a rule file.
type Config struct {
	Rules []Rule `yaml:"rules"`
}

// Load reads a YAML rule file.
func Load(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML rule data.
func Parse(data []byte) ([]Rule, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}
	return cfg.Rules, nil
}

// Applier holds a set of rules compiled into a dispatch engine.
type Applier struct {
	engine *dispatch.Engine
	logger *zap.Logger
	tokens *cache.Cache
}

// NewApplier compiles rules into registrations. Pattern syntax errors are
// reported immediately, attributed to the offending rule.
func NewApplier(rules []Rule, logger *zap.Logger) (*Applier, error) {
	a := &Applier{
		engine: dispatch.NewEngine(),
		logger: logger,
		tokens: cache.New(),
	}
	for _, r := range rules {
		r := r
		handler := func(run *dispatch.Run, m *match.Match) (any, error) {
			out := expand(r.Rewrite, m)
			run.Edits().ReplaceMatch(m, token.Synthetic(token.Text, out))
			if a.logger != nil {
				a.logger.Debug("applied rule",
					zap.String("rule", r.Name),
					zap.Int("at", m.Start),
				)
			}
			return out, nil
		}
		err := a.engine.Register(r.Name, r.Pattern, handler, dispatch.WithPriority(r.Priority))
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", r.Name, err)
		}
	}
	return a, nil
}

// Apply tokenizes source, dispatches the rules over it, and reconstructs
// the edited text. Untouched regions come back byte-identical.
func (a *Applier) Apply(source string) (string, error) {
	toks, err := lexer.Tokenize(source, lexer.Options{})
	if err != nil {
		return "", err
	}
	return a.applyTokens(source, toks)
}

func (a *Applier) applyTokens(source string, toks []token.Token) (string, error) {
	run, err := a.engine.Visit(toks)
	if err != nil {
		return "", err
	}
	return run.Edits().Reconstruct(source)
}

// ApplyFile rewrites one file in place; with dryRun it only reports
// whether the file would change. Token sequences are cached by content,
// so a re-fired event on an unchanged file skips the lexer.
func (a *Applier) ApplyFile(path string, dryRun bool) (changed bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	source := string(data)

	toks, ok := a.tokens.Get(path, source)
	if !ok {
		toks, err = lexer.Tokenize(source, lexer.Options{})
		if err != nil {
			return false, fmt.Errorf("%s: %w", path, err)
		}
		a.tokens.Put(path, source, toks)
	}

	out, err := a.applyTokens(source, toks)
	if err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}
	if out == source {
		return false, nil
	}
	if dryRun {
		return true, nil
	}
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return false, err
	}
	a.tokens.Invalidate(path)
	return true, nil
}

// expand substitutes :[name] holes in the template with the values of the
// match's named captures. Unknown holes stay as written.
func expand(template string, m *match.Match) string {
	var sb strings.Builder
	for i := 0; i < len(template); {
		if template[i] == ':' && i+1 < len(template) && template[i+1] == '[' {
			end := strings.IndexByte(template[i:], ']')
			if end > 0 {
				name := template[i+2 : i+end]
				if cap := m.NamedCapture(name); !cap.Absent() {
					sb.WriteString(m.ValueOf(cap))
					i += end + 1
					continue
				}
			}
		}
		sb.WriteByte(template[i])
		i++
	}
	return sb.String()
}
