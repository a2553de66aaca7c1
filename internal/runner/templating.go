package runner

import (
	"bufio"
	"bytes"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"
	"text/template"

	"github.com/google/uuid"
)

// TemplateEngine renders per-player path templates such as
// /api/leaderboard/{{randomChoice "zebras" "pandas"}}?player={{playerID}}.
type TemplateEngine struct {
	fileCache map[string][]string
	mu        sync.RWMutex
	funcMap   template.FuncMap
}

// TemplateData is passed to the execution context
type TemplateData struct {
	PlayerID int
	UUID     string
}

// NewTemplateEngine initializes the engine and its functions
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{
		fileCache: make(map[string][]string),
	}

	e.funcMap = template.FuncMap{
		"randomInt":    e.randomInt,
		"randomUUID":   e.randomUUID,
		"randomChoice": e.randomChoice,
		"randomLine":   e.randomLine,
	}

	return e
}

// Preprocess converts the shorthand variables {{playerID}} and {{uuid}} to
// field access on TemplateData.
func (e *TemplateEngine) Preprocess(input string) string {
	s := input
	s = strings.ReplaceAll(s, "{{playerID}}", "{{.PlayerID}}")
	s = strings.ReplaceAll(s, "{{uuid}}", "{{.UUID}}")
	return s
}

// Parse creates a new template with the engine's functions
func (e *TemplateEngine) Parse(name, text string) (*template.Template, error) {
	return template.New(name).Funcs(e.funcMap).Parse(e.Preprocess(text))
}

// Execute runs the template with data
func (e *TemplateEngine) Execute(t *template.Template, data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// PathSet is the run's path list with templated entries parsed once.
type PathSet struct {
	engine *TemplateEngine
	raw    []string
	tmpls  []*template.Template // nil for static paths
}

// Compile parses every path that contains template actions. A parse failure
// is reported as a ValidationError naming the offending path.
func (e *TemplateEngine) Compile(paths []string) (*PathSet, error) {
	ps := &PathSet{
		engine: e,
		raw:    paths,
		tmpls:  make([]*template.Template, len(paths)),
	}
	for i, p := range paths {
		if !strings.Contains(p, "{{") {
			continue
		}
		t, err := e.Parse(fmt.Sprintf("path%d", i), p)
		if err != nil {
			return nil, &ValidationError{Field: "paths", Reason: fmt.Sprintf("template %q: %v", p, err)}
		}
		ps.tmpls[i] = t
	}
	return ps, nil
}

// Len is the number of paths a player must pass to succeed.
func (ps *PathSet) Len() int {
	return len(ps.raw)
}

// Templated reports whether any path needs per-player rendering.
func (ps *PathSet) Templated() bool {
	for _, t := range ps.tmpls {
		if t != nil {
			return true
		}
	}
	return false
}

// Render produces the concrete paths for one player. On failure it returns
// the template text of the path that could not be rendered.
func (ps *PathSet) Render(playerID int) ([]string, string, error) {
	if !ps.Templated() {
		return ps.raw, "", nil
	}
	data := TemplateData{PlayerID: playerID, UUID: uuid.New().String()}
	out := make([]string, len(ps.raw))
	for i, p := range ps.raw {
		if ps.tmpls[i] == nil {
			out[i] = p
			continue
		}
		s, err := ps.engine.Execute(ps.tmpls[i], data)
		if err != nil {
			return nil, p, err
		}
		out[i] = s
	}
	return out, "", nil
}

// --- Functions ---

func (e *TemplateEngine) randomInt(min, max int) int {
	if max <= min {
		return min
	}
	return rand.Intn(max-min) + min
}

func (e *TemplateEngine) randomUUID() string {
	return uuid.New().String()
}

func (e *TemplateEngine) randomChoice(choices ...string) string {
	if len(choices) == 0 {
		return ""
	}
	return choices[rand.Intn(len(choices))]
}

func (e *TemplateEngine) randomLine(filename string) (string, error) {
	e.mu.RLock()
	lines, ok := e.fileCache[filename]
	e.mu.RUnlock()

	if ok {
		if len(lines) == 0 {
			return "", nil
		}
		return lines[rand.Intn(len(lines))], nil
	}

	// Load file (Lazy load)
	e.mu.Lock()
	defer e.mu.Unlock()

	// Double check
	if lines, ok = e.fileCache[filename]; ok {
		if len(lines) == 0 {
			return "", nil
		}
		return lines[rand.Intn(len(lines))], nil
	}

	content, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("failed to read file '%s': %w", filename, err)
	}

	scanner := bufio.NewScanner(bytes.NewReader(content))
	var loaded []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			loaded = append(loaded, line)
		}
	}

	e.fileCache[filename] = loaded
	if len(loaded) == 0 {
		return "", nil
	}

	return loaded[rand.Intn(len(loaded))], nil
}
