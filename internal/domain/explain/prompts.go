package explain

import (
	"embed"
	"fmt"

	"github.com/explainify/explainify-server-go/internal/prompt"
)

//go:embed prompts/*.yml
var promptsFS embed.FS

// Prompts is the explain prompt bundle. The system instruction is constant
// across requests; the user instruction is built per request from the level
// framing and the verbatim input text.
type Prompts struct {
	prompts map[string]map[string]string
}

// NewPrompts loads the embedded explain prompts.
func NewPrompts() (*Prompts, error) {
	loaded, err := prompt.LoadYAMLDir(promptsFS, "prompts")
	if err != nil {
		return nil, fmt.Errorf("load explain prompts: %w", err)
	}
	p := &Prompts{prompts: loaded}

	// Fail fast on an incomplete bundle.
	if _, err := p.System(); err != nil {
		return nil, err
	}
	for _, level := range Levels() {
		if _, err := p.instruction(level); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// System returns the constant system instruction.
func (p *Prompts) System() (string, error) {
	data, err := p.getPrompt("explain")
	if err != nil {
		return "", err
	}
	return prompt.Field(data, "system", "explain.system")
}

// User builds the per-request user instruction. The input text is inserted
// verbatim.
func (p *Prompts) User(level Level, text string) (string, error) {
	data, err := p.getPrompt("explain")
	if err != nil {
		return "", err
	}
	template, err := prompt.Field(data, "user", "explain.user")
	if err != nil {
		return "", err
	}
	instruction, err := p.instruction(level)
	if err != nil {
		return "", err
	}
	formatted, err := prompt.FormatTemplate(template, map[string]string{
		"levelInstruction": instruction,
		"text":             text,
	})
	if err != nil {
		return "", fmt.Errorf("format explain.user: %w", err)
	}
	return formatted, nil
}

// Build returns the (system, user) instruction pair for one request.
func (p *Prompts) Build(level Level, text string) (string, string, error) {
	system, err := p.System()
	if err != nil {
		return "", "", err
	}
	user, err := p.User(level, text)
	if err != nil {
		return "", "", err
	}
	return system, user, nil
}

func (p *Prompts) instruction(level Level) (string, error) {
	data, err := p.getPrompt("explain")
	if err != nil {
		return "", err
	}
	return prompt.Field(data, string(level), "explain."+string(level))
}

func (p *Prompts) getPrompt(name string) (map[string]string, error) {
	if p == nil || p.prompts == nil {
		return nil, fmt.Errorf("explain prompts not initialized")
	}
	return prompt.Get(p.prompts, name, "explain")
}
