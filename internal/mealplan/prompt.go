package mealplan

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"
)

// SystemPrompt establishes the model's persona.
const SystemPrompt = "You are a talented cook & dietician, capable of designing healthy meal plans for a day."

//go:embed prompt.md
var mealPlanPrompt string

var promptTmpl = template.Must(
	template.New("mealplan").
		Funcs(template.FuncMap{"join": strings.Join}).
		Parse(mealPlanPrompt),
)

// BuildPrompt renders the user instruction for req. Ingredients are listed
// verbatim in the given order; the numbers are not range checked.
func BuildPrompt(req Request) (string, error) {
	var buf bytes.Buffer
	if err := promptTmpl.Execute(&buf, req); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Messages returns the two-message exchange sent for req.
func Messages(req Request) ([]Message, error) {
	prompt, err := BuildPrompt(req)
	if err != nil {
		return nil, err
	}
	return []Message{
		{Role: RoleSystem, Content: SystemPrompt},
		{Role: RoleUser, Content: prompt},
	}, nil
}
