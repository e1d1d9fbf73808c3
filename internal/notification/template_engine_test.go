package notification

import (
	"reflect"
	"testing"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name    string
		content string
		vars    map[string]interface{}
		want    string
	}{
		{
			name:    "no placeholders is identity",
			content: "Hola, bienvenido al gimnasio.",
			vars:    map[string]interface{}{"name": "Ana"},
			want:    "Hola, bienvenido al gimnasio.",
		},
		{
			name:    "simple substitution",
			content: "Hola {{name}}",
			vars:    map[string]interface{}{"name": "Ana"},
			want:    "Hola Ana",
		},
		{
			name:    "unresolved key left literal",
			content: "Hola {{name}}",
			vars:    map[string]interface{}{},
			want:    "Hola {{name}}",
		},
		{
			name:    "whitespace around key tolerated",
			content: "Hola {{  name  }}, tu plan {{ membershipType }} vence pronto",
			vars:    map[string]interface{}{"name": "Ana", "membershipType": "MONTHLY"},
			want:    "Hola Ana, tu plan MONTHLY vence pronto",
		},
		{
			name:    "keys are case sensitive",
			content: "Hola {{Name}}",
			vars:    map[string]interface{}{"name": "Ana"},
			want:    "Hola {{Name}}",
		},
		{
			name:    "all occurrences replaced",
			content: "{{name}} y {{name}}",
			vars:    map[string]interface{}{"name": "Ana"},
			want:    "Ana y Ana",
		},
		{
			name:    "non-string values stringified",
			content: "Te quedan {{days}} dias",
			vars:    map[string]interface{}{"days": 7},
			want:    "Te quedan 7 dias",
		},
		{
			name:    "mixed resolved and unresolved",
			content: "{{name}}: {{expirationDate}}",
			vars:    map[string]interface{}{"name": "Ana"},
			want:    "Ana: {{expirationDate}}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.content, tt.vars); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractVariables(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"none", "plain text", nil},
		{"single", "Hola {{name}}", []string{"name"}},
		{"ordered dedup", "{{name}} {{date}} {{name}}", []string{"name", "date"}},
		{"whitespace", "{{ name }} and {{  other  }}", []string{"name", "other"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractVariables(tt.content); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractVariables() = %v, want %v", got, tt.want)
			}
		})
	}
}
