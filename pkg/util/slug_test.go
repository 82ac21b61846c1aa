package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
		want  string
	}{
		{"Single word", []string{"Chanel"}, "chanel"},
		{"Multiple words", []string{"Bleu de Chanel"}, "bleu-de-chanel"},
		{"Brand and name", []string{"Dior", "Sauvage Elixir"}, "dior-sauvage-elixir"},
		{"Punctuation collapsed", []string{"L'Homme   Ideal!"}, "l-homme-ideal"},
		{"Digits kept", []string{"212 VIP"}, "212-vip"},
		{"Empty", []string{""}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.parts...))
		})
	}
}
