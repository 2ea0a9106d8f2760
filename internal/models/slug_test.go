package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello, World!":              "hello-world",
		"  Spaces   Everywhere  ":    "spaces-everywhere",
		"Go 1.22 — What's New?":      "go-122-whats-new",
		"already-slugged":            "already-slugged",
		"MiXeD CaSe TiTlE":           "mixed-case-title",
		"multiple---hyphens":         "multiple-hyphens",
		"Ünïcödé gets stripped down": "ncd-gets-stripped-down",
	}
	for input, want := range cases {
		assert.Equal(t, want, Slugify(input), "Slugify(%q)", input)
	}
}

func TestMakeExcerpt(t *testing.T) {
	assert.Equal(t, "Plain text.", makeExcerpt("<p>Plain <b>text</b>.</p>", 297))

	long := ""
	for i := 0; i < 100; i++ {
		long += "word "
	}
	excerpt := makeExcerpt(long, 297)
	assert.LessOrEqual(t, len([]rune(excerpt)), 300)
	assert.Contains(t, excerpt, "...")
}
