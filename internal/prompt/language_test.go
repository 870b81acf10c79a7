package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyDetectsLanguage(t *testing.T) {
	tag, name := classify("Ciao, grazie mille")
	assert.Equal(t, "it", tag)
	assert.Equal(t, "Italian", name)

	tag, _ = classify("привет, как дела")
	assert.Equal(t, "ru", tag)

	tag, name = classify("apa kabar gue hari ini")
	assert.Equal(t, "id", tag)
	assert.Equal(t, "Indonesian", name)
}

func TestApplyLanguageLockLeavesIndonesianUnchanged(t *testing.T) {
	template := "literally gue banget sih"
	out, tag := applyLanguageLock(template, "apa kabar?")
	assert.Equal(t, "id", tag)
	assert.Equal(t, template, out)
}

func TestApplyLanguageLockStripsJakselAndAddsDirective(t *testing.T) {
	template := "literally gue think banget it's worth it"
	out, tag := applyLanguageLock(template, "hello there, how are you?")
	assert.Equal(t, "en", tag)
	assert.True(t, strings.Contains(out, "IMPORTANT: respond entirely in English"))
	assert.False(t, strings.Contains(strings.ToLower(out), "gue"))
	assert.False(t, strings.Contains(strings.ToLower(out), "banget"))
}

func TestGreetingForShortGreetingsOnly(t *testing.T) {
	reply, ok := greetingFor("hello")
	assert.True(t, ok)
	assert.NotEmpty(t, reply)

	_, ok = greetingFor("hello, I have a long question about visas")
	assert.False(t, ok)

	_, ok = greetingFor("")
	assert.False(t, ok)
}
