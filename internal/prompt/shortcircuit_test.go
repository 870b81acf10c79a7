package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckGreetings(t *testing.T) {
	reply, ok := CheckGreetings("hi")
	assert.True(t, ok)
	assert.NotEmpty(t, reply)

	reply, ok = CheckGreetings("halo")
	assert.True(t, ok)
	assert.NotEmpty(t, reply)

	_, ok = CheckGreetings("how much does a KITAS cost?")
	assert.False(t, ok)
}

func TestCheckCasualConversation(t *testing.T) {
	assert.True(t, CheckCasualConversation("how's the weather today?"))
	assert.False(t, CheckCasualConversation("what's the cost of a PT PMA license?"))
	assert.False(t, CheckCasualConversation(""))
}

func TestCheckCasualConversationBusinessKeywordWins(t *testing.T) {
	// Short enough and Latin-script, but mentions "visa" so it must not
	// short-circuit even though it would otherwise pass the length check.
	assert.False(t, CheckCasualConversation("visa?"))
}

func TestCheckIdentityQuestions(t *testing.T) {
	reply, ok := CheckIdentityQuestions("who are you?")
	assert.True(t, ok)
	assert.Equal(t, identityReply, reply)

	_, ok = CheckIdentityQuestions("siapa kamu?")
	assert.True(t, ok)

	_, ok = CheckIdentityQuestions("what's the KITAS renewal process?")
	assert.False(t, ok)
}
