package chat

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStylize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Sure thing", "Sure thing, man."},
		{"Sure thing.", "Sure thing, man."},
		{"All good, man", "All good, man"},
		{"All good, man.", "All good, man."},
		{"Take it easy, dude!", "Take it easy, dude!"},
		{"Orale, vato", "Orale, vato"},
		{"Later, bro?", "Later, bro?"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Stylize(tt.in))
	}
}

func TestConversation_WindowSlides(t *testing.T) {
	c := NewConversation("")
	for i := 0; i < historyWindow+4; i++ {
		c.Remember("hello", "hey, man.")
	}
	assert.Len(t, c.history, historyWindow)
}

func TestConversation_Messages(t *testing.T) {
	c := NewConversation("be brief")
	c.Remember("first question", "first answer")

	msgs := c.messages("second question")
	// System prompt, one remembered exchange, then the new input.
	require.Len(t, msgs, 4)
}

func TestConversation_DefaultPersona(t *testing.T) {
	c := NewConversation("")
	assert.Equal(t, defaultPersona, c.persona)

	c = NewConversation("custom")
	assert.Equal(t, "custom", c.persona)
}

func TestSpeaker_Muted(t *testing.T) {
	called := false
	speakCommand = func(text string) *exec.Cmd {
		called = true
		return exec.Command("true")
	}
	defer func() {
		speakCommand = func(text string) *exec.Cmd {
			return exec.Command("espeak-ng", "-v", "en+m3", "-s", "160", text)
		}
	}()

	s := NewSpeaker(true)
	require.NoError(t, s.Say("anything"))
	assert.False(t, called)

	s = NewSpeaker(false)
	require.NoError(t, s.Say("anything"))
	assert.True(t, called)
}
