package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApproximateTokenCount(t *testing.T) {
	assert.Equal(t, 0, approximateTokenCount(""))
	assert.Equal(t, 1, approximateTokenCount("hello"))
	assert.Equal(t, 2, approximateTokenCount("hello world"))
	// punctuation counts as its own token
	assert.Equal(t, 4, approximateTokenCount("hello, world!"))
	assert.Equal(t, 3, approximateTokenCount("don't stop"))
}

func TestDynamicMaxTokens(t *testing.T) {
	short := []CompletionMessage{
		{Role: "system", Content: "You are a compliance audit assistant."},
		{Role: "user", Content: "Which controls are missing coverage?"},
	}
	budget := dynamicMaxTokens(short)
	used := 0
	for _, msg := range short {
		used += approximateTokenCount(msg.Content)
	}
	assert.Equal(t, chatContextWindow-used-chatReplyReserve, budget)
	assert.Greater(t, budget, chatMinReply)
}

func TestDynamicMaxTokensFloor(t *testing.T) {
	huge := []CompletionMessage{
		{Role: "user", Content: strings.Repeat("word ", chatContextWindow)},
	}
	assert.Equal(t, chatMinReply, dynamicMaxTokens(huge))
}
