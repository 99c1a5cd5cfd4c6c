package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCacheKey(t *testing.T) {
	tests := []struct {
		name        string
		serviceName string
		objectType  string
		identifier  string
		paramsKey   []string
		expectedKey string
	}{
		{
			name:        "without paramsKey",
			serviceName: "llm",
			objectType:  "completion",
			identifier:  "abc",
			expectedKey: "studybyte:llm:completion:abc",
		},
		{
			name:        "with empty paramsKey",
			serviceName: "llm",
			objectType:  "completion",
			identifier:  "abc",
			paramsKey:   []string{},
			expectedKey: "studybyte:llm:completion:abc",
		},
		{
			name:        "with multiple paramsKey",
			serviceName: "embedding",
			objectType:  "openai",
			identifier:  "123",
			paramsKey:   []string{"v1", "small"},
			expectedKey: "studybyte:embedding:openai:123:v1_small",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedKey, GenerateCacheKey(tt.serviceName, tt.objectType, tt.identifier, tt.paramsKey...))
		})
	}
}

func TestHashString(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", HashString(""))
	assert.Len(t, HashString("some text"), 64)
	assert.Equal(t, HashString("a"), HashString("a"))
	assert.NotEqual(t, HashString("a"), HashString("b"))
}
