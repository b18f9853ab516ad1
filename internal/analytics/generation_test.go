package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerationForRelationship(t *testing.T) {
	tests := []struct {
		relationship string
		expected     int
	}{
		{"maternal_grandmother", -2},
		{"grandfather", -2},
		{"mother", -1},
		{"father", -1},
		{"paternal_uncle", -1},
		{"aunt", -1},
		{"brother", 0},
		{"sister", 0},
		{"cousin", 0},
		{"half_sister", 0},
		{"son", 1},
		{"daughter", 1},
		{"niece", 1},
		{"grandson", 2},
		{"granddaughter", 2},
	}

	for _, tt := range tests {
		t.Run(tt.relationship, func(t *testing.T) {
			assert.Equal(t, tt.expected, GenerationForRelationship(tt.relationship))
		})
	}
}

func TestGenerationForRelationship_Unknown(t *testing.T) {
	// 未知关系按同代处理，不报错
	assert.Equal(t, 0, GenerationForRelationship("godparent"))
	assert.Equal(t, 0, GenerationForRelationship(""))
}

func TestClosenessWeight(t *testing.T) {
	assert.Equal(t, 0.5, ClosenessWeight(-1))
	assert.Equal(t, 0.3, ClosenessWeight(0))
	assert.Equal(t, 0.2, ClosenessWeight(1))
	assert.Equal(t, 0.2, ClosenessWeight(-2))
	assert.Equal(t, 0.1, ClosenessWeight(2))
	assert.Equal(t, 0.1, ClosenessWeight(-3))
}
