package stages

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vasanthadwara/Text-Annotation-Pipeline/internal/domain"
)

func TestNewTextGrouperStage(t *testing.T) {
	tests := []struct {
		name      string
		stageName string
		config    TextGrouperConfig
		wantError bool
	}{
		{
			name:      "default configuration",
			stageName: "grouper",
			config:    DefaultTextGrouperConfig(),
			wantError: false,
		},
		{
			name:      "empty stage name",
			stageName: "",
			config:    DefaultTextGrouperConfig(),
			wantError: true,
		},
		{
			name:      "max distance out of range",
			stageName: "grouper",
			config: TextGrouperConfig{
				NearDuplicate: NearDuplicateConfig{Enabled: true, MaxDistance: 99},
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage, err := NewTextGrouperStage(tt.stageName, tt.config)
			if tt.wantError {
				assert.Error(t, err)
				assert.Nil(t, stage)
			} else {
				assert.NoError(t, err)
				require.NotNil(t, stage)
			}
		})
	}
}

func TestTextGrouperStage_Execute(t *testing.T) {
	stage, err := NewTextGrouperStage("grouper", DefaultTextGrouperConfig())
	require.NoError(t, err)

	annotations := []domain.Annotation{
		{Text: "hello", Label: "greeting", AnnotatorID: "a1"},
		{Text: "world", Label: "noun", AnnotatorID: "a2"},
		{Text: "hello", Label: "salutation", AnnotatorID: "a3"},
		{Text: "hello", Label: "greeting", AnnotatorID: "a4"},
	}

	state := domain.With(domain.NewState(), domain.KeyAnnotations, annotations)
	state, err = stage.Execute(context.Background(), state)
	require.NoError(t, err)

	groups, ok := domain.Get(state, domain.KeyGroups)
	require.True(t, ok)

	// Keys in first-seen order, every annotation in exactly one group.
	assert.Equal(t, []string{"hello", "world"}, groups.Texts)

	hello, ok := groups.Group("hello")
	require.True(t, ok)
	assert.Len(t, hello, 3)
	assert.Equal(t, "a1", hello[0].AnnotatorID)
	assert.Equal(t, "a3", hello[1].AnnotatorID)
	assert.Equal(t, "a4", hello[2].AnnotatorID)

	world, ok := groups.Group("world")
	require.True(t, ok)
	assert.Len(t, world, 1)

	total := 0
	for _, text := range groups.Texts {
		members, _ := groups.Group(text)
		total += len(members)
	}
	assert.Equal(t, len(annotations), total)

	// Scan disabled by default.
	pairs, ok := domain.Get(state, domain.KeyNearDuplicatePairs)
	require.True(t, ok)
	assert.Equal(t, 0, pairs)
}

func TestTextGrouperStage_ExecuteEmpty(t *testing.T) {
	stage, err := NewTextGrouperStage("grouper", DefaultTextGrouperConfig())
	require.NoError(t, err)

	state := domain.With(domain.NewState(), domain.KeyAnnotations, []domain.Annotation{})
	state, err = stage.Execute(context.Background(), state)
	require.NoError(t, err)

	groups, ok := domain.Get(state, domain.KeyGroups)
	require.True(t, ok)
	assert.Equal(t, 0, groups.Len())
}

func TestTextGrouperStage_ExecuteNoAnnotations(t *testing.T) {
	stage, err := NewTextGrouperStage("grouper", DefaultTextGrouperConfig())
	require.NoError(t, err)

	_, err = stage.Execute(context.Background(), domain.NewState())
	assert.ErrorIs(t, err, ErrNoAnnotations)
}

func TestTextGrouperStage_NearDuplicates(t *testing.T) {
	tests := []struct {
		name        string
		maxDistance int
		texts       []string
		wantPairs   int
	}{
		{
			name:        "identical keys are one group, not a pair",
			maxDistance: 2,
			texts:       []string{"hello", "hello"},
			wantPairs:   0,
		},
		{
			name:        "single edit apart",
			maxDistance: 2,
			texts:       []string{"hello", "hallo"},
			wantPairs:   1,
		},
		{
			name:        "beyond max distance",
			maxDistance: 1,
			texts:       []string{"hello", "hallu"},
			wantPairs:   0,
		},
		{
			name:        "three mutually close keys",
			maxDistance: 2,
			texts:       []string{"cat", "bat", "rat"},
			wantPairs:   3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage, err := NewTextGrouperStage("grouper", TextGrouperConfig{
				NearDuplicate: NearDuplicateConfig{Enabled: true, MaxDistance: tt.maxDistance},
			})
			require.NoError(t, err)

			annotations := make([]domain.Annotation, 0, len(tt.texts))
			for _, text := range tt.texts {
				annotations = append(annotations, domain.Annotation{Text: text, Label: "x"})
			}

			state := domain.With(domain.NewState(), domain.KeyAnnotations, annotations)
			state, err = stage.Execute(context.Background(), state)
			require.NoError(t, err)

			pairs, ok := domain.Get(state, domain.KeyNearDuplicatePairs)
			require.True(t, ok)
			assert.Equal(t, tt.wantPairs, pairs)
		})
	}
}

func TestNewTextGrouperFromConfig(t *testing.T) {
	stage, err := NewTextGrouperFromConfig("grouper", map[string]any{
		"near_duplicate": map[string]any{"enabled": true, "max_distance": 3},
	})
	require.NoError(t, err)
	assert.Equal(t, "grouper", stage.Name())
	require.NoError(t, stage.Validate())
}
