package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedYAML = `
users:
  - name: Admin
    email: admin@example.com
    password: admin-password
    role: admin
topics:
  - title: Go basics
    questions:
      - text: Which keyword declares a constant?
        order: 1
        answers:
          - text: const
            correct: true
          - text: let
      - text: Reference-like types?
        type: multi
        order: 1
        answers:
          - text: slice
            correct: true
          - text: map
            correct: true
          - text: array
      - text: Hidden
        order: 5
        active: false
        answers:
          - text: "yes"
          - text: "no"
            correct: true
`

func TestImportSeed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seed, err := ParseSeed([]byte(seedYAML))
	require.NoError(t, err)

	report, err := env.importer.Import(ctx, seed)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Users)
	assert.Equal(t, 1, report.Topics)
	assert.Equal(t, 3, report.Questions)

	topic, err := env.topics.TopicRepo.FindByTitle("Go basics")
	require.NoError(t, err)

	links, err := env.topics.ListLinks(topic.ID)
	require.NoError(t, err)
	require.Len(t, links, 3)
	// the second question took order 1 and pushed the first one down
	assert.Equal(t, "Reference-like types?", links[0].Question.Text)
	assert.Equal(t, uint(2), links[1].Order)
	assert.False(t, links[2].Active)

	admin, err := env.auth.UserRepo.FindByEmail("admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, "admin", string(admin.Role))

	again, err := env.importer.Import(ctx, seed)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Users)
	assert.Equal(t, 0, again.Topics)
	assert.Equal(t, 1, again.SkippedTopics)
}

func TestImportRejectsInvalidQuestion(t *testing.T) {
	env := newTestEnv(t)

	seed, err := ParseSeed([]byte(`
topics:
  - title: Broken
    questions:
      - text: no correct answer
        answers:
          - text: a
          - text: b
`))
	require.NoError(t, err)

	_, err = env.importer.Import(context.Background(), seed)
	assert.Error(t, err)
}
