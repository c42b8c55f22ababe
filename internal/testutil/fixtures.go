package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mcoot/eventgames/internal/model"
	"github.com/mcoot/eventgames/internal/storage"
)

// CreateParticipant stores a participant directly, bypassing registration
func CreateParticipant(t *testing.T, store storage.Storage, id, name, team string) *model.Participant {
	t.Helper()
	p := &model.Participant{
		ID:          model.ParticipantID(id),
		DisplayName: name,
		Team:        team,
		CreatedAt:   time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.CreateParticipant(context.Background(), p))
	return p
}
