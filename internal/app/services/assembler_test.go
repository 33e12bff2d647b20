package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/paperarchive/internal/app/models"
)

func TestResultAssembler_Summaries(t *testing.T) {
	alice := models.User{ID: uuid.New(), Name: "Alice"}
	bob := models.User{ID: uuid.New(), Name: "Bob", Avatar: strPtr("https://files.test/bob.png")}
	users := newMemUserStore(alice, bob)
	a := NewResultAssembler(users)

	gone := uuid.New()
	papers := []models.QuestionPaper{
		{ID: uuid.New(), Title: "first", UploadedBy: bob.ID},
		{ID: uuid.New(), Title: "second", UploadedBy: gone},
		{ID: uuid.New(), Title: "third", UploadedBy: alice.ID},
		{ID: uuid.New(), Title: "fourth", UploadedBy: bob.ID},
	}

	got, err := a.Summaries(context.Background(), papers)
	require.NoError(t, err)
	require.Len(t, got, 4)

	for i := range papers {
		assert.Equal(t, papers[i].ID, got[i].ID, "order is preserved")
	}
	assert.Equal(t, "Bob", got[0].UploadedBy.Name)
	assert.Equal(t, "https://files.test/bob.png", got[0].UploadedBy.Avatar)
	assert.Equal(t, UnknownUploaderName, got[1].UploadedBy.Name)
	assert.Equal(t, gone, got[1].UploadedBy.ID)
	assert.Equal(t, "Alice", got[2].UploadedBy.Name)

	assert.Equal(t, 1, users.lookups)
	assert.ElementsMatch(t, []uuid.UUID{bob.ID, gone, alice.ID}, users.lookupIDs[0])
}

func TestResultAssembler_EmptyInputSkipsLookup(t *testing.T) {
	users := newMemUserStore()
	a := NewResultAssembler(users)

	summaries, err := a.Summaries(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, summaries)
	assert.Empty(t, summaries)

	details, err := a.Details(context.Background(), []models.QuestionPaper{})
	require.NoError(t, err)
	assert.NotNil(t, details)
	assert.Equal(t, 0, users.lookups)
}

func TestResultAssembler_Detail(t *testing.T) {
	uni := "ITU"
	u := models.User{ID: uuid.New(), Name: "Cem", Email: "cem@uni.test", University: &uni}
	a := NewResultAssembler(newMemUserStore(u))

	created := time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)
	desc := "final with answers"
	p := &models.QuestionPaper{
		ID:          uuid.New(),
		Title:       "Physics Final",
		Description: &desc,
		Year:        2022,
		UploadedBy:  u.ID,
		CreatedAt:   created,
	}

	got, err := a.Detail(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "Physics Final", got.Title)
	assert.Equal(t, "final with answers", got.Description)
	assert.Equal(t, created, got.CreatedAt)
	assert.Equal(t, "cem@uni.test", got.UploadedBy.Email)
	assert.Equal(t, "ITU", got.UploadedBy.University)
	assert.Empty(t, got.University)
}
