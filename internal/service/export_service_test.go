package service

import (
	"alcyxob/fitness-tracker/internal/repository/memstore"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// mockFileStorage is a testify mock of storage.FileStorage.
type mockFileStorage struct {
	mock.Mock
}

func (m *mockFileStorage) PutObject(ctx context.Context, objectKey, contentType string, body []byte) error {
	return m.Called(ctx, objectKey, contentType, body).Error(0)
}

func (m *mockFileStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	args := m.Called(ctx, objectKey, expires)
	return args.String(0), args.Error(1)
}

func (m *mockFileStorage) ListObjectKeys(ctx context.Context, prefix string) ([]string, error) {
	args := m.Called(ctx, prefix)
	keys, _ := args.Get(0).([]string)
	return keys, args.Error(1)
}

func (m *mockFileStorage) DeleteObject(ctx context.Context, objectKey string) error {
	return m.Called(ctx, objectKey).Error(0)
}

func (f *fixture) exports(files *mockFileStorage) ExportService {
	return NewExportService(f.store, f.store.Plans(), f.store.Workouts(), f.store.WorkoutExercises(), f.store.Completions(), files, time.Minute, f.log)
}

// seedUser materializes one plan for owner and records one completion of it.
func (f *fixture) seedUser(t *testing.T, owner primitive.ObjectID) {
	t.Helper()
	plan := f.createPlan(t, owner, twoExercisePlan()...)
	_, err := f.materializer(MaterializerOptions{}).Materialize(context.Background(), owner, plan.ID)
	require.NoError(t, err)
	_, err = f.completions(CompletionOptions{}).RecordCompletion(context.Background(), owner, plan.ID, fullInput())
	require.NoError(t, err)
}

func TestExportHistory(t *testing.T) {
	f := newFixture(t)
	f.seedCatalog(t, pushUpsAndLats...)
	f.seedUser(t, f.owner)

	files := &mockFileStorage{}
	var uploaded []byte
	prefix := "exports/" + f.owner.Hex() + "/"
	files.On("PutObject", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, prefix) && strings.HasSuffix(key, ".json")
	}), "application/json", mock.Anything).
		Run(func(args mock.Arguments) { uploaded = args.Get(3).([]byte) }).
		Return(nil).Once()
	files.On("GeneratePresignedDownloadURL", mock.Anything, mock.Anything, time.Minute).
		Return("https://files.example.com/signed", nil).Once()

	res, err := f.exports(files).ExportHistory(context.Background(), f.owner)
	require.NoError(t, err)
	files.AssertExpectations(t)

	assert.Equal(t, 1, res.Records)
	assert.Equal(t, "https://files.example.com/signed", res.DownloadURL)
	assert.True(t, strings.HasPrefix(res.ObjectKey, prefix))

	var body struct {
		OwnerID string `json:"ownerId"`
		Records []struct {
			Metadata struct {
				Duration int `json:"duration"`
			} `json:"metadata"`
		} `json:"records"`
	}
	require.NoError(t, json.Unmarshal(uploaded, &body))
	assert.Equal(t, f.owner.Hex(), body.OwnerID)
	require.Len(t, body.Records, 1)
	assert.Equal(t, 45, body.Records[0].Metadata.Duration)
}

func TestExportHistory_UploadFailure(t *testing.T) {
	f := newFixture(t)
	files := &mockFileStorage{}
	files.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("access denied"))

	_, err := f.exports(files).ExportHistory(context.Background(), f.owner)
	assert.ErrorIs(t, err, ErrStorageWrite)
	files.AssertNotCalled(t, "GeneratePresignedDownloadURL", mock.Anything, mock.Anything, mock.Anything)
}

func TestEraseUserData(t *testing.T) {
	f := newFixture(t)
	f.seedCatalog(t, pushUpsAndLats...)
	other := primitive.NewObjectID()
	f.seedUser(t, f.owner)
	f.seedUser(t, other)

	files := &mockFileStorage{}
	prefix := "exports/" + f.owner.Hex() + "/"
	files.On("ListObjectKeys", mock.Anything, prefix).Return([]string{prefix + "a.json", prefix + "b.json"}, nil)
	files.On("DeleteObject", mock.Anything, prefix+"a.json").Return(nil)
	files.On("DeleteObject", mock.Anything, prefix+"b.json").Return(errors.New("timeout"))

	report, err := f.exports(files).EraseUserData(context.Background(), f.owner)
	require.NoError(t, err)
	files.AssertExpectations(t)

	assert.Equal(t, &ErasureReport{Plans: 1, Workouts: 1, Links: 2, Completions: 1, Objects: 1, ObjectsFailed: 1}, report)
	assert.Equal(t, memstore.Counts{Plans: 1, Workouts: 1, Links: 2, Completions: 1}, f.store.Counts())
}

func TestEraseUserData_RollsBack(t *testing.T) {
	f := newFixture(t)
	f.seedCatalog(t, pushUpsAndLats...)
	f.seedUser(t, f.owner)
	before := f.store.Counts()

	f.store.FailOn(memstore.OpDeleteCompletions, errors.New("not primary"))
	files := &mockFileStorage{}

	_, err := f.exports(files).EraseUserData(context.Background(), f.owner)
	assert.ErrorIs(t, err, ErrStorageWrite)
	assert.Equal(t, before, f.store.Counts())
	files.AssertNotCalled(t, "ListObjectKeys", mock.Anything, mock.Anything)
}
