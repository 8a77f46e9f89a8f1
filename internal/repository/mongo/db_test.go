package mongo

import (
	"alcyxob/fitness-tracker/internal/repository"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestInsertError_DuplicateKey(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{
			name: "insertOne write exception",
			err: mongo.WriteException{WriteErrors: mongo.WriteErrors{{
				Code:    11000,
				Message: "E11000 duplicate key error collection: fitness_tracker.workouts index: generatedPlanId_1",
			}}},
		},
		{
			name: "insertMany bulk write exception",
			err: mongo.BulkWriteException{WriteErrors: []mongo.BulkWriteError{{
				WriteError: mongo.WriteError{Index: 1, Code: 11000, Message: "E11000 duplicate key error"},
			}}},
		},
		{
			name: "command error inside a transaction",
			err:  mongo.CommandError{Code: 11000, Name: "DuplicateKey", Message: "E11000 duplicate key error"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, insertError(tt.err), repository.ErrDuplicateKey)
		})
	}
}

func TestInsertError_KeepsTransientErrors(t *testing.T) {
	// A write conflict must reach WithTransaction with its label intact so the
	// whole transaction is retried; after the retry the insert hits the unique
	// index and comes back as ErrDuplicateKey.
	conflict := mongo.CommandError{
		Code:    112,
		Name:    "WriteConflict",
		Message: "Write conflict during plan execution and yielding is disabled.",
		Labels:  []string{"TransientTransactionError"},
	}
	got := insertError(conflict)
	assert.NotErrorIs(t, got, repository.ErrDuplicateKey)

	var serverErr mongo.ServerError
	if assert.True(t, errors.As(got, &serverErr)) {
		assert.True(t, serverErr.HasErrorLabel("TransientTransactionError"))
	}

	assert.NoError(t, insertError(nil))
	other := errors.New("connection reset")
	assert.Same(t, other, insertError(other))
}
