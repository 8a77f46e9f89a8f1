package mongo

import (
	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/repository"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// mongoCompletionSchemaProbe inspects the $jsonSchema validator of the
// completions collection to learn which optional columns it will accept.
type mongoCompletionSchemaProbe struct {
	db *mongo.Database
}

// NewCompletionSchemaProbe creates a probe for the completions collection.
func NewCompletionSchemaProbe(db *mongo.Database) repository.CompletionSchemaProbe {
	return &mongoCompletionSchemaProbe{db: db}
}

type collectionValidator struct {
	Validator struct {
		JSONSchema *jsonSchema `bson:"$jsonSchema"`
	} `bson:"validator"`
}

type jsonSchema struct {
	Properties           bson.M      `bson:"properties"`
	AdditionalProperties interface{} `bson:"additionalProperties"`
}

// CompletionColumns reports the accepted optional columns. A missing
// collection or a validator that allows additional properties accepts all
// of them; a closed validator accepts only what it declares.
func (p *mongoCompletionSchemaProbe) CompletionColumns(ctx context.Context) (domain.CompletionColumns, error) {
	specs, err := p.db.ListCollectionSpecifications(ctx, bson.M{"name": completionCollectionName})
	if err != nil {
		return domain.CompletionColumns{}, err
	}
	if len(specs) == 0 || len(specs[0].Options) == 0 {
		return domain.AllCompletionColumns, nil
	}

	var opts collectionValidator
	if err := bson.Unmarshal(specs[0].Options, &opts); err != nil {
		return domain.CompletionColumns{}, err
	}
	return columnsFromSchema(opts.Validator.JSONSchema), nil
}

func columnsFromSchema(schema *jsonSchema) domain.CompletionColumns {
	if schema == nil {
		return domain.AllCompletionColumns
	}
	// additionalProperties may be a bool or a sub-schema; only literal false closes the schema.
	if allowed, ok := schema.AdditionalProperties.(bool); !ok || allowed {
		return domain.AllCompletionColumns
	}
	_, duration := schema.Properties["duration"]
	_, done := schema.Properties["exercisesCompleted"]
	_, total := schema.Properties["totalExercises"]
	return domain.CompletionColumns{Duration: duration, ExercisesCompleted: done, TotalExercises: total}
}
