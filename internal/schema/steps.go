package schema

import "go.mongodb.org/mongo-driver/bson"

const StepsCollection = "onboarding_steps"

// Index names on the onboarding_steps collection.
const (
	IndexUniqKey  = "uniq_key"
	IndexOrderAsc = "order_asc"
)

// OnboardingSteps declares the step-metadata reference collection.
func OnboardingSteps() CollectionSpec {
	return CollectionSpec{
		Name: StepsCollection,
		Validator: bson.M{
			"$jsonSchema": bson.M{
				"bsonType": "object",
				"required": bson.A{"key", "order", "title"},
				"properties": bson.M{
					"key": bson.M{
						"bsonType":    "string",
						"description": "stable step identifier, unique",
					},
					"order": bson.M{
						"bsonType": "int",
						"minimum":  0,
					},
					"title": bson.M{
						"bsonType": "string",
					},
					"description": bson.M{
						"bsonType": "string",
					},
					"required": bson.M{
						"bsonType": "bool",
					},
				},
			},
		},
		ValidationLevel:  ValidationLevelModerate,
		ValidationAction: ValidationActionWarn,
		Indexes: []IndexSpec{
			{
				Name:   IndexUniqKey,
				Keys:   bson.D{{Key: "key", Value: 1}},
				Unique: true,
			},
			{
				Name: IndexOrderAsc,
				Keys: bson.D{{Key: "order", Value: 1}},
			},
		},
	}
}

// StepSeeds returns the fixed onboarding flow, in display order. Seeding is
// guarded by an emptiness check on the collection, not per-record upserts, so
// editing this list only affects databases initialized after the change.
func StepSeeds() []bson.M {
	return []bson.M{
		{
			"key":         "account",
			"order":       0,
			"title":       "Create your account",
			"description": "Pick an email address and a way to sign in.",
			"required":    true,
		},
		{
			"key":         "profile",
			"order":       1,
			"title":       "Set up your profile",
			"description": "Choose a username and tell us who you are.",
			"required":    true,
		},
		{
			"key":         "preferences",
			"order":       2,
			"title":       "Tune your preferences",
			"description": "Notification and display settings. Skippable.",
			"required":    false,
		},
		{
			"key":         "summary",
			"order":       3,
			"title":       "Review and finish",
			"description": "Confirm your details and complete onboarding.",
			"required":    true,
		},
	}
}
