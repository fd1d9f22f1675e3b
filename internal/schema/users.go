package schema

import "go.mongodb.org/mongo-driver/bson"

const UsersCollection = "users"

// Index names on the users collection. Downstream services and operators
// reference these by name; renaming one orphans the live index.
const (
	IndexUniqEmail       = "uniq_email"
	IndexUniqUsername    = "uniq_username"
	IndexOauthProviderID = "oauth_provider_id"
	IndexOnboardingStep  = "onboarding_currentStep"
	IndexCreatedAtDesc   = "createdAt_desc"
	IndexUpdatedAtDesc   = "updatedAt_desc"
)

// OAuth providers accepted by the users validator.
var OauthProviders = bson.A{"google", "github", "apple"}

// Users declares the primary account collection. Email is the identity;
// username and the oauth pair are optional and enforced unique only where
// present, via partial-filter indexes.
func Users() CollectionSpec {
	return CollectionSpec{
		Name: UsersCollection,
		Validator: bson.M{
			"$jsonSchema": bson.M{
				"bsonType": "object",
				"required": bson.A{"email", "passwordHash", "onboarding"},
				"properties": bson.M{
					"email": bson.M{
						"bsonType":    "string",
						"description": "login identity, unique across accounts",
					},
					"passwordHash": bson.M{
						"bsonType":    bson.A{"string", "null"},
						"description": "null for oauth-only accounts",
					},
					"username": bson.M{
						"bsonType": "string",
					},
					"oauthProvider": bson.M{
						"enum": OauthProviders,
					},
					"oauthProviderId": bson.M{
						"bsonType": "string",
					},
					"onboarding": bson.M{
						"bsonType": "object",
						"required": bson.A{"currentStep", "completedSteps"},
						"properties": bson.M{
							"currentStep": bson.M{
								"bsonType": "int",
								"minimum":  0,
							},
							"completedSteps": bson.M{
								"bsonType": "array",
								"items":    bson.M{"bsonType": "string"},
							},
							"startedAt":   bson.M{"bsonType": bson.A{"date", "null"}},
							"completedAt": bson.M{"bsonType": bson.A{"date", "null"}},
						},
					},
					"profile": bson.M{
						"bsonType":    "object",
						"description": "free-form display data, not validated field by field",
					},
					"createdAt": bson.M{"bsonType": "date"},
					"updatedAt": bson.M{"bsonType": "date"},
				},
			},
		},
		ValidationLevel:  ValidationLevelModerate,
		ValidationAction: ValidationActionWarn,
		Indexes: []IndexSpec{
			{
				Name:   IndexUniqEmail,
				Keys:   bson.D{{Key: "email", Value: 1}},
				Unique: true,
			},
			{
				Name:          IndexUniqUsername,
				Keys:          bson.D{{Key: "username", Value: 1}},
				Unique:        true,
				PartialFilter: bson.M{"username": bson.M{"$exists": true}},
			},
			{
				Name:   IndexOauthProviderID,
				Keys:   bson.D{{Key: "oauthProvider", Value: 1}, {Key: "oauthProviderId", Value: 1}},
				Unique: true,
				PartialFilter: bson.M{
					"oauthProvider":   bson.M{"$exists": true},
					"oauthProviderId": bson.M{"$exists": true},
				},
			},
			{
				Name: IndexOnboardingStep,
				Keys: bson.D{{Key: "onboarding.currentStep", Value: 1}},
			},
			{
				Name: IndexCreatedAtDesc,
				Keys: bson.D{{Key: "createdAt", Value: -1}},
			},
			{
				Name: IndexUpdatedAtDesc,
				Keys: bson.D{{Key: "updatedAt", Value: -1}},
			},
		},
	}
}
