// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(name string, fn func(context.Context, *mongo.Database) error) {
		if err := fn(ctx, db); err != nil {
			problems = append(problems, name+": "+err.Error())
		}
	}

	ensure("users", ensureUsers)
	ensure("organizations", ensureOrganizations)
	ensure("user_profiles", ensureProfiles)
	ensure("user_queries", ensureQueries)
	ensure("saved_organizations", ensureSavedOrganizations)
	ensure("user_joined_organizations", ensureJoinedOrganizations)
	ensure("org_accounts", ensureOrgAccounts)
	ensure("org_forms", ensureForms)
	ensure("form_questions", ensureFormQuestions)
	ensure("application_drafts", ensureApplications)
	ensure("org_events", ensureEvents)
	ensure("google_calendar_tokens", ensureCalendarTokens)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	av := a != nil && *a
	bv := b != nil && *b
	return av == bv
}

// ensureIndexSet creates the desired indexes, reusing an existing index when
// the key pattern and uniqueness already match, and dropping/recreating when
// options differ (e.g. upgrading to unique).
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	existing := map[string]existingIndex{} // key signature -> index
	cur, err := coll.Indexes().List(ctx)
	if err == nil {
		for cur.Next(ctx) {
			var idx existingIndex
			if err := cur.Decode(&idx); err != nil {
				zap.L().Warn("failed to decode existing index",
					zap.String("collection", coll.Name()),
					zap.Error(err))
				continue
			}
			existing[keySig(idx.Key)] = idx
		}
		cur.Close(ctx)
	}

	var errs []string
	for _, m := range models {
		var desiredName string
		var desiredUnique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			desiredUnique = m.Options.Unique
		}
		sig := keySig(m.Keys.(bson.D))

		if ex, ok := existing[sig]; ok {
			if sameBoolPtr(desiredUnique, ex.Unique) {
				continue
			}
			// Options mismatch: drop and recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", sig),
			zap.Bool("unique", desiredUnique != nil && *desiredUnique))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                             */
/* -------------------------------------------------------------------------- */

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("users"), []mongo.IndexModel{
		// Email is the login identity, matched case-insensitively via the
		// folded email_ci field.
		{
			Keys:    bson.D{{Key: "email_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_email_ci"),
		},
	})
}

func ensureOrganizations(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("organizations"), []mongo.IndexModel{
		// Catalog names are compared folded; name_ci also serves the
		// browse search filter.
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_organizations_name_ci"),
		},
	})
}

func ensureProfiles(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("user_profiles"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_profiles_user"),
		},
	})
}

func ensureQueries(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("user_queries"), []mongo.IndexModel{
		// Latest-survey reads sort by submitted_at within a user.
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "submitted_at", Value: -1},
			},
			Options: options.Index().SetName("idx_queries_user_submitted"),
		},
	})
}

func ensureSavedOrganizations(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("saved_organizations"), []mongo.IndexModel{
		// One save per (user, folded name): covers linked and unlinked saves
		// with the same duplicate semantics.
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "organization_name_ci", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("uniq_saved_user_name_ci"),
		},
		// Availability notifications look up saves by folded name.
		{
			Keys: bson.D{
				{Key: "organization_name_ci", Value: 1},
				{Key: "notify_when_available", Value: 1},
			},
			Options: options.Index().SetName("idx_saved_name_ci_notify"),
		},
	})
}

func ensureJoinedOrganizations(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("user_joined_organizations"), []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "organization_id", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("uniq_joined_user_org"),
		},
		// Rosters and member counts query by organization.
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}},
			Options: options.Index().SetName("idx_joined_org"),
		},
	})
}

func ensureOrgAccounts(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("org_accounts"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_accounts_org"),
		},
		// One admin administers at most one organization.
		{
			Keys:    bson.D{{Key: "admin_user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_accounts_admin"),
		},
	})
}

func ensureForms(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("org_forms"), []mongo.IndexModel{
		// Deliberately NON-unique: during a form replacement the new form is
		// inserted before the old one is deleted, so two rows briefly
		// coexist and readers take the newest.
		{
			Keys: bson.D{
				{Key: "organization_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_forms_org_created"),
		},
	})
}

func ensureFormQuestions(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("form_questions"), []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "form_id", Value: 1},
				{Key: "position", Value: 1},
			},
			Options: options.Index().SetName("idx_questions_form_position"),
		},
	})
}

func ensureApplications(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("application_drafts"), []mongo.IndexModel{
		// At most one pending application per (user, organization). Partial
		// so resolved applications never block a re-apply.
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "organization_id", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetName("uniq_applications_user_org_pending").
				SetPartialFilterExpression(bson.M{"status": "pending"}),
		},
		// Admin review lists pending applications oldest first.
		{
			Keys: bson.D{
				{Key: "organization_id", Value: 1},
				{Key: "status", Value: 1},
				{Key: "submitted_at", Value: 1},
			},
			Options: options.Index().SetName("idx_applications_org_status_submitted"),
		},
	})
}

func ensureEvents(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("org_events"), []mongo.IndexModel{
		// Schedules and the calendar sweep both read by org and start time.
		{
			Keys: bson.D{
				{Key: "organization_id", Value: 1},
				{Key: "starts_at", Value: 1},
			},
			Options: options.Index().SetName("idx_events_org_starts"),
		},
	})
}

func ensureCalendarTokens(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("google_calendar_tokens"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_caltokens_user"),
		},
	})
}
