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

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureGroups(ctx, db); err != nil {
		problems = append(problems, "groups: "+err.Error())
	}
	if err := ensureCars(ctx, db); err != nil {
		problems = append(problems, "cars: "+err.Error())
	}
	if err := ensureInvitations(ctx, db); err != nil {
		problems = append(problems, "invitations: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

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

func sameUnique(a, b *bool) bool {
	av := a != nil && *a
	bv := b != nil && *b
	return av == bv
}

// ensureIndexSet reconciles the desired indexes for one collection: an index
// whose key pattern and uniqueness already match is reused, one whose
// options differ is dropped and recreated, and the rest are created fresh.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	existing := map[string]existingIndex{} // key signature -> index
	cur, err := coll.Indexes().List(ctx)
	if err == nil {
		defer cur.Close(ctx)
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
			if sameUnique(desiredUnique, ex.Unique) {
				continue
			}
			// Options mismatch (e.g. upgrading to unique). Drop and recreate.
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

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("users")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// One account per email. Emails are stored lowercased by the store.
		{
			Keys:    bson.D{{Key: "userEmail", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
		},
		// Membership repair scans walk user.groups entries.
		{
			Keys:    bson.D{{Key: "groups", Value: 1}},
			Options: options.Index().SetName("idx_users_groups"),
		},
	})
}

func ensureGroups(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("groups")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Reverse membership lookup (which groups contain this user).
		{
			Keys:    bson.D{{Key: "members", Value: 1}},
			Options: options.Index().SetName("idx_groups_members"),
		},
	})
}

func ensureCars(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("cars")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Per-group car listing and group cascade deletes.
		{
			Keys:    bson.D{{Key: "groupId", Value: 1}},
			Options: options.Index().SetName("idx_cars_group"),
		},
		// Releasing a departing member's claims filters on the holder.
		{
			Keys:    bson.D{{Key: "currentlyUsedById", Value: 1}},
			Options: options.Index().SetName("idx_cars_usedby"),
		},
	})
}

func ensureInvitations(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("invitations")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Inbox listing by invitee address.
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_invitations_email"),
		},
		// Group cascade deletes and duplicate checks.
		{
			Keys:    bson.D{{Key: "groupId", Value: 1}, {Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_invitations_group_email"),
		},
	})
}
